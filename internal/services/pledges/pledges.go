// Package pledges applies payments against open pledges.
package pledges

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
)

// ErrCancelled is returned when a payment targets a cancelled pledge.
var ErrCancelled = errors.New("pledge is cancelled")

type Service struct {
	pledges repository.PledgeRepo
	log     zerolog.Logger
}

func NewService(pledges repository.PledgeRepo, log zerolog.Logger) *Service {
	return &Service{
		pledges: pledges,
		log:     log.With().Str("component", "pledges").Logger(),
	}
}

// ApplyPayment lowers the balance of pledge id by amount. The balance does
// not go below zero; the status follows the new balance. The read and the
// write happen in one store write, so concurrent payments both count.
func (s *Service) ApplyPayment(ctx context.Context, id int64, amount decimal.Decimal) (*models.Pledge, error) {
	if !amount.IsPositive() {
		return nil, &models.ValidationError{Field: "amount", Message: "payment must be greater than zero"}
	}
	var overpaid decimal.Decimal
	updated, err := s.pledges.AdjustBalance(ctx, id, func(p models.Pledge) (decimal.Decimal, error) {
		if p.Status == models.PledgeCancelled {
			return decimal.Zero, fmt.Errorf("pledge %d: %w", id, ErrCancelled)
		}
		balance := p.PledgeAmount
		if p.CurrentBalance != nil {
			balance = *p.CurrentBalance
		}
		balance = balance.Sub(amount)
		if balance.IsNegative() {
			overpaid = balance.Neg()
			balance = decimal.Zero
		}
		return balance, nil
	})
	if err != nil {
		return nil, err
	}
	if overpaid.IsPositive() {
		s.log.Warn().Int64("pledge", id).Str("overpaid", overpaid.StringFixed(2)).Msg("payment exceeds balance")
	}
	s.log.Info().
		Int64("pledge", id).
		Str("paid", amount.StringFixed(2)).
		Str("balance", updated.CurrentBalance.StringFixed(2)).
		Str("status", string(updated.Status)).
		Msg("pledge payment applied")
	return updated, nil
}

// SetBalance writes balance directly, with an optional explicit status.
func (s *Service) SetBalance(ctx context.Context, id int64, balance decimal.Decimal, status *models.PledgeStatus) (*models.Pledge, error) {
	return s.pledges.UpdateBalance(ctx, id, balance, status)
}
