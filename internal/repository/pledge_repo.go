package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/store"
)

type PledgeRepository struct {
	*table[models.Pledge]
}

var _ PledgeRepo = (*PledgeRepository)(nil)

var errNegativeBalance = &models.ValidationError{Field: "current_balance", Message: "balance cannot be negative"}

func NewPledgeRepository(s *store.Store) *PledgeRepository {
	return &PledgeRepository{&table[models.Pledge]{
		store:  s,
		entity: "pledge",
		id:     func(p *models.Pledge) int64 { return p.ID },
		prepare: func(p *models.Pledge, insert bool) error {
			if !insert {
				p.NormalizeUpdate()
				return p.ValidateUpdate()
			}
			if p.UUID == "" {
				p.UUID = uuid.NewString()
			}
			p.Normalize()
			return p.Validate()
		},
	}}
}

func (r *PledgeRepository) GetForDonor(ctx context.Context, donorID int64) ([]models.Pledge, error) {
	return r.find(ctx, fmt.Sprintf("for donor %d", donorID), func(tx *gorm.DB) *gorm.DB {
		return tx.Where("donor_id = ?", donorID).Order("expected_fulfillment_date")
	})
}

func (r *PledgeRepository) GetForCampaign(ctx context.Context, campaignID int64) ([]models.Pledge, error) {
	return r.find(ctx, fmt.Sprintf("for campaign %d", campaignID), func(tx *gorm.DB) *gorm.DB {
		return tx.Where("campaign_id = ?", campaignID).Order("expected_fulfillment_date")
	})
}

func (r *PledgeRepository) GetByStatus(ctx context.Context, status models.PledgeStatus) ([]models.Pledge, error) {
	return r.find(ctx, "by status", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status).Order("expected_fulfillment_date")
	})
}

// UpdateBalance reads the pledge, derives the next status and writes both in
// one transaction.
func (r *PledgeRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, status *models.PledgeStatus) (*models.Pledge, error) {
	if balance.IsNegative() {
		return nil, NewError(ErrUpdateFailed, r.entity, "balance", errNegativeBalance)
	}
	if status != nil && !status.Valid() {
		return nil, NewError(ErrUpdateFailed, r.entity, "status", &models.ValidationError{
			Field: "status", Message: "unknown pledge status " + string(*status),
		})
	}
	return r.adjust(ctx, id, func(models.Pledge) (decimal.Decimal, error) { return balance, nil }, status)
}

func (r *PledgeRepository) AdjustBalance(ctx context.Context, id int64, next func(p models.Pledge) (decimal.Decimal, error)) (*models.Pledge, error) {
	return r.adjust(ctx, id, next, nil)
}

// adjust locks the pledge row for the rest of the transaction so concurrent
// adjustments apply one after the other.
func (r *PledgeRepository) adjust(ctx context.Context, id int64, next func(models.Pledge) (decimal.Decimal, error), status *models.PledgeStatus) (*models.Pledge, error) {
	var p models.Pledge
	err := r.store.Write(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		balance, err := next(p)
		if err != nil {
			return err
		}
		if balance.IsNegative() {
			return errNegativeBalance
		}
		p.Status = models.NextPledgeStatus(p.Status, p.PledgeAmount, balance, status)
		p.CurrentBalance = &balance
		p.UpdatedAt = time.Now()
		return tx.Model(&models.Pledge{}).Where("id = ?", id).Updates(map[string]interface{}{
			"current_balance": balance,
			"status":          p.Status,
			"updated_at":      p.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, NewError(ErrUpdateFailed, r.entity, fmt.Sprintf("balance of id %d", id), err)
	}
	return &p, nil
}
