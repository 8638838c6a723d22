package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/store"
)

type IncentiveRepository struct {
	*table[models.DonationIncentive]
}

var _ IncentiveRepo = (*IncentiveRepository)(nil)

func NewIncentiveRepository(s *store.Store) *IncentiveRepository {
	return &IncentiveRepository{&table[models.DonationIncentive]{
		store:  s,
		entity: "donation_incentive",
		id:     func(i *models.DonationIncentive) int64 { return i.ID },
		prepare: func(i *models.DonationIncentive, insert bool) error {
			if insert && i.UUID == "" {
				i.UUID = uuid.NewString()
			}
			i.Normalize()
			return i.Validate()
		},
		refs: []reference{
			{table: "donation", column: "donation_incentive_id"},
		},
	}}
}

func (r *IncentiveRepository) FindByName(ctx context.Context, text string) ([]models.DonationIncentive, error) {
	like := containsPattern(text)
	return r.find(ctx, "by name", func(tx *gorm.DB) *gorm.DB {
		return tx.Where(`LOWER(name) LIKE ? ESCAPE '\'`, like).Order("name")
	})
}

func (r *IncentiveRepository) GetByStatus(ctx context.Context, status models.IncentiveStatus) ([]models.DonationIncentive, error) {
	return r.find(ctx, "by status", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status).Order("dollar_amount, name")
	})
}
