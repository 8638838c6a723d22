package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/store"
)

type DonorRepository struct {
	*table[models.Donor]
}

var _ DonorRepo = (*DonorRepository)(nil)

func NewDonorRepository(s *store.Store) *DonorRepository {
	return &DonorRepository{&table[models.Donor]{
		store:  s,
		entity: "donor",
		id:     func(d *models.Donor) int64 { return d.ID },
		prepare: func(d *models.Donor, insert bool) error {
			if insert && d.UUID == "" {
				d.UUID = uuid.NewString()
			}
			d.Normalize()
			return d.Validate()
		},
		refs: []reference{
			{table: "donation", column: "donor_id"},
			{table: "pledge", column: "donor_id"},
		},
	}}
}

// FindByName returns donors matching every word of text in their first
// name, last name or company, case-insensitively.
func (r *DonorRepository) FindByName(ctx context.Context, text string) ([]models.Donor, error) {
	return r.find(ctx, "by name", func(tx *gorm.DB) *gorm.DB {
		for _, w := range words(text) {
			like := containsPattern(w)
			tx = tx.Where(`(LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\' OR LOWER(company) LIKE ? ESCAPE '\')`,
				like, like, like)
		}
		return tx.Order("last_name, first_name")
	})
}
