package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/store"
)

type CampaignRepository struct {
	*table[models.Campaign]
}

var _ CampaignRepo = (*CampaignRepository)(nil)

func NewCampaignRepository(s *store.Store) *CampaignRepository {
	return &CampaignRepository{&table[models.Campaign]{
		store:  s,
		entity: "campaign",
		id:     func(c *models.Campaign) int64 { return c.ID },
		prepare: func(c *models.Campaign, insert bool) error {
			if insert && c.UUID == "" {
				c.UUID = uuid.NewString()
			}
			c.Normalize()
			return c.Validate()
		},
		refs: []reference{
			{table: "donation", column: "campaign_id"},
			{table: "pledge", column: "campaign_id"},
		},
	}}
}

func (r *CampaignRepository) FindByName(ctx context.Context, text string) ([]models.Campaign, error) {
	like := containsPattern(text)
	return r.find(ctx, "by name", func(tx *gorm.DB) *gorm.DB {
		return tx.Where(`LOWER(name) LIKE ? ESCAPE '\'`, like).Order("name")
	})
}

func (r *CampaignRepository) GetByStatus(ctx context.Context, status models.CampaignStatus) ([]models.Campaign, error) {
	return r.find(ctx, "by status", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status).Order("name")
	})
}

// GetByCode returns (nil, nil) when no campaign has the code.
func (r *CampaignRepository) GetByCode(ctx context.Context, code string) (*models.Campaign, error) {
	return r.first(ctx, "by code", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("campaign_code = ?", strings.TrimSpace(code))
	})
}
