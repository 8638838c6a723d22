package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
)

var (
	_ repository.DonorRepo       = (*DonorRepository)(nil)
	_ repository.CampaignRepo    = (*CampaignRepository)(nil)
	_ repository.DonationRepo    = (*DonationRepository)(nil)
	_ repository.PledgeRepo      = (*PledgeRepository)(nil)
	_ repository.IncentiveRepo   = (*IncentiveRepository)(nil)
	_ repository.BatchCommitRepo = (*BatchCommitRepository)(nil)
)

type DonorRepository struct {
	*table[models.Donor]
}

func newDonorRepository(db *DB) *DonorRepository {
	return &DonorRepository{&table[models.Donor]{
		db:     db,
		entity: "donor",
		rows:   db.donors,
		fields: func(d *models.Donor) (*int64, *string, *time.Time, *time.Time) {
			return &d.ID, &d.UUID, &d.CreatedAt, &d.UpdatedAt
		},
		prepare: func(d *models.Donor, _ bool) error {
			d.Normalize()
			return d.Validate()
		},
		referrers: func(id int64) (string, int) {
			return db.countRefs(id, func(d *models.Donation) *int64 { return d.DonorID },
				func(p *models.Pledge) *int64 { return &p.DonorID })
		},
	}}
}

func (r *DonorRepository) FindByName(ctx context.Context, text string) ([]models.Donor, error) {
	words := strings.Fields(strings.ToLower(text))
	return r.filter("by name", func(d *models.Donor) bool {
		for _, w := range words {
			if !donorHasWord(d, w) {
				return false
			}
		}
		return true
	}, func(a, b *models.Donor) bool {
		if la, lb := models.Deref(a.LastName), models.Deref(b.LastName); la != lb {
			return la < lb
		}
		return models.Deref(a.FirstName) < models.Deref(b.FirstName)
	})
}

func donorHasWord(d *models.Donor, w string) bool {
	for _, f := range []*string{d.FirstName, d.LastName, d.Company} {
		if f != nil && strings.Contains(strings.ToLower(*f), w) {
			return true
		}
	}
	return false
}

type CampaignRepository struct {
	*table[models.Campaign]
}

func newCampaignRepository(db *DB) *CampaignRepository {
	return &CampaignRepository{&table[models.Campaign]{
		db:     db,
		entity: "campaign",
		rows:   db.campaigns,
		fields: func(c *models.Campaign) (*int64, *string, *time.Time, *time.Time) {
			return &c.ID, &c.UUID, &c.CreatedAt, &c.UpdatedAt
		},
		prepare: func(c *models.Campaign, _ bool) error {
			c.Normalize()
			return c.Validate()
		},
		check: func(c *models.Campaign) error {
			for id, other := range db.campaigns {
				if id != c.ID && other.CampaignCode == c.CampaignCode {
					return fmt.Errorf("%w: campaign.campaign_code", errUnique)
				}
			}
			return nil
		},
		referrers: func(id int64) (string, int) {
			return db.countRefs(id, func(d *models.Donation) *int64 { return d.CampaignID },
				func(p *models.Pledge) *int64 { return p.CampaignID })
		},
	}}
}

func (r *CampaignRepository) FindByName(ctx context.Context, text string) ([]models.Campaign, error) {
	q := strings.ToLower(strings.TrimSpace(text))
	return r.filter("by name", func(c *models.Campaign) bool {
		return strings.Contains(strings.ToLower(c.Name), q)
	}, byCampaignName)
}

func (r *CampaignRepository) GetByStatus(ctx context.Context, status models.CampaignStatus) ([]models.Campaign, error) {
	return r.filter("by status", func(c *models.Campaign) bool { return c.Status == status }, byCampaignName)
}

func (r *CampaignRepository) GetByCode(ctx context.Context, code string) (*models.Campaign, error) {
	code = strings.TrimSpace(code)
	out, err := r.filter("by code", func(c *models.Campaign) bool { return c.CampaignCode == code }, nil)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

func byCampaignName(a, b *models.Campaign) bool { return a.Name < b.Name }

type DonationRepository struct {
	*table[models.Donation]
}

func newDonationRepository(db *DB) *DonationRepository {
	return &DonationRepository{&table[models.Donation]{
		db:     db,
		entity: "donation",
		rows:   db.donations,
		fields: func(d *models.Donation) (*int64, *string, *time.Time, *time.Time) {
			return &d.ID, &d.UUID, &d.CreatedAt, &d.UpdatedAt
		},
		prepare: func(d *models.Donation, _ bool) error {
			d.Normalize()
			return d.Validate()
		},
		check: func(d *models.Donation) error {
			if err := db.checkRefs(d.DonorID, d.CampaignID); err != nil {
				return err
			}
			return db.checkIncentive(d.DonationIncentiveID)
		},
	}}
}

func byDateDesc(a, b *models.Donation) bool { return a.DonationDate.After(b.DonationDate) }

func (r *DonationRepository) GetForDonor(ctx context.Context, donorID int64) ([]models.Donation, error) {
	return r.filter("for donor", func(d *models.Donation) bool {
		return d.DonorID != nil && *d.DonorID == donorID
	}, byDateDesc)
}

func (r *DonationRepository) GetForIncentive(ctx context.Context, incentiveID int64) ([]models.Donation, error) {
	return r.filter("for incentive", func(d *models.Donation) bool {
		return d.DonationIncentiveID != nil && *d.DonationIncentiveID == incentiveID
	}, byDateDesc)
}

func (r *DonationRepository) GetForCampaign(ctx context.Context, campaignID int64) ([]models.Donation, error) {
	return r.filter("for campaign", func(d *models.Donation) bool {
		return d.CampaignID != nil && *d.CampaignID == campaignID
	}, byDateDesc)
}

func (r *DonationRepository) GetByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Donation, error) {
	return r.filter("by status", func(d *models.Donation) bool { return d.PaymentStatus == status }, byDateDesc)
}

func (r *DonationRepository) TotalForDonor(ctx context.Context, donorID int64) (decimal.Decimal, error) {
	list, err := r.GetForDonor(ctx, donorID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, d := range list {
		total = total.Add(d.Amount)
	}
	return total, nil
}

func (r *DonationRepository) CountPendingReceipts(ctx context.Context) (int64, error) {
	list, err := r.filter("pending receipts", func(d *models.Donation) bool {
		return d.RequestPrintedReceipt &&
			(d.ReceiptStatus == models.ReceiptRequested || d.ReceiptStatus == models.ReceiptQueued)
	}, nil)
	return int64(len(list)), err
}

func (r *DonationRepository) GetReceiptRequests(ctx context.Context, status models.ReceiptStatus) ([]models.Donation, error) {
	return r.filter("receipt requests", func(d *models.Donation) bool {
		if d.ReceiptStatus != status {
			return false
		}
		if status == models.ReceiptNotRequested {
			return d.DonationDate.After(repository.ReceiptCutoff)
		}
		return d.RequestPrintedReceipt
	}, byDateDesc)
}

func (r *DonationRepository) UpdateReceiptStatus(ctx context.Context, id int64, status models.ReceiptStatus) error {
	if !status.Valid() {
		return r.fail(repository.ErrUpdateFailed, "receipt status", &models.ValidationError{
			Field: "receipt_status", Message: "unknown receipt status " + string(status),
		})
	}
	if err := r.db.injected("update", r.entity); err != nil {
		return r.fail(repository.ErrUpdateFailed, "", err)
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.rows[id]
	if !ok {
		return r.fail(repository.ErrUpdateFailed, fmt.Sprintf("receipt status of id %d", id), repository.ErrNotFound)
	}
	d.ReceiptStatus = status
	d.UpdatedAt = time.Now()
	r.rows[id] = d
	return nil
}

func (r *DonationRepository) GetInRange(ctx context.Context, from, to time.Time, campaignID *int64) ([]models.Donation, error) {
	return r.filter("in range", func(d *models.Donation) bool {
		if d.DonationDate.Before(from) || !d.DonationDate.Before(to) {
			return false
		}
		return campaignID == nil || (d.CampaignID != nil && *d.CampaignID == *campaignID)
	}, func(a, b *models.Donation) bool {
		if !a.DonationDate.Equal(b.DonationDate) {
			return a.DonationDate.Before(b.DonationDate)
		}
		return a.ID < b.ID
	})
}

type PledgeRepository struct {
	*table[models.Pledge]
}

func newPledgeRepository(db *DB) *PledgeRepository {
	return &PledgeRepository{&table[models.Pledge]{
		db:     db,
		entity: "pledge",
		rows:   db.pledges,
		fields: func(p *models.Pledge) (*int64, *string, *time.Time, *time.Time) {
			return &p.ID, &p.UUID, &p.CreatedAt, &p.UpdatedAt
		},
		prepare: func(p *models.Pledge, insert bool) error {
			if insert {
				p.Normalize()
				return p.Validate()
			}
			p.NormalizeUpdate()
			return p.ValidateUpdate()
		},
		check: func(p *models.Pledge) error {
			return db.checkRefs(&p.DonorID, p.CampaignID)
		},
	}}
}

func byExpected(a, b *models.Pledge) bool {
	return a.ExpectedFulfillmentDate.Before(b.ExpectedFulfillmentDate)
}

func (r *PledgeRepository) GetForDonor(ctx context.Context, donorID int64) ([]models.Pledge, error) {
	return r.filter("for donor", func(p *models.Pledge) bool { return p.DonorID == donorID }, byExpected)
}

func (r *PledgeRepository) GetForCampaign(ctx context.Context, campaignID int64) ([]models.Pledge, error) {
	return r.filter("for campaign", func(p *models.Pledge) bool {
		return p.CampaignID != nil && *p.CampaignID == campaignID
	}, byExpected)
}

func (r *PledgeRepository) GetByStatus(ctx context.Context, status models.PledgeStatus) ([]models.Pledge, error) {
	return r.filter("by status", func(p *models.Pledge) bool { return p.Status == status }, byExpected)
}

func (r *PledgeRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, status *models.PledgeStatus) (*models.Pledge, error) {
	if balance.IsNegative() {
		return nil, r.fail(repository.ErrUpdateFailed, "balance", &models.ValidationError{
			Field: "current_balance", Message: "balance cannot be negative",
		})
	}
	if status != nil && !status.Valid() {
		return nil, r.fail(repository.ErrUpdateFailed, "status", &models.ValidationError{
			Field: "status", Message: "unknown pledge status " + string(*status),
		})
	}
	return r.adjust(ctx, id, func(models.Pledge) (decimal.Decimal, error) { return balance, nil }, status)
}

func (r *PledgeRepository) AdjustBalance(ctx context.Context, id int64, next func(p models.Pledge) (decimal.Decimal, error)) (*models.Pledge, error) {
	return r.adjust(ctx, id, next, nil)
}

func (r *PledgeRepository) adjust(ctx context.Context, id int64, next func(models.Pledge) (decimal.Decimal, error), status *models.PledgeStatus) (*models.Pledge, error) {
	if err := r.db.injected("update", r.entity); err != nil {
		return nil, r.fail(repository.ErrUpdateFailed, "", err)
	}
	reason := fmt.Sprintf("balance of id %d", id)
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, r.fail(repository.ErrUpdateFailed, reason, repository.ErrNotFound)
	}
	balance, err := next(p)
	if err != nil {
		return nil, r.fail(repository.ErrUpdateFailed, reason, err)
	}
	if balance.IsNegative() {
		return nil, r.fail(repository.ErrUpdateFailed, reason, &models.ValidationError{
			Field: "current_balance", Message: "balance cannot be negative",
		})
	}
	p.Status = models.NextPledgeStatus(p.Status, p.PledgeAmount, balance, status)
	p.CurrentBalance = &balance
	p.UpdatedAt = time.Now()
	r.rows[id] = p
	return &p, nil
}

type IncentiveRepository struct {
	*table[models.DonationIncentive]
}

func newIncentiveRepository(db *DB) *IncentiveRepository {
	return &IncentiveRepository{&table[models.DonationIncentive]{
		db:     db,
		entity: "donation_incentive",
		rows:   db.incentives,
		fields: func(i *models.DonationIncentive) (*int64, *string, *time.Time, *time.Time) {
			return &i.ID, &i.UUID, &i.CreatedAt, &i.UpdatedAt
		},
		prepare: func(i *models.DonationIncentive, _ bool) error {
			i.Normalize()
			return i.Validate()
		},
		referrers: func(id int64) (string, int) {
			return db.countRefs(id, func(d *models.Donation) *int64 { return d.DonationIncentiveID }, nil)
		},
	}}
}

func byIncentiveAmount(a, b *models.DonationIncentive) bool {
	if !a.DollarAmount.Equal(b.DollarAmount) {
		return a.DollarAmount.LessThan(b.DollarAmount)
	}
	return a.Name < b.Name
}

func (r *IncentiveRepository) FindByName(ctx context.Context, text string) ([]models.DonationIncentive, error) {
	q := strings.ToLower(strings.TrimSpace(text))
	return r.filter("by name", func(i *models.DonationIncentive) bool {
		return strings.Contains(strings.ToLower(i.Name), q)
	}, func(a, b *models.DonationIncentive) bool { return a.Name < b.Name })
}

func (r *IncentiveRepository) GetByStatus(ctx context.Context, status models.IncentiveStatus) ([]models.DonationIncentive, error) {
	return r.filter("by status", func(i *models.DonationIncentive) bool { return i.Status == status }, byIncentiveAmount)
}

type BatchCommitRepository struct {
	db *DB
}

func (r *BatchCommitRepository) Insert(ctx context.Context, c models.BatchCommit) error {
	if err := r.db.injected("insert", "batch_commit"); err != nil {
		return repository.NewError(repository.ErrInsertFailed, "batch commit", "", err)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.commits[c.ID]; ok {
		return repository.NewError(repository.ErrInsertFailed, "batch commit", "", fmt.Errorf("%w: batch_commit.id %s", errUnique, c.ID))
	}
	r.db.commits[c.ID] = c
	return nil
}

func (r *BatchCommitRepository) Get(ctx context.Context, id uuid.UUID) (*models.BatchCommit, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.commits[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *BatchCommitRepository) List(ctx context.Context, limit int) ([]models.BatchCommit, error) {
	r.db.mu.RLock()
	out := make([]models.BatchCommit, 0, len(r.db.commits))
	for _, c := range r.db.commits {
		out = append(out, c)
	}
	r.db.mu.RUnlock()
	sortCommits(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
