package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"donor-batch-ledger/internal/models"
)

// Repository is the CRUD contract every entity repository satisfies. GetOne
// returns (nil, nil) when no row has the id.
type Repository[T any] interface {
	Insert(ctx context.Context, v T) (T, error)
	GetOne(ctx context.Context, id int64) (*T, error)
	GetAll(ctx context.Context) ([]T, error)
	GetCount(ctx context.Context) (int64, error)
	Update(ctx context.Context, v T) error
	Delete(ctx context.Context, v T) error
	DeleteOne(ctx context.Context, id int64) error
}

type DonorRepo interface {
	Repository[models.Donor]
	FindByName(ctx context.Context, text string) ([]models.Donor, error)
}

type CampaignRepo interface {
	Repository[models.Campaign]
	FindByName(ctx context.Context, text string) ([]models.Campaign, error)
	GetByStatus(ctx context.Context, status models.CampaignStatus) ([]models.Campaign, error)
	GetByCode(ctx context.Context, code string) (*models.Campaign, error)
}

type DonationRepo interface {
	Repository[models.Donation]
	GetForDonor(ctx context.Context, donorID int64) ([]models.Donation, error)
	GetForCampaign(ctx context.Context, campaignID int64) ([]models.Donation, error)
	GetByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Donation, error)
	TotalForDonor(ctx context.Context, donorID int64) (decimal.Decimal, error)
	CountPendingReceipts(ctx context.Context) (int64, error)
	GetReceiptRequests(ctx context.Context, status models.ReceiptStatus) ([]models.Donation, error)
	UpdateReceiptStatus(ctx context.Context, id int64, status models.ReceiptStatus) error
	// GetInRange returns donations dated in [from, to), optionally limited
	// to one campaign, oldest first.
	GetInRange(ctx context.Context, from, to time.Time, campaignID *int64) ([]models.Donation, error)
	GetForIncentive(ctx context.Context, incentiveID int64) ([]models.Donation, error)
}

type IncentiveRepo interface {
	Repository[models.DonationIncentive]
	FindByName(ctx context.Context, text string) ([]models.DonationIncentive, error)
	GetByStatus(ctx context.Context, status models.IncentiveStatus) ([]models.DonationIncentive, error)
}

type PledgeRepo interface {
	Repository[models.Pledge]
	GetForDonor(ctx context.Context, donorID int64) ([]models.Pledge, error)
	GetForCampaign(ctx context.Context, campaignID int64) ([]models.Pledge, error)
	GetByStatus(ctx context.Context, status models.PledgeStatus) ([]models.Pledge, error)
	// UpdateBalance stores a new balance. When status is nil the status is
	// derived with models.NextPledgeStatus. The updated pledge is returned.
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, status *models.PledgeStatus) (*models.Pledge, error)
	// AdjustBalance reads the pledge and stores the balance next computes
	// from it in the same write, deriving the status. An error from next
	// aborts the write and is returned wrapped.
	AdjustBalance(ctx context.Context, id int64, next func(p models.Pledge) (decimal.Decimal, error)) (*models.Pledge, error)
}

type BatchCommitRepo interface {
	Insert(ctx context.Context, c models.BatchCommit) error
	Get(ctx context.Context, id uuid.UUID) (*models.BatchCommit, error)
	List(ctx context.Context, limit int) ([]models.BatchCommit, error)
}

// ReceiptCutoff bounds NOT_REQUESTED receipt listings to donations entered
// with real dates.
var ReceiptCutoff = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
