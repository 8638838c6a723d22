package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/store"
)

type DonationRepository struct {
	*table[models.Donation]
}

var _ DonationRepo = (*DonationRepository)(nil)

func NewDonationRepository(s *store.Store) *DonationRepository {
	return &DonationRepository{&table[models.Donation]{
		store:  s,
		entity: "donation",
		id:     func(d *models.Donation) int64 { return d.ID },
		prepare: func(d *models.Donation, insert bool) error {
			if insert && d.UUID == "" {
				d.UUID = uuid.NewString()
			}
			d.Normalize()
			return d.Validate()
		},
	}}
}

func (r *DonationRepository) GetForDonor(ctx context.Context, donorID int64) ([]models.Donation, error) {
	return r.find(ctx, fmt.Sprintf("for donor %d", donorID), func(tx *gorm.DB) *gorm.DB {
		return tx.Where("donor_id = ?", donorID).Order("donation_date DESC")
	})
}

func (r *DonationRepository) GetForIncentive(ctx context.Context, incentiveID int64) ([]models.Donation, error) {
	return r.find(ctx, fmt.Sprintf("for incentive %d", incentiveID), func(tx *gorm.DB) *gorm.DB {
		return tx.Where("donation_incentive_id = ?", incentiveID).Order("donation_date DESC")
	})
}

func (r *DonationRepository) GetForCampaign(ctx context.Context, campaignID int64) ([]models.Donation, error) {
	return r.find(ctx, fmt.Sprintf("for campaign %d", campaignID), func(tx *gorm.DB) *gorm.DB {
		return tx.Where("campaign_id = ?", campaignID).Order("donation_date DESC")
	})
}

func (r *DonationRepository) GetByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Donation, error) {
	return r.find(ctx, "by status", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("payment_status = ?", status).Order("donation_date DESC")
	})
}

// TotalForDonor sums every donation recorded for the donor.
func (r *DonationRepository) TotalForDonor(ctx context.Context, donorID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.store.Read(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.Donation{}).
			Where("donor_id = ?", donorID).
			Select("COALESCE(SUM(amount), 0)").
			Row().Scan(&total)
	})
	if err != nil {
		return decimal.Zero, NewError(ErrFetchFailed, r.entity, fmt.Sprintf("total for donor %d", donorID), err)
	}
	return total, nil
}

// CountPendingReceipts counts printed receipts that are requested or queued.
func (r *DonationRepository) CountPendingReceipts(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.Read(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.Donation{}).
			Where("request_printed_receipt = ? AND receipt_status IN ?", true,
				[]models.ReceiptStatus{models.ReceiptRequested, models.ReceiptQueued}).
			Count(&n).Error
	})
	if err != nil {
		return 0, NewError(ErrFetchFailed, r.entity, "pending receipts", err)
	}
	return n, nil
}

// GetReceiptRequests lists donations in a receipt status, newest first.
// NOT_REQUESTED covers every donation dated after ReceiptCutoff; the other
// statuses only cover donations that asked for a printed receipt.
func (r *DonationRepository) GetReceiptRequests(ctx context.Context, status models.ReceiptStatus) ([]models.Donation, error) {
	return r.find(ctx, "receipt requests", func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("receipt_status = ?", status)
		if status == models.ReceiptNotRequested {
			tx = tx.Where("donation_date > ?", ReceiptCutoff)
		} else {
			tx = tx.Where("request_printed_receipt = ?", true)
		}
		return tx.Order("donation_date DESC")
	})
}

func (r *DonationRepository) UpdateReceiptStatus(ctx context.Context, id int64, status models.ReceiptStatus) error {
	if !status.Valid() {
		return NewError(ErrUpdateFailed, r.entity, "receipt status", &models.ValidationError{
			Field: "receipt_status", Message: "unknown receipt status " + string(status),
		})
	}
	err := r.store.Write(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Donation{}).Where("id = ?", id).Updates(map[string]interface{}{
			"receipt_status": status,
			"updated_at":     time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return NewError(ErrUpdateFailed, r.entity, fmt.Sprintf("receipt status of id %d", id), err)
	}
	return nil
}

func (r *DonationRepository) GetInRange(ctx context.Context, from, to time.Time, campaignID *int64) ([]models.Donation, error) {
	return r.find(ctx, "in range", func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("donation_date >= ? AND donation_date < ?", from, to)
		if campaignID != nil {
			tx = tx.Where("campaign_id = ?", *campaignID)
		}
		return tx.Order("donation_date, id")
	})
}
