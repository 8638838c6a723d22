package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Donation struct {
	ID                    int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID                  string          `gorm:"column:uuid;type:varchar(36);uniqueIndex:idx_donation_uuid;not null" json:"uuid"`
	DonorID               *int64          `gorm:"index:idx_donation_donor" json:"donor_id,omitempty"`
	CampaignID            *int64          `gorm:"index:idx_donation_campaign" json:"campaign_id,omitempty"`
	DonationIncentiveID   *int64          `gorm:"index:idx_donation_incentive" json:"donation_incentive_id,omitempty"`
	Amount                decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	DonationType          DonationType    `gorm:"type:varchar(16);not null" json:"donation_type"`
	PaymentStatus         PaymentStatus   `gorm:"type:varchar(16);index:idx_donation_status;not null;default:PENDING" json:"payment_status"`
	TransactionNumber     *string         `json:"transaction_number,omitempty"`
	ReceiptNumber         *string         `json:"receipt_number,omitempty"`
	PaymentProcessorInfo  *string         `json:"payment_processor_info,omitempty"`
	RequestEmailReceipt   bool            `gorm:"not null;default:false" json:"request_email_receipt"`
	RequestPrintedReceipt bool            `gorm:"not null;default:false" json:"request_printed_receipt"`
	ReceiptStatus         ReceiptStatus   `gorm:"type:varchar(16);index:idx_donation_receipt;not null;default:NOT_REQUESTED" json:"receipt_status"`
	Notes                 *string         `json:"notes,omitempty"`
	IsAnonymous           bool            `gorm:"not null;default:false" json:"is_anonymous"`
	DonationDate          time.Time       `gorm:"index:idx_donation_date;not null" json:"donation_date"`
	CreatedAt             time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"not null" json:"updated_at"`

	Donor     *Donor             `gorm:"foreignKey:DonorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Campaign  *Campaign          `gorm:"foreignKey:CampaignID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Incentive *DonationIncentive `gorm:"foreignKey:DonationIncentiveID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (Donation) TableName() string {
	return "donation"
}

// Normalize fills the defaults a new donation gets when the caller left them blank.
func (d *Donation) Normalize() {
	normalizeAll(&d.TransactionNumber, &d.ReceiptNumber, &d.PaymentProcessorInfo, &d.Notes)
	if d.PaymentStatus == "" {
		d.PaymentStatus = PaymentPending
	}
	if d.ReceiptStatus == "" {
		d.ReceiptStatus = ReceiptNotRequested
		if d.RequestPrintedReceipt || d.RequestEmailReceipt {
			d.ReceiptStatus = ReceiptRequested
		}
	}
	if d.DonationDate.IsZero() {
		d.DonationDate = time.Now()
	}
}

func (d *Donation) Validate() error {
	if !d.Amount.IsPositive() {
		return invalid("amount", "amount must be greater than zero")
	}
	if !d.DonationType.Valid() {
		return invalid("donation_type", "unknown donation type "+string(d.DonationType))
	}
	if !d.PaymentStatus.Valid() {
		return invalid("payment_status", "unknown payment status "+string(d.PaymentStatus))
	}
	if !d.ReceiptStatus.Valid() {
		return invalid("receipt_status", "unknown receipt status "+string(d.ReceiptStatus))
	}
	if d.DonorID == nil && !d.IsAnonymous {
		return invalid("donor_id", "donation must be associated with a donor")
	}
	return nil
}
