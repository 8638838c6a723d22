package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Pledge struct {
	ID                      int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID                    string           `gorm:"column:uuid;type:varchar(36);uniqueIndex:idx_pledge_uuid;not null" json:"uuid"`
	DonorID                 int64            `gorm:"index:idx_pledge_donor;not null" json:"donor_id"`
	CampaignID              *int64           `gorm:"index:idx_pledge_campaign" json:"campaign_id,omitempty"`
	PledgeAmount            decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"pledge_amount"`
	CurrentBalance          *decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"current_balance"`
	Status                  PledgeStatus     `gorm:"type:varchar(24);index:idx_pledge_status;not null;default:PLEDGED" json:"status"`
	ExpectedFulfillmentDate time.Time        `gorm:"index:idx_pledge_expected;not null" json:"expected_fulfillment_date"`
	PrayerNote              *string          `json:"prayer_note,omitempty"`
	Notes                   *string          `json:"notes,omitempty"`
	CreatedAt               time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt               time.Time        `gorm:"not null" json:"updated_at"`

	Donor    *Donor    `gorm:"foreignKey:DonorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Campaign *Campaign `gorm:"foreignKey:CampaignID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (Pledge) TableName() string {
	return "pledge"
}

// Normalize applies the creation defaults: an unset balance starts at the
// pledged amount and an unset status is PLEDGED.
func (p *Pledge) Normalize() {
	p.NormalizeUpdate()
	if p.CurrentBalance == nil {
		b := p.PledgeAmount
		p.CurrentBalance = &b
	}
	if p.Status == "" {
		p.Status = PledgePledged
	}
}

// NormalizeUpdate trims the text fields only. A full-record update must
// carry its balance and status; nothing is defaulted.
func (p *Pledge) NormalizeUpdate() {
	normalizeAll(&p.PrayerNote, &p.Notes)
}

// Validate checks a pledge that is about to be created.
func (p *Pledge) Validate() error {
	if err := p.validateCommon(); err != nil {
		return err
	}
	if p.CurrentBalance.GreaterThan(p.PledgeAmount) {
		return invalid("current_balance", "balance cannot exceed the pledged amount")
	}
	return nil
}

// ValidateUpdate is Validate without the creation-only balance ceiling.
func (p *Pledge) ValidateUpdate() error {
	return p.validateCommon()
}

func (p *Pledge) validateCommon() error {
	if !p.PledgeAmount.IsPositive() {
		return invalid("pledge_amount", "pledge amount must be greater than zero")
	}
	if p.DonorID == 0 {
		return invalid("donor_id", "pledge must be associated with a donor")
	}
	if p.ExpectedFulfillmentDate.IsZero() {
		return invalid("expected_fulfillment_date", "pledge must have an expected fulfillment date")
	}
	if p.Status == "" {
		return invalid("status", "pledge status is required")
	}
	if !p.Status.Valid() {
		return invalid("status", "unknown pledge status "+string(p.Status))
	}
	if p.CurrentBalance == nil {
		return invalid("current_balance", "current balance is required")
	}
	if p.CurrentBalance.IsNegative() {
		return invalid("current_balance", "balance cannot be negative")
	}
	return nil
}

// NextPledgeStatus derives the status after a balance change. An explicit
// status always wins; otherwise a cancelled pledge stays cancelled, a zero
// balance is fulfilled and a balance below the pledged amount is partially
// fulfilled.
func NextPledgeStatus(current PledgeStatus, pledged, balance decimal.Decimal, explicit *PledgeStatus) PledgeStatus {
	if explicit != nil {
		return *explicit
	}
	switch {
	case current == PledgeCancelled:
		return current
	case balance.IsZero():
		return PledgeFulfilled
	case balance.LessThan(pledged):
		return PledgePartiallyFulfilled
	}
	return current
}
