package batchentry

import (
	"time"

	"github.com/shopspring/decimal"

	"donor-batch-ledger/internal/config"
	"donor-batch-ledger/internal/models"
)

// Overrides holds the per-row values that win over the batch defaults. A
// field counts as set when its Has method says so.
type Overrides struct {
	Amount        decimal.Decimal      `json:"amount"`
	DonationType  models.DonationType  `json:"donation_type,omitempty"`
	PaymentStatus models.PaymentStatus `json:"payment_status,omitempty"`
	PledgeStatus  models.PledgeStatus  `json:"pledge_status,omitempty"`
	Date          time.Time            `json:"date,omitempty"`
	PrintReceipt  bool                 `json:"print_receipt"`
	EmailReceipt  bool                 `json:"email_receipt"`
	PrayerNote    *string              `json:"prayer_note,omitempty"`
}

func (o Overrides) HasAmount() bool        { return o.Amount.IsPositive() }
func (o Overrides) HasDonationType() bool  { return o.DonationType != "" }
func (o Overrides) HasPaymentStatus() bool { return o.PaymentStatus != "" }
func (o Overrides) HasPledgeStatus() bool  { return o.PledgeStatus != "" }
func (o Overrides) HasDate() bool          { return !o.Date.IsZero() }

// Defaults are the batch-wide values. They are passed around by value; a
// row keeps the copy taken when it was resolved.
type Defaults struct {
	Amount        decimal.Decimal      `json:"amount"`
	DonationType  models.DonationType  `json:"donation_type,omitempty"`
	PaymentStatus models.PaymentStatus `json:"payment_status,omitempty"`
	PledgeStatus  models.PledgeStatus  `json:"pledge_status,omitempty"`
	Date          time.Time            `json:"date,omitempty"`
	PrintReceipt  bool                 `json:"print_receipt"`
	EmailReceipt  bool                 `json:"email_receipt"`
}

// Validate rejects defaults no row could be committed with.
func (d Defaults) Validate(kind Kind) error {
	if d.Amount.IsNegative() {
		return &ValidationError{Reason: "default amount cannot be negative"}
	}
	switch kind {
	case KindDonation:
		if d.DonationType != "" && !d.DonationType.Valid() {
			return &ValidationError{Reason: "unknown donation type " + string(d.DonationType)}
		}
		if d.PaymentStatus != "" && !d.PaymentStatus.Valid() {
			return &ValidationError{Reason: "unknown payment status " + string(d.PaymentStatus)}
		}
	case KindPledge:
		if d.PledgeStatus != "" && !d.PledgeStatus.Valid() {
			return &ValidationError{Reason: "unknown pledge status " + string(d.PledgeStatus)}
		}
	}
	return nil
}

// MergeDefaults fills every field o leaves unset from d. It is pure:
// merging twice gives the same result as merging once.
func MergeDefaults(o Overrides, d Defaults) Overrides {
	if !o.HasAmount() {
		o.Amount = d.Amount
	}
	if !o.HasDonationType() {
		o.DonationType = d.DonationType
	}
	if !o.HasPaymentStatus() {
		o.PaymentStatus = d.PaymentStatus
	}
	if !o.HasPledgeStatus() {
		o.PledgeStatus = d.PledgeStatus
	}
	if !o.HasDate() {
		o.Date = d.Date
	}
	o.PrintReceipt = o.PrintReceipt || d.PrintReceipt
	o.EmailReceipt = o.EmailReceipt || d.EmailReceipt
	return o
}

// DefaultsFromConfig builds the starting defaults for a new batch. Pledges
// get an expected fulfillment date PledgeHorizon after now; donations leave
// the date unset so each row is dated when it is committed.
func DefaultsFromConfig(cfg config.Config, kind Kind, now time.Time) Defaults {
	if kind == KindPledge {
		return Defaults{
			Amount:       cfg.PledgeAmount,
			PledgeStatus: models.PledgeStatus(cfg.PledgeStatus),
			Date:         now.Add(cfg.PledgeHorizon),
		}
	}
	return Defaults{
		Amount:        cfg.DonationAmount,
		DonationType:  models.DonationType(cfg.DonationType),
		PaymentStatus: models.PaymentStatus(cfg.PaymentStatus),
	}
}
