// Package batchfile reads batches prepared offline as YAML:
//
//	kind: donation
//	campaign: 3
//	defaults:
//	  amount: "18.00"
//	  donation_type: CHECK
//	  payment_status: COMPLETED
//	rows:
//	  - donor_id: 7
//	    amount: "25"
//	  - donor_id: 12
package batchfile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/services/batchentry"
)

const dateLayout = "2006-01-02"

type File struct {
	Kind     batchentry.Kind `yaml:"kind"`
	Campaign *int64          `yaml:"campaign"`
	Defaults Values          `yaml:"defaults"`
	Rows     []Row           `yaml:"rows"`
}

// Values are the optional money and status fields shared by the defaults
// block and each row. Amounts and dates stay strings until Parse checks them.
type Values struct {
	Amount        string `yaml:"amount"`
	DonationType  string `yaml:"donation_type"`
	PaymentStatus string `yaml:"payment_status"`
	PledgeStatus  string `yaml:"pledge_status"`
	Date          string `yaml:"date"`
	PrintReceipt  bool   `yaml:"print_receipt"`
	EmailReceipt  bool   `yaml:"email_receipt"`
}

type Row struct {
	Values `yaml:",inline"`

	DonorID    int64  `yaml:"donor_id"`
	PrayerNote string `yaml:"prayer_note"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and checks a batch file. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	if f.Kind == "" {
		f.Kind = batchentry.KindDonation
	}
	if !f.Kind.Valid() {
		return nil, &models.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown batch kind %q", f.Kind)}
	}
	if len(f.Rows) == 0 {
		return nil, &models.ValidationError{Field: "rows", Message: "batch file has no rows"}
	}
	if _, err := f.Defaults.overrides(); err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	for i, r := range f.Rows {
		if r.DonorID <= 0 {
			return nil, &models.ValidationError{Field: fmt.Sprintf("rows[%d].donor_id", i), Message: "donor id is required"}
		}
		if _, err := r.overrides(); err != nil {
			return nil, fmt.Errorf("rows[%d]: %w", i, err)
		}
	}
	return &f, nil
}

// BatchDefaults lays the file's defaults over base. Fields the file leaves
// empty keep the value from base.
func (f *File) BatchDefaults(base batchentry.Defaults) (batchentry.Defaults, error) {
	o, err := f.Defaults.overrides()
	if err != nil {
		return base, err
	}
	m := batchentry.MergeDefaults(o, base)
	d := batchentry.Defaults{
		Amount:        m.Amount,
		DonationType:  m.DonationType,
		PaymentStatus: m.PaymentStatus,
		PledgeStatus:  m.PledgeStatus,
		Date:          m.Date,
		PrintReceipt:  m.PrintReceipt,
		EmailReceipt:  m.EmailReceipt,
	}
	return d, d.Validate(f.Kind)
}

// Fill enters every row of the file into b and resolves it. Donors that
// cannot be found leave their row Invalid; the commit reports them.
func (f *File) Fill(ctx context.Context, b *batchentry.Batch) error {
	for i, r := range f.Rows {
		o, err := r.overrides()
		if err != nil {
			return fmt.Errorf("rows[%d]: %w", i, err)
		}
		rows := b.Rows()
		target := rows[len(rows)-1].ID
		if _, err := b.SetOverrides(target, o); err != nil {
			return fmt.Errorf("rows[%d]: %w", i, err)
		}
		if _, err := b.ResolveRow(ctx, target, r.DonorID); err != nil {
			return fmt.Errorf("rows[%d]: %w", i, err)
		}
	}
	return nil
}

func (r Row) overrides() (batchentry.Overrides, error) {
	o, err := r.Values.overrides()
	if err != nil {
		return o, err
	}
	if r.PrayerNote != "" {
		o.PrayerNote = models.Str(r.PrayerNote)
	}
	return o, nil
}

func (v Values) overrides() (batchentry.Overrides, error) {
	o := batchentry.Overrides{
		DonationType:  models.DonationType(v.DonationType),
		PaymentStatus: models.PaymentStatus(v.PaymentStatus),
		PledgeStatus:  models.PledgeStatus(v.PledgeStatus),
		PrintReceipt:  v.PrintReceipt,
		EmailReceipt:  v.EmailReceipt,
	}
	if v.Amount != "" {
		amt, err := decimal.NewFromString(v.Amount)
		if err != nil {
			return o, &models.ValidationError{Field: "amount", Message: fmt.Sprintf("invalid amount %q", v.Amount)}
		}
		if !amt.IsPositive() {
			return o, &models.ValidationError{Field: "amount", Message: "amount must be greater than zero"}
		}
		o.Amount = amt
	}
	if v.Date != "" {
		d, err := time.ParseInLocation(dateLayout, v.Date, time.Local)
		if err != nil {
			return o, &models.ValidationError{Field: "date", Message: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", v.Date)}
		}
		o.Date = d
	}
	switch {
	case o.DonationType != "" && !o.DonationType.Valid():
		return o, &models.ValidationError{Field: "donation_type", Message: "unknown donation type " + v.DonationType}
	case o.PaymentStatus != "" && !o.PaymentStatus.Valid():
		return o, &models.ValidationError{Field: "payment_status", Message: "unknown payment status " + v.PaymentStatus}
	case o.PledgeStatus != "" && !o.PledgeStatus.Valid():
		return o, &models.ValidationError{Field: "pledge_status", Message: "unknown pledge status " + v.PledgeStatus}
	}
	return o, nil
}
