package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func TestDonorNormalizeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		donor   Donor
		wantErr string
	}{
		{"last name", Donor{LastName: Str(" Cohen ")}, ""},
		{"company only", Donor{Company: Str("Acme")}, ""},
		{"blank last name", Donor{LastName: Str("   ")}, "last_name"},
		{"bad email", Donor{LastName: Str("Cohen"), Email: Str("eli@")}, "email"},
		{"good email", Donor{LastName: Str("Cohen"), Email: Str("eli@example.org")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.donor
			d.Normalize()
			err := d.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.wantErr {
				t.Fatalf("Validate() = %v, want field %s", err, tt.wantErr)
			}
		})
	}
}

func TestDonorNormalizeTrims(t *testing.T) {
	d := Donor{FirstName: Str("  Eli "), LastName: Str("Cohen"), Notes: Str(" ")}
	d.Normalize()
	if *d.FirstName != "Eli" {
		t.Errorf("FirstName = %q", *d.FirstName)
	}
	if d.Notes != nil {
		t.Errorf("Notes = %q, want nil", *d.Notes)
	}
}

func TestDonorDisplayText(t *testing.T) {
	tests := []struct {
		name  string
		donor Donor
		want  string
	}{
		{"name and address", Donor{FirstName: Str("Eli"), LastName: Str("Cohen"), Address: Str("1 Main St"), City: Str("Lakewood"), State: Str("NJ")}, "Eli Cohen\n1 Main St, Lakewood, NJ"},
		{"with company", Donor{LastName: Str("Cohen"), Company: Str("Acme")}, "Cohen\nAcme"},
		{"company only", Donor{Company: Str("Acme"), City: Str("Lakewood")}, "Acme\nLakewood"},
		{"nothing", Donor{ID: 7}, "ID: 7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.donor.DisplayText(); got != tt.want {
				t.Errorf("DisplayText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCampaignValidate(t *testing.T) {
	start := datatypes.Date(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	end := datatypes.Date(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	zero := decimal.Zero

	tests := []struct {
		name     string
		campaign Campaign
		field    string
	}{
		{"ok", Campaign{Name: "Annual", CampaignCode: "A26"}, ""},
		{"no name", Campaign{Name: " ", CampaignCode: "A26"}, "name"},
		{"no code", Campaign{Name: "Annual"}, "campaign_code"},
		{"dates reversed", Campaign{Name: "Annual", CampaignCode: "A26", StartDate: &start, EndDate: &end}, "end_date"},
		{"zero goal", Campaign{Name: "Annual", CampaignCode: "A26", Goal: &zero}, "goal"},
		{"bad status", Campaign{Name: "Annual", CampaignCode: "A26", Status: "OPEN"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.campaign
			c.Normalize()
			err := c.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				if c.Status != CampaignDraft {
					t.Errorf("Status = %s, want DRAFT", c.Status)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("Validate() = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestDonationNormalizeReceiptStatus(t *testing.T) {
	tests := []struct {
		name           string
		email, printed bool
		preset         ReceiptStatus
		want           ReceiptStatus
	}{
		{"none", false, false, "", ReceiptNotRequested},
		{"email", true, false, "", ReceiptRequested},
		{"printed", false, true, "", ReceiptRequested},
		{"preset kept", true, true, ReceiptPrinted, ReceiptPrinted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Donation{RequestEmailReceipt: tt.email, RequestPrintedReceipt: tt.printed, ReceiptStatus: tt.preset}
			d.Normalize()
			if d.ReceiptStatus != tt.want {
				t.Errorf("ReceiptStatus = %s, want %s", d.ReceiptStatus, tt.want)
			}
			if d.PaymentStatus != PaymentPending {
				t.Errorf("PaymentStatus = %s, want PENDING", d.PaymentStatus)
			}
			if d.DonationDate.IsZero() {
				t.Error("DonationDate not set")
			}
		})
	}
}

func TestDonationValidate(t *testing.T) {
	donor := int64(1)
	ok := Donation{DonorID: &donor, Amount: decimal.NewFromInt(10), DonationType: DonationCash}

	tests := []struct {
		name  string
		edit  func(*Donation)
		field string
	}{
		{"ok", func(*Donation) {}, ""},
		{"zero amount", func(d *Donation) { d.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(d *Donation) { d.Amount = decimal.NewFromInt(-5) }, "amount"},
		{"bad type", func(d *Donation) { d.DonationType = "WIRE" }, "donation_type"},
		{"no donor", func(d *Donation) { d.DonorID = nil }, "donor_id"},
		{"anonymous", func(d *Donation) {
			d.DonorID = nil
			d.IsAnonymous = true
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ok
			tt.edit(&d)
			d.Normalize()
			err := d.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("Validate() = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestPledgeNormalizeDefaultsBalance(t *testing.T) {
	p := Pledge{DonorID: 1, PledgeAmount: decimal.NewFromInt(180), ExpectedFulfillmentDate: time.Now()}
	p.Normalize()
	if p.CurrentBalance == nil || !p.CurrentBalance.Equal(p.PledgeAmount) {
		t.Fatalf("CurrentBalance = %v, want 180", p.CurrentBalance)
	}
	if p.Status != PledgePledged {
		t.Errorf("Status = %s, want PLEDGED", p.Status)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	over := decimal.NewFromInt(200)
	p.CurrentBalance = &over
	if err := p.Validate(); err == nil {
		t.Error("balance above the pledged amount accepted")
	}
	if err := p.ValidateUpdate(); err != nil {
		t.Errorf("ValidateUpdate() = %v", err)
	}
}

func TestNextPledgeStatus(t *testing.T) {
	pledged := decimal.NewFromInt(100)
	fulfilled := PledgeFulfilled

	tests := []struct {
		name     string
		current  PledgeStatus
		balance  int64
		explicit *PledgeStatus
		want     PledgeStatus
	}{
		{"untouched", PledgePledged, 100, nil, PledgePledged},
		{"partial", PledgePledged, 60, nil, PledgePartiallyFulfilled},
		{"settled", PledgePartiallyFulfilled, 0, nil, PledgeFulfilled},
		{"cancelled stays", PledgeCancelled, 0, nil, PledgeCancelled},
		{"explicit wins", PledgePledged, 40, &fulfilled, PledgeFulfilled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextPledgeStatus(tt.current, pledged, decimal.NewFromInt(tt.balance), tt.explicit)
			if got != tt.want {
				t.Errorf("NextPledgeStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPledgeUpdateKeepsMissingFieldsMissing(t *testing.T) {
	p := Pledge{DonorID: 1, PledgeAmount: decimal.NewFromInt(100), ExpectedFulfillmentDate: time.Now(), Status: PledgePledged}
	p.NormalizeUpdate()
	if p.CurrentBalance != nil {
		t.Fatalf("CurrentBalance = %s, want nil", p.CurrentBalance)
	}
	var verr *ValidationError
	if err := p.ValidateUpdate(); !errors.As(err, &verr) || verr.Field != "current_balance" {
		t.Errorf("ValidateUpdate() = %v, want current_balance", err)
	}

	bal := decimal.NewFromInt(40)
	p.CurrentBalance = &bal
	p.Status = ""
	p.NormalizeUpdate()
	if err := p.ValidateUpdate(); !errors.As(err, &verr) || verr.Field != "status" {
		t.Errorf("ValidateUpdate() = %v, want status", err)
	}
}

func TestIncentiveNormalizeAndValidate(t *testing.T) {
	tests := []struct {
		name      string
		incentive DonationIncentive
		field     string
	}{
		{"ok", DonationIncentive{Name: " Plaque ", DollarAmount: decimal.NewFromInt(1800)}, ""},
		{"no name", DonationIncentive{Name: " ", DollarAmount: decimal.NewFromInt(1800)}, "name"},
		{"zero amount", DonationIncentive{Name: "Plaque"}, "dollar_amount"},
		{"bad status", DonationIncentive{Name: "Plaque", DollarAmount: decimal.NewFromInt(1800), Status: "retired"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := tt.incentive
			inc.Normalize()
			err := inc.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				if inc.Name != "Plaque" || inc.Status != IncentiveActive {
					t.Errorf("got %q %s, want Plaque active", inc.Name, inc.Status)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("Validate() = %v, want field %s", err, tt.field)
			}
		})
	}
}
