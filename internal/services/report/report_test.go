package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository/memory"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC)
}

func TestDonationsExport(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	donor, err := db.Donors().Insert(ctx, models.Donor{FirstName: models.Str("Sara"), LastName: models.Str("Katz")})
	if err != nil {
		t.Fatal(err)
	}
	camp, err := db.Campaigns().Insert(ctx, models.Campaign{Name: "Building Fund", CampaignCode: "BF"})
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range []models.Donation{
		{DonorID: &donor.ID, CampaignID: &camp.ID, Amount: decimal.NewFromInt(25), DonationType: models.DonationCheck, DonationDate: day(2)},
		{DonorID: &donor.ID, Amount: decimal.RequireFromString("12.5"), DonationType: models.DonationCash, DonationDate: day(3)},
		{DonorID: &donor.ID, Amount: decimal.NewFromInt(100), DonationType: models.DonationCash, DonationDate: day(20)},
		{DonorID: &donor.ID, Amount: decimal.NewFromInt(5), DonationType: models.DonationCheck, DonationDate: day(1)},
	} {
		if _, err := db.Donations().Insert(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	exp := NewExporter(db.Donations(), db.Donors(), db.Campaigns(), zerolog.Nop())
	var buf bytes.Buffer
	sum, err := exp.Donations(ctx, Range{From: day(2), To: day(10)}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Count != 2 || !sum.Total.Equal(decimal.RequireFromString("37.5")) {
		t.Fatalf("summary = %+v", sum)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(donationsSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %v", rows)
	}
	want := []string{"2026-03-02", "1", "Sara Katz", "Building Fund", "25", "CHECK", "PENDING", "NOT_REQUESTED"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("row 1 col %d = %q, want %q", i, rows[1][i], v)
		}
	}
	if rows[2][3] != "" || rows[2][4] != "12.5" {
		t.Errorf("row 2 = %v", rows[2])
	}
	if rows[3][3] != "Total" || rows[3][4] != "37.5" {
		t.Errorf("total row = %v", rows[3])
	}

	byType, err := f.GetRows(byTypeSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(byType) != 3 || byType[1][0] != "CASH" || byType[2][0] != "CHECK" || byType[2][1] != "25" {
		t.Errorf("by type = %v", byType)
	}
}

func TestDonationsExportByCampaign(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	donor, _ := db.Donors().Insert(ctx, models.Donor{LastName: models.Str("Katz")})
	camp, _ := db.Campaigns().Insert(ctx, models.Campaign{Name: "Gala", CampaignCode: "G"})
	db.Donations().Insert(ctx, models.Donation{DonorID: &donor.ID, CampaignID: &camp.ID, Amount: decimal.NewFromInt(10), DonationType: models.DonationCash, DonationDate: day(4)})
	db.Donations().Insert(ctx, models.Donation{DonorID: &donor.ID, Amount: decimal.NewFromInt(90), DonationType: models.DonationCash, DonationDate: day(4)})

	exp := NewExporter(db.Donations(), db.Donors(), db.Campaigns(), zerolog.Nop())
	sum, err := exp.Donations(ctx, Range{From: day(1), To: day(30), CampaignID: &camp.ID}, &bytes.Buffer{})
	if err != nil || sum.Count != 1 || !sum.Total.Equal(decimal.NewFromInt(10)) {
		t.Errorf("summary = %+v, %v", sum, err)
	}
}

func TestRangeValidate(t *testing.T) {
	exp := NewExporter(memory.New().Donations(), nil, nil, zerolog.Nop())
	var ve *models.ValidationError
	for _, rg := range []Range{{}, {From: day(5), To: day(5)}, {From: day(6), To: day(5)}} {
		if _, err := exp.Donations(context.Background(), rg, &bytes.Buffer{}); !errors.As(err, &ve) {
			t.Errorf("Range %v: err = %v", rg, err)
		}
	}
}
