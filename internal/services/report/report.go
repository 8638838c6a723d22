// Package report exports donations to spreadsheets.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
)

const (
	donationsSheet = "Donations"
	byTypeSheet    = "By Type"
	dateLayout     = "2006-01-02"
)

var donationHeader = []interface{}{
	"Date", "Donor ID", "Donor", "Campaign", "Amount", "Type", "Payment Status", "Receipt Status",
}

// Range selects donations dated in [From, To). A nil CampaignID means all
// campaigns.
type Range struct {
	From       time.Time
	To         time.Time
	CampaignID *int64
}

func (r Range) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return &models.ValidationError{Field: "range", Message: "from and to are required"}
	}
	if !r.To.After(r.From) {
		return &models.ValidationError{Field: "range", Message: "to must be after from"}
	}
	return nil
}

type Summary struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type Exporter struct {
	donations repository.DonationRepo
	donors    repository.DonorRepo
	campaigns repository.CampaignRepo
	log       zerolog.Logger
}

func NewExporter(donations repository.DonationRepo, donors repository.DonorRepo, campaigns repository.CampaignRepo, log zerolog.Logger) *Exporter {
	return &Exporter{
		donations: donations,
		donors:    donors,
		campaigns: campaigns,
		log:       log.With().Str("component", "report").Logger(),
	}
}

// Donations writes an XLSX workbook with one row per donation in rg and a
// second sheet totalling them by donation type.
func (e *Exporter) Donations(ctx context.Context, rg Range, w io.Writer) (Summary, error) {
	if err := rg.Validate(); err != nil {
		return Summary{}, err
	}
	list, err := e.donations.GetInRange(ctx, rg.From, rg.To, rg.CampaignID)
	if err != nil {
		return Summary{}, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", donationsSheet); err != nil {
		return Summary{}, err
	}
	if _, err := f.NewSheet(byTypeSheet); err != nil {
		return Summary{}, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return Summary{}, err
	}

	if err := f.SetSheetRow(donationsSheet, "A1", &donationHeader); err != nil {
		return Summary{}, err
	}
	names := newNameCache(e.donors, e.campaigns)
	sum := Summary{Total: decimal.Zero}
	byType := map[models.DonationType]decimal.Decimal{}
	for i, d := range list {
		donor, campaign, err := names.lookup(ctx, d.DonorID, d.CampaignID)
		if err != nil {
			return Summary{}, err
		}
		row := []interface{}{
			d.DonationDate.Format(dateLayout),
			idCell(d.DonorID),
			donor,
			campaign,
			d.Amount.InexactFloat64(),
			string(d.DonationType),
			string(d.PaymentStatus),
			string(d.ReceiptStatus),
		}
		if err := f.SetSheetRow(donationsSheet, cell(1, i+2), &row); err != nil {
			return Summary{}, err
		}
		sum.Count++
		sum.Total = sum.Total.Add(d.Amount)
		byType[d.DonationType] = byType[d.DonationType].Add(d.Amount)
	}

	totalRow := len(list) + 2
	if err := f.SetSheetRow(donationsSheet, cell(4, totalRow), &[]interface{}{"Total", sum.Total.InexactFloat64()}); err != nil {
		return Summary{}, err
	}
	if err := f.SetCellStyle(donationsSheet, "A1", "H1", bold); err != nil {
		return Summary{}, err
	}
	if err := f.SetCellStyle(donationsSheet, cell(4, totalRow), cell(5, totalRow), bold); err != nil {
		return Summary{}, err
	}
	if err := f.SetColWidth(donationsSheet, "A", "H", 16); err != nil {
		return Summary{}, err
	}
	if err := writeByType(f, byType, bold); err != nil {
		return Summary{}, err
	}

	if err := f.Write(w); err != nil {
		return Summary{}, fmt.Errorf("write workbook: %w", err)
	}
	e.log.Info().
		Time("from", rg.From).
		Time("to", rg.To).
		Int("donations", sum.Count).
		Str("total", sum.Total.StringFixed(2)).
		Msg("donation report exported")
	return sum, nil
}

func writeByType(f *excelize.File, byType map[models.DonationType]decimal.Decimal, bold int) error {
	if err := f.SetSheetRow(byTypeSheet, "A1", &[]interface{}{"Type", "Amount"}); err != nil {
		return err
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for i, t := range types {
		row := []interface{}{t, byType[models.DonationType(t)].InexactFloat64()}
		if err := f.SetSheetRow(byTypeSheet, cell(1, i+2), &row); err != nil {
			return err
		}
	}
	return f.SetCellStyle(byTypeSheet, "A1", "B1", bold)
}

func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		// col and row are always positive here
		panic(err)
	}
	return name
}

func idCell(id *int64) interface{} {
	if id == nil {
		return ""
	}
	return *id
}

// nameCache looks each donor and campaign up once per export.
type nameCache struct {
	donors    repository.DonorRepo
	campaigns repository.CampaignRepo
	donorName map[int64]string
	campName  map[int64]string
}

func newNameCache(donors repository.DonorRepo, campaigns repository.CampaignRepo) *nameCache {
	return &nameCache{
		donors:    donors,
		campaigns: campaigns,
		donorName: map[int64]string{},
		campName:  map[int64]string{},
	}
}

func (c *nameCache) lookup(ctx context.Context, donorID, campaignID *int64) (string, string, error) {
	var donor, campaign string
	if donorID != nil {
		name, ok := c.donorName[*donorID]
		if !ok {
			d, err := c.donors.GetOne(ctx, *donorID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return "", "", err
			}
			if d != nil {
				name = d.FullName()
			}
			c.donorName[*donorID] = name
		}
		donor = name
	}
	if campaignID != nil {
		name, ok := c.campName[*campaignID]
		if !ok {
			cp, err := c.campaigns.GetOne(ctx, *campaignID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return "", "", err
			}
			if cp != nil {
				name = cp.Name
			}
			c.campName[*campaignID] = name
		}
		campaign = name
	}
	return donor, campaign, nil
}
