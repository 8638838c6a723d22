package batchentry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
	"donor-batch-ledger/internal/store"
)

// RowOutcome is the commit result for one non-blank row.
type RowOutcome struct {
	RowID    uuid.UUID       `json:"row_id"`
	DonorID  *int64          `json:"donor_id,omitempty"`
	Status   ProcessStatus   `json:"status"`
	Message  string          `json:"message,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	RecordID int64           `json:"record_id,omitempty"`
}

// Result aggregates one commit run. Counts and total come from the rows
// snapshotted when the run started.
type Result struct {
	Succeeded   int             `json:"succeeded"`
	Failed      int             `json:"failed"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Outcomes    []RowOutcome    `json:"outcomes"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	// Aborted is set when the run stopped before the last row.
	Aborted bool `json:"aborted"`
}

// AllSucceeded reports a run where at least one row went in and none
// failed. Callers use it to decide whether to clear the batch.
func (r Result) AllSucceeded() bool {
	return r.Succeeded > 0 && r.Failed == 0
}

// Committer turns valid rows into donations or pledges.
type Committer struct {
	donations repository.DonationRepo
	pledges   repository.PledgeRepo
	log       zerolog.Logger
	now       func() time.Time
}

func NewCommitter(donations repository.DonationRepo, pledges repository.PledgeRepo, log zerolog.Logger) *Committer {
	return &Committer{donations: donations, pledges: pledges, log: log, now: time.Now}
}

// CommitBatch commits every row of b in order. Row failures are recorded on
// the row and counted; they never stop the run. A store outage stops it
// and is returned together with the partial result, as is cancellation of
// ctx. Rows already committed stay committed.
func (c *Committer) CommitBatch(ctx context.Context, b *Batch, campaignID *int64) (Result, error) {
	rows, defaults := b.Snapshot()
	return c.commitRows(ctx, b, rows, defaults, campaignID)
}

// CommitPending is CommitBatch restricted to rows that have not succeeded,
// for re-running a batch after fixing its failed rows.
func (c *Committer) CommitPending(ctx context.Context, b *Batch, campaignID *int64) (Result, error) {
	rows, defaults := b.PendingSnapshot()
	return c.commitRows(ctx, b, rows, defaults, campaignID)
}

func (c *Committer) commitRows(ctx context.Context, b *Batch, rows []Row, defaults Defaults, campaignID *int64) (Result, error) {
	res := Result{TotalAmount: decimal.Zero, StartedAt: c.now()}
	if campaignID != nil {
		id := *campaignID
		campaignID = &id
	}
	log := c.log.With().Str("batch", b.ID.String()).Str("kind", string(b.Kind)).Logger()

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			res.Aborted = true
			res.CompletedAt = c.now()
			return res, err
		}
		if row.IsBlank() {
			continue
		}

		out := RowOutcome{RowID: row.ID, DonorID: row.DonorID}
		if row.State != RowValid || row.Donor == nil {
			c.record(b, &res, out, &ValidationError{Reason: ReasonDonorNotValidated})
			continue
		}
		eff := row.Effective(defaults)
		out.Amount = eff.Amount
		if !eff.Amount.IsPositive() {
			c.record(b, &res, out, &ValidationError{Reason: ReasonAmountNotPositive})
			continue
		}

		id, err := c.insert(ctx, b.Kind, row.Donor.ID, eff, campaignID)
		out.RecordID = id
		c.record(b, &res, out, err)
		if err == nil {
			continue
		}
		log.Warn().Err(err).Str("row", row.ID.String()).Msg("row not committed")
		switch {
		case errors.Is(err, store.ErrUnavailable):
			res.Aborted = true
			res.CompletedAt = c.now()
			return res, err
		case ctx.Err() != nil:
			res.Aborted = true
			res.CompletedAt = c.now()
			return res, ctx.Err()
		}
	}

	res.CompletedAt = c.now()
	log.Info().
		Int("succeeded", res.Succeeded).
		Int("failed", res.Failed).
		Str("total", res.TotalAmount.StringFixed(2)).
		Msg("batch committed")
	return res, nil
}

// record writes the outcome back to the live row by ID and counts it.
func (c *Committer) record(b *Batch, res *Result, out RowOutcome, err error) {
	if err != nil {
		out.Status = Failed
		out.Message = err.Error()
		res.Failed++
	} else {
		out.Status = Succeeded
		res.Succeeded++
		res.TotalAmount = res.TotalAmount.Add(out.Amount)
	}
	res.Outcomes = append(res.Outcomes, out)
	b.SetStatus(out.RowID, RowStatus{Process: out.Status, Message: out.Message})
}

func (c *Committer) insert(ctx context.Context, kind Kind, donorID int64, eff Overrides, campaignID *int64) (int64, error) {
	date := eff.Date
	if date.IsZero() {
		date = c.now()
	}
	if kind == KindPledge {
		p, err := c.pledges.Insert(ctx, models.Pledge{
			DonorID:                 donorID,
			CampaignID:              campaignID,
			PledgeAmount:            eff.Amount,
			Status:                  eff.PledgeStatus,
			ExpectedFulfillmentDate: date,
			PrayerNote:              eff.PrayerNote,
		})
		return p.ID, err
	}
	d, err := c.donations.Insert(ctx, models.Donation{
		DonorID:               &donorID,
		CampaignID:            campaignID,
		Amount:                eff.Amount,
		DonationType:          eff.DonationType,
		PaymentStatus:         eff.PaymentStatus,
		RequestPrintedReceipt: eff.PrintReceipt,
		RequestEmailReceipt:   eff.EmailReceipt,
		DonationDate:          date,
	})
	return d.ID, err
}
