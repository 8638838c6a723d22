package batchentry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
	"donor-batch-ledger/internal/repository/memory"
	"donor-batch-ledger/internal/store"
)

type lookupFunc func(ctx context.Context, id int64) (*models.Donor, error)

func (f lookupFunc) GetOne(ctx context.Context, id int64) (*models.Donor, error) {
	return f(ctx, id)
}

// donationHook calls before ahead of the n-th insert.
type donationHook struct {
	repository.DonationRepo
	before func(n int)
	n      int
}

func (h *donationHook) Insert(ctx context.Context, d models.Donation) (models.Donation, error) {
	h.n++
	if h.before != nil {
		h.before(h.n)
	}
	return h.DonationRepo.Insert(ctx, d)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func donationDefaults(amount string) Defaults {
	return Defaults{
		Amount:        dec(amount),
		DonationType:  models.DonationCheck,
		PaymentStatus: models.PaymentCompleted,
	}
}

func seedDonors(t *testing.T, db *memory.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := db.Donors().Insert(context.Background(), models.Donor{
			FirstName: models.Str("Donor"),
			LastName:  models.Str(string(rune('A' + i))),
			Address:   models.Str("1 Main St"),
			City:      models.Str("Brooklyn"),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestMergeDefaults(t *testing.T) {
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	d := Defaults{
		Amount:        dec("10"),
		DonationType:  models.DonationCheck,
		PaymentStatus: models.PaymentCompleted,
		PledgeStatus:  models.PledgePledged,
		Date:          day,
		PrintReceipt:  true,
	}
	tests := []struct {
		name string
		in   Overrides
		want Overrides
	}{
		{
			name: "all unset",
			in:   Overrides{},
			want: Overrides{Amount: dec("10"), DonationType: models.DonationCheck, PaymentStatus: models.PaymentCompleted,
				PledgeStatus: models.PledgePledged, Date: day, PrintReceipt: true},
		},
		{
			name: "explicit values kept",
			in:   Overrides{Amount: dec("25"), DonationType: models.DonationCash, Date: day.AddDate(0, 0, 3)},
			want: Overrides{Amount: dec("25"), DonationType: models.DonationCash, PaymentStatus: models.PaymentCompleted,
				PledgeStatus: models.PledgePledged, Date: day.AddDate(0, 0, 3), PrintReceipt: true},
		},
		{
			name: "zero amount is unset",
			in:   Overrides{Amount: decimal.Zero},
			want: Overrides{Amount: dec("10"), DonationType: models.DonationCheck, PaymentStatus: models.PaymentCompleted,
				PledgeStatus: models.PledgePledged, Date: day, PrintReceipt: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeDefaults(tt.in, d)
			if !got.Amount.Equal(tt.want.Amount) || got.DonationType != tt.want.DonationType ||
				got.PaymentStatus != tt.want.PaymentStatus || got.PledgeStatus != tt.want.PledgeStatus ||
				!got.Date.Equal(tt.want.Date) || got.PrintReceipt != tt.want.PrintReceipt {
				t.Errorf("MergeDefaults = %+v, want %+v", got, tt.want)
			}
			again := MergeDefaults(got, d)
			if !again.Amount.Equal(got.Amount) || again.DonationType != got.DonationType || !again.Date.Equal(got.Date) {
				t.Error("second merge changed the result")
			}
		})
	}
}

func TestScenarioA(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 7)
	ctx := context.Background()

	b := NewBatch(KindDonation, donationDefaults("10.00"), db.Donors())
	row1 := b.Rows()[0]
	if _, err := b.SetOverrides(row1.ID, Overrides{Amount: dec("25.00")}); err != nil {
		t.Fatal(err)
	}
	r1, err := b.ResolveRow(ctx, row1.ID, 7)
	if err != nil || r1.State != RowValid {
		t.Fatalf("row1 = %+v, %v", r1, err)
	}

	row2 := b.Rows()[1]
	r2, err := b.ResolveRow(ctx, row2.ID, 999)
	if err != nil {
		t.Fatal(err)
	}
	if r2.State != RowInvalid || r2.Reason != ReasonDonorNotFound || r2.DisplayText != "Donor ID 999 not found" {
		t.Fatalf("row2 = %+v", r2)
	}
	rows := b.Rows()
	if len(rows) != 3 || !rows[2].IsBlank() {
		t.Fatalf("expected two resolved rows and one blank, got %d rows", len(rows))
	}

	c := NewCommitter(db.Donations(), db.Pledges(), zerolog.Nop())
	res, err := c.CommitBatch(ctx, b, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Succeeded != 1 || res.Failed != 1 || !res.TotalAmount.Equal(dec("25.00")) {
		t.Fatalf("result = %d/%d/%s", res.Succeeded, res.Failed, res.TotalAmount)
	}
	got, _ := b.Row(row2.ID)
	if got.Status.Process != Failed || got.Status.Message != ReasonDonorNotValidated {
		t.Errorf("row2 status = %+v", got.Status)
	}
	blank, _ := b.Row(rows[2].ID)
	if blank.Status.Process != Unprocessed {
		t.Errorf("blank row touched: %+v", blank.Status)
	}

	stored, _ := db.Donations().GetForDonor(ctx, 7)
	if len(stored) != 1 || !stored[0].Amount.Equal(dec("25")) || stored[0].DonationType != models.DonationCheck {
		t.Fatalf("stored donations = %+v", stored)
	}
	if res.AllSucceeded() {
		t.Error("AllSucceeded with a failed row")
	}
}

func TestDefaultsCapturedWhenResolutionStarts(t *testing.T) {
	donor := &models.Donor{ID: 1, LastName: models.Str("Snap")}
	release := make(chan struct{})
	started := make(chan struct{})
	lookup := lookupFunc(func(ctx context.Context, id int64) (*models.Donor, error) {
		close(started)
		<-release
		return donor, nil
	})
	b := NewBatch(KindDonation, donationDefaults("10"), lookup)
	id := b.Rows()[0].ID

	done := make(chan Row)
	go func() {
		r, _ := b.ResolveRow(context.Background(), id, 1)
		done <- r
	}()
	<-started
	if err := b.SetDefaults(donationDefaults("20")); err != nil {
		t.Fatal(err)
	}
	close(release)
	r := <-done

	if !r.Overrides.Amount.Equal(dec("10")) {
		t.Errorf("amount = %s, want the defaults from when resolution began", r.Overrides.Amount)
	}
	if cur := b.Defaults(); !cur.Amount.Equal(dec("20")) {
		t.Errorf("batch defaults = %s", cur.Amount)
	}
}

func TestChangingDefaultsLeavesResolvedRows(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 2)
	ctx := context.Background()
	b := NewBatch(KindDonation, donationDefaults("10"), db.Donors())

	first, _ := b.ResolveRow(ctx, b.Rows()[0].ID, 1)
	b.SetDefaults(donationDefaults("50"))
	second, _ := b.ResolveRow(ctx, b.Rows()[1].ID, 2)

	if again, _ := b.MergeDefaultsIntoRow(first.ID); !again.Overrides.Amount.Equal(dec("10")) {
		t.Errorf("merge rewrote a resolved row: %s", again.Overrides.Amount)
	}
	if !second.Overrides.Amount.Equal(dec("50")) {
		t.Errorf("second row amount = %s", second.Overrides.Amount)
	}

	res, err := NewCommitter(db.Donations(), db.Pledges(), zerolog.Nop()).CommitBatch(ctx, b, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.TotalAmount.Equal(dec("60")) {
		t.Errorf("total = %s, want 60", res.TotalAmount)
	}
}

func TestEditingResolvedRowKeepsCapturedDefaults(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 1)
	ctx := context.Background()
	b := NewBatch(KindDonation, donationDefaults("10"), db.Donors())

	id := b.Rows()[0].ID
	if r, _ := b.ResolveRow(ctx, id, 1); r.Overrides.DonationType != models.DonationCheck {
		t.Fatalf("resolved type = %s", r.Overrides.DonationType)
	}
	if err := b.SetDefaults(Defaults{
		Amount:        dec("50"),
		DonationType:  models.DonationCash,
		PaymentStatus: models.PaymentPending,
	}); err != nil {
		t.Fatal(err)
	}
	edited, err := b.SetOverrides(id, Overrides{Amount: dec("25")})
	if err != nil {
		t.Fatal(err)
	}
	if edited.Overrides.DonationType != models.DonationCheck || edited.Overrides.PaymentStatus != models.PaymentCompleted {
		t.Errorf("edited overrides = %+v", edited.Overrides)
	}

	res, err := NewCommitter(db.Donations(), db.Pledges(), zerolog.Nop()).CommitBatch(ctx, b, nil)
	if err != nil || res.Succeeded != 1 {
		t.Fatalf("result = %+v, %v", res, err)
	}
	d, _ := db.Donations().GetOne(ctx, res.Outcomes[0].RecordID)
	if d == nil || !d.Amount.Equal(dec("25")) || d.DonationType != models.DonationCheck || d.PaymentStatus != models.PaymentCompleted {
		t.Errorf("donation = %+v", d)
	}
}

func TestReenteredRowUsesCurrentDefaults(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 2)
	ctx := context.Background()
	b := NewBatch(KindDonation, donationDefaults("10"), db.Donors())

	id := b.Rows()[0].ID
	b.ResolveRow(ctx, id, 1)
	b.SetDefaults(donationDefaults("40"))
	two := int64(2)
	b.EnterDonorID(id, &two)
	r, _ := b.SetOverrides(id, Overrides{})
	if !r.Effective(b.Defaults()).Amount.Equal(dec("40")) {
		t.Errorf("unresolved row amount = %s, want the current default", r.Effective(b.Defaults()).Amount)
	}
	r, _ = b.ResolveRow(ctx, id, 2)
	if !r.Overrides.Amount.Equal(dec("40")) {
		t.Errorf("re-resolved amount = %s", r.Overrides.Amount)
	}
}

func TestResolveRowIsIdempotent(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 3)
	ctx := context.Background()
	b := NewBatch(KindDonation, donationDefaults("10"), db.Donors())
	id := b.Rows()[0].ID

	first, _ := b.ResolveRow(ctx, id, 3)
	second, _ := b.ResolveRow(ctx, id, 3)
	if *second.DonorID != 3 || second.Donor.ID != first.Donor.ID || second.State != RowValid {
		t.Errorf("second resolve changed the row: %+v", second)
	}
	if n := len(b.Rows()); n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
	if second.DisplayText != "Donor C\n1 Main St, Brooklyn" {
		t.Errorf("display = %q", second.DisplayText)
	}
}

func TestFocusMovesToNextRow(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 2)
	ctx := context.Background()
	b := NewBatch(KindDonation, donationDefaults("10"), db.Donors())
	b.AddRow()
	b.AddRow()
	rows := b.Rows()

	if _, err := b.ResolveRow(ctx, rows[0].ID, 1); err != nil {
		t.Fatal(err)
	}
	if b.Focus() != rows[1].ID {
		t.Error("focus did not move to the next row")
	}
	if len(b.Rows()) != 3 {
		t.Error("a row was appended although the resolved row was not last")
	}

	b.ResolveRow(ctx, rows[2].ID, 2)
	after := b.Rows()
	if len(after) != 4 || b.Focus() != after[3].ID {
		t.Errorf("resolving the last row should append and focus a row; rows=%d", len(after))
	}
	for i, r := range rows {
		if after[i].ID != r.ID {
			t.Errorf("row %d changed identity", i)
		}
	}
}

func TestLookupErrorMakesRowInvalid(t *testing.T) {
	lookup := lookupFunc(func(ctx context.Context, id int64) (*models.Donor, error) {
		return nil, errors.New("disk on fire")
	})
	b := NewBatch(KindDonation, donationDefaults("10"), lookup)
	r, err := b.ResolveRow(context.Background(), b.Rows()[0].ID, 5)
	if err != nil {
		t.Fatal(err)
	}
	if r.State != RowInvalid || r.DisplayText != "Error finding donor: disk on fire" {
		t.Errorf("row = %+v", r)
	}
}

func TestResolveUnknownRow(t *testing.T) {
	b := NewBatch(KindDonation, Defaults{}, memory.New().Donors())
	if _, err := b.ResolveRow(context.Background(), uuid.New(), 1); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestCommitCountsOnlyNonBlankRows(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 4)
	ctx := context.Background()
	b := NewBatch(KindDonation, donationDefaults("5"), db.Donors())

	for _, id := range []int64{1, 2, 404} {
		rows := b.Rows()
		b.ResolveRow(ctx, rows[len(rows)-1].ID, id)
	}
	b.AddRow()
	b.AddRow()
	typed := b.AddRow()
	three := int64(3)
	b.EnterDonorID(typed.ID, &three)

	res, err := NewCommitter(db.Donations(), db.Pledges(), zerolog.Nop()).CommitBatch(ctx, b, nil)
	if err != nil {
		t.Fatal(err)
	}
	nonBlank := 0
	for _, r := range b.Rows() {
		if !r.IsBlank() {
			nonBlank++
		}
	}
	if res.Succeeded+res.Failed != nonBlank || res.Succeeded != 2 || res.Failed != 2 {
		t.Errorf("succeeded=%d failed=%d nonBlank=%d", res.Succeeded, res.Failed, nonBlank)
	}
	typedRow, _ := b.Row(typed.ID)
	if typedRow.Status.Message != ReasonDonorNotValidated {
		t.Errorf("unresolved identifier status = %+v", typedRow.Status)
	}
}

func TestZeroAmountFails(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 1)
	ctx := context.Background()
	b := NewBatch(KindDonation, donationDefaults("0"), db.Donors())
	r, _ := b.ResolveRow(ctx, b.Rows()[0].ID, 1)

	res, err := NewCommitter(db.Donations(), db.Pledges(), zerolog.Nop()).CommitBatch(ctx, b, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := b.Row(r.ID)
	if res.Failed != 1 || got.Status.Message != ReasonAmountNotPositive {
		t.Errorf("result = %+v, row = %+v", res, got.Status)
	}
	if n, _ := db.Donations().GetCount(ctx); n != 0 {
		t.Errorf("%d donations stored", n)
	}
}

func TestRowsAppendedMidCommitAreNotProcessed(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 2)
	ctx := context.Background()
	b := NewBatch(KindDonation, donationDefaults("10"), db.Donors())
	b.ResolveRow(ctx, b.Rows()[0].ID, 1)
	b.ResolveRow(ctx, b.Rows()[1].ID, 2)

	hook := &donationHook{DonationRepo: db.Donations(), before: func(int) {
		r := b.AddRow()
		b.SelectDonor(ctx, r.ID, models.Donor{ID: 1, LastName: models.Str("Late")})
	}}
	res, err := NewCommitter(hook, db.Pledges(), zerolog.Nop()).CommitBatch(ctx, b, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Succeeded != 2 || len(res.Outcomes) != 2 {
		t.Errorf("result = %d succeeded, %d outcomes", res.Succeeded, len(res.Outcomes))
	}
	if hook.n != 2 {
		t.Errorf("inserts = %d", hook.n)
	}
}

func TestStoreOutageAbortsCommit(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 3)
	ctx := context.Background()
	b := NewBatch(KindDonation, donationDefaults("10"), db.Donors())
	for id := int64(1); id <= 3; id++ {
		rows := b.Rows()
		b.ResolveRow(ctx, rows[len(rows)-1].ID, id)
	}

	hook := &donationHook{DonationRepo: db.Donations(), before: func(n int) {
		if n == 2 {
			db.SetFault(func(op, entity string) error { return store.ErrUnavailable })
		}
	}}
	res, err := NewCommitter(hook, db.Pledges(), zerolog.Nop()).CommitBatch(ctx, b, nil)
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if !res.Aborted || res.Succeeded != 1 || res.Failed != 1 {
		t.Errorf("result = %+v", res)
	}
	if last := b.Rows()[2]; last.Status.Process != Unprocessed {
		t.Errorf("row after the outage was processed: %+v", last.Status)
	}
}

func TestCancelStopsCommit(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := NewBatch(KindDonation, donationDefaults("10"), db.Donors())
	for id := int64(1); id <= 3; id++ {
		rows := b.Rows()
		b.ResolveRow(ctx, rows[len(rows)-1].ID, id)
	}

	hook := &donationHook{DonationRepo: db.Donations(), before: func(n int) {
		if n == 1 {
			cancel()
		}
	}}
	res, err := NewCommitter(hook, db.Pledges(), zerolog.Nop()).CommitBatch(ctx, b, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if !res.Aborted || res.Succeeded+res.Failed != 1 {
		t.Errorf("result = %+v", res)
	}
	if hook.n != 1 {
		t.Errorf("inserts after cancel: %d", hook.n)
	}
}

func TestPledgeBatch(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 1)
	ctx := context.Background()
	c, _ := db.Campaigns().Insert(ctx, models.Campaign{Name: "Torah", CampaignCode: "T1"})
	due := time.Now().AddDate(0, 1, 0)
	b := NewBatch(KindPledge, Defaults{Amount: dec("50"), PledgeStatus: models.PledgePledged, Date: due}, db.Donors())

	id := b.Rows()[0].ID
	b.SetOverrides(id, Overrides{PrayerNote: models.Str("for a refuah")})
	b.ResolveRow(ctx, id, 1)

	res, err := NewCommitter(db.Donations(), db.Pledges(), zerolog.Nop()).CommitBatch(ctx, b, &c.ID)
	if err != nil || res.Succeeded != 1 {
		t.Fatalf("result = %+v, %v", res, err)
	}
	p, _ := db.Pledges().GetOne(ctx, res.Outcomes[0].RecordID)
	if p == nil || !p.PledgeAmount.Equal(dec("50")) || !p.CurrentBalance.Equal(dec("50")) ||
		*p.CampaignID != c.ID || models.Deref(p.PrayerNote) != "for a refuah" || !p.ExpectedFulfillmentDate.Equal(due) {
		t.Errorf("pledge = %+v", p)
	}
}

func TestCommitPendingSkipsSucceeded(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 2)
	ctx := context.Background()
	b := NewBatch(KindDonation, donationDefaults("10"), db.Donors())
	b.ResolveRow(ctx, b.Rows()[0].ID, 1)
	bad := b.Rows()[1]
	b.ResolveRow(ctx, bad.ID, 77)

	c := NewCommitter(db.Donations(), db.Pledges(), zerolog.Nop())
	if res, _ := c.CommitBatch(ctx, b, nil); res.Succeeded != 1 || res.Failed != 1 {
		t.Fatalf("first run = %+v", res)
	}
	b.ResolveRow(ctx, bad.ID, 2)
	res, err := c.CommitPending(ctx, b, nil)
	if err != nil || res.Succeeded != 1 || res.Failed != 0 {
		t.Fatalf("retry = %+v, %v", res, err)
	}
	if n, _ := db.Donations().GetCount(ctx); n != 2 {
		t.Errorf("donations = %d, want 2", n)
	}
}

func TestPendingSnapshot(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 2)
	ctx := context.Background()
	b := NewBatch(KindDonation, donationDefaults("10"), db.Donors())
	first, _ := b.ResolveRow(ctx, b.Rows()[0].ID, 1)
	second, _ := b.ResolveRow(ctx, b.Rows()[1].ID, 2)
	b.SetStatus(first.ID, RowStatus{Process: Succeeded})
	b.SetDefaults(donationDefaults("30"))

	rows, d := b.PendingSnapshot()
	if len(rows) != 1 || rows[0].ID != second.ID {
		t.Fatalf("pending rows = %+v", rows)
	}
	if !d.Amount.Equal(dec("30")) {
		t.Errorf("defaults amount = %s", d.Amount)
	}
}

func newTestService(db *memory.DB) *Service {
	return NewService(Repos{
		Donors:    db.Donors(),
		Campaigns: db.Campaigns(),
		Donations: db.Donations(),
		Pledges:   db.Pledges(),
		Commits:   db.BatchCommits(),
	}, func(k Kind) Defaults { return donationDefaults("18") }, zerolog.Nop())
}

func TestServiceCommitWritesAuditAndClears(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 1)
	ctx := context.Background()
	svc := newTestService(db)

	b, err := svc.CreateBatch(KindDonation, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SelectDonor(ctx, b.ID, b.Rows()[0].ID, 1); err != nil {
		t.Fatal(err)
	}
	res, err := svc.Commit(ctx, b.ID, CommitOptions{ClearOnSuccess: true})
	if err != nil || !res.AllSucceeded() || !res.TotalAmount.Equal(dec("18")) {
		t.Fatalf("commit = %+v, %v", res, err)
	}
	if rows := b.Rows(); len(rows) != 1 || !rows[0].IsBlank() {
		t.Errorf("batch not cleared: %d rows", len(rows))
	}

	commits, err := svc.Commits(ctx, 10)
	if err != nil || len(commits) != 1 {
		t.Fatalf("commits = %v, %v", commits, err)
	}
	if commits[0].SessionID != b.ID || commits[0].SucceededCount != 1 || commits[0].Status != models.CommitCompleted {
		t.Errorf("audit = %+v", commits[0])
	}
	if last, ok := svc.LastResult(b.ID); !ok || last.Succeeded != 1 {
		t.Errorf("LastResult = %+v, %v", last, ok)
	}
}

func TestServiceAuditFailureKeepsResult(t *testing.T) {
	db := memory.New()
	seedDonors(t, db, 1)
	ctx := context.Background()
	svc := newTestService(db)
	b, _ := svc.CreateBatch(KindDonation, nil)
	b.ResolveRow(ctx, b.Rows()[0].ID, 1)

	db.SetFault(func(op, entity string) error {
		if entity == "batch_commit" {
			return errors.New("audit table locked")
		}
		return nil
	})
	res, err := svc.Commit(ctx, b.ID, CommitOptions{})
	if err != nil || res.Succeeded != 1 {
		t.Errorf("commit = %+v, %v", res, err)
	}
}

func TestServiceValidation(t *testing.T) {
	db := memory.New()
	svc := newTestService(db)
	ctx := context.Background()

	if _, err := svc.CreateBatch("gift", nil); err == nil {
		t.Error("unknown kind accepted")
	}
	bad := Defaults{Amount: dec("-1")}
	if _, err := svc.CreateBatch(KindDonation, &bad); err == nil {
		t.Error("negative default accepted")
	}
	b, _ := svc.CreateBatch(KindDonation, nil)
	missing := int64(12)
	var ve *ValidationError
	if _, err := svc.Commit(ctx, b.ID, CommitOptions{CampaignID: &missing}); !errors.As(err, &ve) {
		t.Errorf("missing campaign = %v", err)
	}
	if _, err := svc.SelectDonor(ctx, b.ID, b.Rows()[0].ID, 5); !errors.As(err, &ve) {
		t.Errorf("missing donor = %v", err)
	}
	if err := svc.DeleteBatch(b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetBatch(b.ID); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("deleted batch = %v", err)
	}
}

func TestStateText(t *testing.T) {
	for _, s := range []RowState{RowEmpty, RowResolving, RowValid, RowInvalid} {
		b, _ := s.MarshalText()
		var back RowState
		if err := back.UnmarshalText(b); err != nil || back != s {
			t.Errorf("RowState %v round trip = %v, %v", s, back, err)
		}
	}
	var p ProcessStatus
	if err := p.UnmarshalText([]byte("succeeded")); err != nil || p != Succeeded {
		t.Errorf("ProcessStatus = %v, %v", p, err)
	}
	if err := p.UnmarshalText([]byte("done")); err == nil {
		t.Error("unknown status accepted")
	}
}
