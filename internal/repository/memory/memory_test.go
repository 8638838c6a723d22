package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
	"donor-batch-ledger/internal/store"
)

func TestInsertAssignsIdentity(t *testing.T) {
	db := New()
	ctx := context.Background()
	a, err := db.Donors().Insert(ctx, models.Donor{LastName: models.Str("Adler")})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := db.Donors().Insert(ctx, models.Donor{Company: models.Str("Beth El")})
	if a.ID != 1 || b.ID != 2 || a.UUID == "" || a.UUID == b.UUID {
		t.Errorf("identities = %d/%s, %d/%s", a.ID, a.UUID, b.ID, b.UUID)
	}
	if a.CreatedAt.IsZero() || a.UpdatedAt.Before(a.CreatedAt) {
		t.Errorf("timestamps = %s / %s", a.CreatedAt, a.UpdatedAt)
	}
	if got, err := db.Donors().GetOne(ctx, 3); got != nil || err != nil {
		t.Errorf("GetOne miss = %v, %v", got, err)
	}
}

func TestValidationMatchesGormRepository(t *testing.T) {
	db := New()
	_, err := db.Donors().Insert(context.Background(), models.Donor{FirstName: models.Str("Solo")})
	var ve *models.ValidationError
	if !errors.Is(err, repository.ErrInsertFailed) || !errors.As(err, &ve) {
		t.Errorf("Insert = %v", err)
	}
}

func TestForeignKeys(t *testing.T) {
	db := New()
	ctx := context.Background()
	missing := int64(7)
	_, err := db.Donations().Insert(ctx, models.Donation{
		DonorID: &missing, Amount: decimal.NewFromInt(5), DonationType: models.DonationCash,
	})
	if !errors.Is(err, repository.ErrInsertFailed) || !errors.Is(err, errForeignKey) {
		t.Fatalf("dangling donor insert = %v", err)
	}

	d, _ := db.Donors().Insert(ctx, models.Donor{LastName: models.Str("Katz")})
	c, _ := db.Campaigns().Insert(ctx, models.Campaign{Name: "Gala", CampaignCode: "G1"})
	_, err = db.Pledges().Insert(ctx, models.Pledge{
		DonorID: d.ID, CampaignID: &c.ID, PledgeAmount: decimal.NewFromInt(100),
		ExpectedFulfillmentDate: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	for name, del := range map[string]func() error{
		"donor":    func() error { return db.Donors().Delete(ctx, d) },
		"campaign": func() error { return db.Campaigns().DeleteOne(ctx, c.ID) },
	} {
		if err := del(); !errors.Is(err, repository.ErrReferentialIntegrity) || !errors.Is(err, repository.ErrDeleteFailed) {
			t.Errorf("delete referenced %s = %v", name, err)
		}
	}
	if n, _ := db.Donors().GetCount(ctx); n != 1 {
		t.Errorf("donor count = %d", n)
	}
}

func TestCampaignCodeUnique(t *testing.T) {
	db := New()
	ctx := context.Background()
	if _, err := db.Campaigns().Insert(ctx, models.Campaign{Name: "A", CampaignCode: "X"}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Campaigns().Insert(ctx, models.Campaign{Name: "B", CampaignCode: "X"}); !errors.Is(err, repository.ErrInsertFailed) {
		t.Errorf("duplicate code = %v", err)
	}
	got, err := db.Campaigns().GetByCode(ctx, "X")
	if err != nil || got == nil || got.Name != "A" {
		t.Errorf("GetByCode = %v, %v", got, err)
	}
}

func TestUpdateKeepsIdentity(t *testing.T) {
	db := New()
	ctx := context.Background()
	d, _ := db.Donors().Insert(ctx, models.Donor{LastName: models.Str("Roth")})
	created := d.CreatedAt

	d.UUID = "changed"
	d.CreatedAt = time.Time{}
	d.City = models.Str(" Monsey ")
	if err := db.Donors().Update(ctx, d); err != nil {
		t.Fatal(err)
	}
	got, _ := db.Donors().GetOne(ctx, d.ID)
	if got.UUID == "changed" || !got.CreatedAt.Equal(created) || models.Deref(got.City) != "Monsey" {
		t.Errorf("after update: %+v", got)
	}
	if err := db.Donors().Update(ctx, models.Donor{ID: 99, LastName: models.Str("X")}); !repository.IsNotFound(err) {
		t.Errorf("Update missing = %v", err)
	}
}

func TestFindByNameAndTotals(t *testing.T) {
	db := New()
	ctx := context.Background()
	z, _ := db.Donors().Insert(ctx, models.Donor{FirstName: models.Str("Ann"), LastName: models.Str("Zimmer")})
	db.Donors().Insert(ctx, models.Donor{FirstName: models.Str("Bob"), LastName: models.Str("Azimov")})
	db.Donors().Insert(ctx, models.Donor{LastName: models.Str("Other")})

	got, err := db.Donors().FindByName(ctx, "zim")
	if err != nil || len(got) != 2 || models.Deref(got[0].LastName) != "Azimov" {
		t.Fatalf("FindByName = %v, %v", got, err)
	}

	for _, amt := range []string{"10.25", "4.75"} {
		_, err := db.Donations().Insert(ctx, models.Donation{
			DonorID: &z.ID, Amount: decimal.RequireFromString(amt), DonationType: models.DonationCreditCard,
			RequestPrintedReceipt: true,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	total, _ := db.Donations().TotalForDonor(ctx, z.ID)
	if !total.Equal(decimal.NewFromInt(15)) {
		t.Errorf("total = %s", total)
	}
	if n, _ := db.Donations().CountPendingReceipts(ctx); n != 2 {
		t.Errorf("pending = %d", n)
	}
}

func TestPledgeUpdateBalance(t *testing.T) {
	db := New()
	ctx := context.Background()
	d, _ := db.Donors().Insert(ctx, models.Donor{LastName: models.Str("Gold")})
	p, err := db.Pledges().Insert(ctx, models.Pledge{
		DonorID: d.ID, PledgeAmount: decimal.NewFromInt(100), ExpectedFulfillmentDate: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !p.CurrentBalance.Equal(decimal.NewFromInt(100)) || p.Status != models.PledgePledged {
		t.Fatalf("new pledge = %s / %s", p.CurrentBalance, p.Status)
	}

	up, err := db.Pledges().UpdateBalance(ctx, p.ID, decimal.NewFromInt(30), nil)
	if err != nil || up.Status != models.PledgePartiallyFulfilled {
		t.Fatalf("partial = %v, %v", up, err)
	}
	up, _ = db.Pledges().UpdateBalance(ctx, p.ID, decimal.Zero, nil)
	if up.Status != models.PledgeFulfilled {
		t.Errorf("zero balance status = %s", up.Status)
	}
}

func TestFaultInjection(t *testing.T) {
	db := New()
	ctx := context.Background()
	db.SetFault(func(op, entity string) error {
		if op == "insert" && entity == "donor" {
			return store.ErrUnavailable
		}
		return nil
	})
	_, err := db.Donors().Insert(ctx, models.Donor{LastName: models.Str("Down")})
	if !errors.Is(err, store.ErrUnavailable) || !errors.Is(err, repository.ErrInsertFailed) {
		t.Errorf("Insert with fault = %v", err)
	}
	if _, err := db.Donors().GetAll(ctx); err != nil {
		t.Errorf("fetch should not be affected: %v", err)
	}
	db.SetFault(nil)
	if _, err := db.Donors().Insert(ctx, models.Donor{LastName: models.Str("Up")}); err != nil {
		t.Errorf("Insert after clearing fault = %v", err)
	}
}
