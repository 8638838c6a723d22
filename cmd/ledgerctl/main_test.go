package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"donor-batch-ledger/internal/config"
	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
	"donor-batch-ledger/internal/store"
)

// setup seeds a database with two donors and returns its path.
func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	dsn := filepath.Join(dir, "ledger.db")

	cfg := config.DefaultConfig()
	cfg.DBDSN = dsn
	st, err := store.Open(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	donors := repository.NewDonorRepository(st)
	for _, last := range []string{"Cohen", "Cohenson"} {
		if _, err := donors.Insert(context.Background(), models.Donor{FirstName: models.Str("Eli"), LastName: models.Str(last), City: models.Str("Lakewood")}); err != nil {
			t.Fatal(err)
		}
	}
	st.Close()
	return dsn
}

func run(t *testing.T, dsn string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db-dsn", dsn, "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	dsn := setup(t)
	out, err := run(t, dsn, "migrate")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "create_donation_system") || !strings.Contains(out, "create_batch_commit") {
		t.Errorf("migrate output = %q", out)
	}
}

func TestDonorsSearch(t *testing.T) {
	dsn := setup(t)
	out, err := run(t, dsn, "donors", "search", "cohen")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.Contains(lines[1], "Eli Cohen ") || !strings.Contains(lines[1], "100") {
		t.Errorf("search output = %q", out)
	}
}

func TestCommitAndReport(t *testing.T) {
	dsn := setup(t)
	batch := filepath.Join(t.TempDir(), "batch.yaml")
	doc := "kind: donation\ndefaults:\n  amount: \"18\"\n  donation_type: CASH\nrows:\n  - donor_id: 1\n  - donor_id: 2\n    amount: \"50\"\n  - donor_id: 9\n"
	if err := os.WriteFile(batch, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, dsn, "commit", "--file", batch)
	if err == nil || !strings.Contains(err.Error(), "1 of 3 rows failed") {
		t.Fatalf("commit err = %v", err)
	}
	if !strings.Contains(out, "2 succeeded, 1 failed, total 68.00") || !strings.Contains(out, "donor not validated") {
		t.Errorf("commit output = %q", out)
	}

	xlsx := filepath.Join(t.TempDir(), "out.xlsx")
	today := time.Now()
	out, err = run(t, dsn, "report", "donations",
		"--from", today.AddDate(0, 0, -1).Format("2006-01-02"),
		"--to", today.AddDate(0, 0, 2).Format("2006-01-02"),
		"--out", xlsx)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2 donations, total 68.00") {
		t.Errorf("report output = %q", out)
	}
	f, err := excelize.OpenFile(xlsx)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("Donations")
	if err != nil || len(rows) != 4 {
		t.Errorf("report rows = %v, %v", rows, err)
	}
}

func TestCommitRequiresFile(t *testing.T) {
	dsn := setup(t)
	if _, err := run(t, dsn, "commit"); err == nil {
		t.Error("commit without --file succeeded")
	}
}
