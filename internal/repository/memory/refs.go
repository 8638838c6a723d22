package memory

import (
	"fmt"
	"sort"

	"donor-batch-ledger/internal/models"
)

// checkRefs fails like a foreign key would when a referenced donor or
// campaign does not exist. Called with the lock held.
func (db *DB) checkRefs(donorID, campaignID *int64) error {
	if donorID != nil {
		if _, ok := db.donors[*donorID]; !ok {
			return fmt.Errorf("%w: donor %d", errForeignKey, *donorID)
		}
	}
	if campaignID != nil {
		if _, ok := db.campaigns[*campaignID]; !ok {
			return fmt.Errorf("%w: campaign %d", errForeignKey, *campaignID)
		}
	}
	return nil
}

func (db *DB) checkIncentive(id *int64) error {
	if id == nil {
		return nil
	}
	if _, ok := db.incentives[*id]; !ok {
		return fmt.Errorf("%w: donation_incentive %d", errForeignKey, *id)
	}
	return nil
}

// countRefs reports the first table with rows pointing at id. Called with
// the lock held.
func (db *DB) countRefs(id int64, donation func(*models.Donation) *int64, pledge func(*models.Pledge) *int64) (string, int) {
	n := 0
	for _, d := range db.donations {
		if ref := donation(&d); ref != nil && *ref == id {
			n++
		}
	}
	if n > 0 || pledge == nil {
		return "donation", n
	}
	for _, p := range db.pledges {
		if ref := pledge(&p); ref != nil && *ref == id {
			n++
		}
	}
	return "pledge", n
}

func sortCommits(c []models.BatchCommit) {
	sort.Slice(c, func(i, j int) bool { return c[i].StartedAt.After(c[j].StartedAt) })
}
