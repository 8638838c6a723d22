// Package memory keeps every entity in maps behind one lock. It enforces
// the same identity, validation and reference rules as the gorm
// repositories, so engine tests and demo mode can run without a database.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"donor-batch-ledger/internal/models"
)

// Fault lets tests fail an operation. op is "insert", "fetch", "update" or
// "delete"; entity is the table name.
type Fault func(op, entity string) error

type DB struct {
	mu         sync.RWMutex
	donors     map[int64]models.Donor
	campaigns  map[int64]models.Campaign
	donations  map[int64]models.Donation
	pledges    map[int64]models.Pledge
	incentives map[int64]models.DonationIncentive
	commits    map[uuid.UUID]models.BatchCommit
	lastID     map[string]int64
	fault      Fault
}

func New() *DB {
	return &DB{
		donors:     map[int64]models.Donor{},
		campaigns:  map[int64]models.Campaign{},
		donations:  map[int64]models.Donation{},
		pledges:    map[int64]models.Pledge{},
		incentives: map[int64]models.DonationIncentive{},
		commits:    map[uuid.UUID]models.BatchCommit{},
		lastID:     map[string]int64{},
	}
}

// SetFault installs f; nil clears it.
func (db *DB) SetFault(f Fault) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.fault = f
}

func (db *DB) injected(op, entity string) error {
	db.mu.RLock()
	f := db.fault
	db.mu.RUnlock()
	if f == nil {
		return nil
	}
	return f(op, entity)
}

// nextID must be called with the write lock held.
func (db *DB) nextID(entity string) int64 {
	db.lastID[entity]++
	return db.lastID[entity]
}

// seenID records an explicit id so later generated ids stay above it, as
// an autoincrement column does. Must be called with the write lock held.
func (db *DB) seenID(entity string, id int64) {
	if id > db.lastID[entity] {
		db.lastID[entity] = id
	}
}

func (db *DB) Donors() *DonorRepository {
	return newDonorRepository(db)
}

func (db *DB) Campaigns() *CampaignRepository {
	return newCampaignRepository(db)
}

func (db *DB) Donations() *DonationRepository {
	return newDonationRepository(db)
}

func (db *DB) Pledges() *PledgeRepository {
	return newPledgeRepository(db)
}

func (db *DB) Incentives() *IncentiveRepository {
	return newIncentiveRepository(db)
}

func (db *DB) BatchCommits() *BatchCommitRepository {
	return &BatchCommitRepository{db: db}
}
