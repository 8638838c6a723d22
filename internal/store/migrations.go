package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"donor-batch-ledger/internal/models"
)

// Migration is one named schema step. Up must be safe to run against a
// schema that already has the step's objects.
type Migration struct {
	Name string
	Up   func(tx *gorm.DB) error
}

type schemaMigration struct {
	Name      string    `gorm:"primaryKey;size:128"`
	AppliedAt time.Time `gorm:"not null"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

// Migrations returns the schema history in application order.
func Migrations() []Migration {
	return []Migration{
		{Name: "create_donation_system", Up: createDonationSystem},
		{Name: "create_pledge", Up: createPledge},
		{Name: "add_receipt_status", Up: addReceiptStatus},
		{Name: "add_pledge_current_balance", Up: addPledgeCurrentBalance},
		{Name: "add_timestamp_triggers", Up: addTimestampTriggers},
		{Name: "create_batch_commit", Up: createBatchCommit},
		{Name: "create_donation_incentive", Up: createDonationIncentive},
	}
}

// Migrate applies every migration not yet recorded in schema_migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return s.Apply(ctx, Migrations())
}

// Apply runs the given steps in order, each in its own transaction together
// with its schema_migrations record. Recorded steps are skipped.
func (s *Store) Apply(ctx context.Context, steps []Migration) error {
	err := s.Write(ctx, func(tx *gorm.DB) error {
		return tx.AutoMigrate(&schemaMigration{})
	})
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := s.AppliedMigrations(ctx)
	if err != nil {
		return err
	}
	done := make(map[string]bool, len(applied))
	for _, name := range applied {
		done[name] = true
	}

	for _, m := range steps {
		if done[m.Name] {
			continue
		}
		err := s.Write(ctx, func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{Name: m.Name, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		s.log.Info().Str("migration", m.Name).Msg("applied migration")
	}
	return nil
}

// AppliedMigrations lists recorded migration names in the order applied.
func (s *Store) AppliedMigrations(ctx context.Context) ([]string, error) {
	var names []string
	err := s.Read(ctx, func(tx *gorm.DB) error {
		return tx.Model(&schemaMigration{}).Order("applied_at, name").Pluck("name", &names).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	return names, nil
}

// Table shapes as they were when first created. Later columns arrive in
// their own steps.

type donationV1 struct {
	ID                    int64           `gorm:"primaryKey;autoIncrement"`
	UUID                  string          `gorm:"column:uuid;type:varchar(36);uniqueIndex:idx_donation_uuid;not null"`
	DonorID               *int64          `gorm:"index:idx_donation_donor"`
	CampaignID            *int64          `gorm:"index:idx_donation_campaign"`
	Amount                decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	DonationType          string          `gorm:"type:varchar(16);not null"`
	PaymentStatus         string          `gorm:"type:varchar(16);index:idx_donation_status;not null;default:PENDING"`
	TransactionNumber     *string
	ReceiptNumber         *string
	PaymentProcessorInfo  *string
	RequestEmailReceipt   bool `gorm:"not null;default:false"`
	RequestPrintedReceipt bool `gorm:"not null;default:false"`
	Notes                 *string
	IsAnonymous           bool      `gorm:"not null;default:false"`
	DonationDate          time.Time `gorm:"index:idx_donation_date;not null"`
	CreatedAt             time.Time `gorm:"not null"`
	UpdatedAt             time.Time `gorm:"not null"`

	Donor    *models.Donor    `gorm:"foreignKey:DonorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Campaign *models.Campaign `gorm:"foreignKey:CampaignID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (donationV1) TableName() string { return "donation" }

type pledgeV1 struct {
	ID                      int64           `gorm:"primaryKey;autoIncrement"`
	UUID                    string          `gorm:"column:uuid;type:varchar(36);uniqueIndex:idx_pledge_uuid;not null"`
	DonorID                 int64           `gorm:"index:idx_pledge_donor;not null"`
	CampaignID              *int64          `gorm:"index:idx_pledge_campaign"`
	PledgeAmount            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Status                  string          `gorm:"type:varchar(24);index:idx_pledge_status;not null;default:PLEDGED"`
	ExpectedFulfillmentDate time.Time       `gorm:"index:idx_pledge_expected;not null"`
	PrayerNote              *string
	Notes                   *string
	CreatedAt               time.Time `gorm:"not null"`
	UpdatedAt               time.Time `gorm:"not null"`

	Donor    *models.Donor    `gorm:"foreignKey:DonorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Campaign *models.Campaign `gorm:"foreignKey:CampaignID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (pledgeV1) TableName() string { return "pledge" }

func createIfMissing(tx *gorm.DB, tables ...interface{}) error {
	m := tx.Migrator()
	for _, t := range tables {
		if m.HasTable(t) {
			continue
		}
		if err := m.CreateTable(t); err != nil {
			return err
		}
	}
	return nil
}

func createDonationSystem(tx *gorm.DB) error {
	return createIfMissing(tx, &models.Donor{}, &models.Campaign{}, &donationV1{})
}

func createPledge(tx *gorm.DB) error {
	return createIfMissing(tx, &pledgeV1{})
}

func addReceiptStatus(tx *gorm.DB) error {
	m := tx.Migrator()
	if !m.HasColumn(&models.Donation{}, "ReceiptStatus") {
		if err := m.AddColumn(&models.Donation{}, "ReceiptStatus"); err != nil {
			return err
		}
		// Donations recorded before receipts were tracked keep the status
		// their request flags imply.
		err := tx.Model(&models.Donation{}).
			Where("request_email_receipt = ? OR request_printed_receipt = ?", true, true).
			Update("receipt_status", models.ReceiptRequested).Error
		if err != nil {
			return err
		}
	}
	if !m.HasIndex(&models.Donation{}, "idx_donation_receipt") {
		return m.CreateIndex(&models.Donation{}, "idx_donation_receipt")
	}
	return nil
}

func addPledgeCurrentBalance(tx *gorm.DB) error {
	m := tx.Migrator()
	if m.HasColumn(&models.Pledge{}, "CurrentBalance") {
		return nil
	}
	if err := m.AddColumn(&models.Pledge{}, "CurrentBalance"); err != nil {
		return err
	}
	return tx.Exec("UPDATE pledge SET current_balance = pledge_amount").Error
}

var timestampTables = []string{"donor", "campaign", "donation", "pledge"}

func addTimestampTriggers(tx *gorm.DB) error {
	return timestampTriggers(tx, timestampTables...)
}

func timestampTriggers(tx *gorm.DB, tables ...string) error {
	switch tx.Dialector.Name() {
	case "sqlite":
		for _, t := range tables {
			stmt := fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS trg_%[1]s_updated_at
AFTER UPDATE ON %[1]s FOR EACH ROW WHEN NEW.updated_at = OLD.updated_at
BEGIN
	UPDATE %[1]s SET updated_at = strftime('%%Y-%%m-%%d %%H:%%M:%%f', 'now') WHERE id = NEW.id;
END`, t)
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
	case "postgres":
		fn := `CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN
	IF NEW.updated_at = OLD.updated_at THEN
		NEW.updated_at = now();
	END IF;
	RETURN NEW;
END;
$$ LANGUAGE plpgsql`
		if err := tx.Exec(fn).Error; err != nil {
			return err
		}
		for _, t := range tables {
			if err := tx.Exec(fmt.Sprintf("DROP TRIGGER IF EXISTS trg_%[1]s_updated_at ON %[1]s", t)).Error; err != nil {
				return err
			}
			stmt := fmt.Sprintf("CREATE TRIGGER trg_%[1]s_updated_at BEFORE UPDATE ON %[1]s FOR EACH ROW EXECUTE FUNCTION set_updated_at()", t)
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("no timestamp triggers for dialect %s", tx.Dialector.Name())
	}
	return nil
}

func createBatchCommit(tx *gorm.DB) error {
	return createIfMissing(tx, &models.BatchCommit{})
}

// createDonationIncentive adds the incentive table and the nullable
// donation.donation_incentive_id reference to it.
func createDonationIncentive(tx *gorm.DB) error {
	if err := createIfMissing(tx, &models.DonationIncentive{}); err != nil {
		return err
	}
	m := tx.Migrator()
	if !m.HasColumn(&models.Donation{}, "DonationIncentiveID") {
		colType := "bigint"
		if tx.Dialector.Name() == "sqlite" {
			colType = "integer"
		}
		stmt := fmt.Sprintf("ALTER TABLE donation ADD COLUMN donation_incentive_id %s "+
			"REFERENCES donation_incentive(id) ON UPDATE CASCADE ON DELETE RESTRICT", colType)
		if err := tx.Exec(stmt).Error; err != nil {
			return err
		}
	}
	if !m.HasIndex(&models.Donation{}, "idx_donation_incentive") {
		if err := m.CreateIndex(&models.Donation{}, "idx_donation_incentive"); err != nil {
			return err
		}
	}
	return timestampTriggers(tx, "donation_incentive")
}
