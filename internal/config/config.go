package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"donor-batch-ledger/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds process configuration for the server and the CLI.
type Config struct {
	DBDriver          string
	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	HTTPAddr       string
	AllowedOrigins []string

	LogLevel  string
	LogPretty bool

	// Batch entry defaults for new sessions.
	DonationAmount decimal.Decimal
	DonationType   string
	PaymentStatus  string
	PledgeAmount   decimal.Decimal
	PledgeStatus   string
	PledgeHorizon  time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		DBDriver:          DriverSQLite,
		DBDSN:             "donations.db",
		DBMaxOpenConns:    8,
		DBMaxIdleConns:    4,
		DBConnMaxLifetime: 30 * time.Minute,
		HTTPAddr:          ":8080",
		AllowedOrigins:    []string{"http://localhost:3000"},
		LogLevel:          "info",
		LogPretty:         true,
		DonationAmount:    decimal.NewFromInt(10),
		DonationType:      string(models.DonationCheck),
		PaymentStatus:     string(models.PaymentCompleted),
		PledgeAmount:      decimal.NewFromInt(50),
		PledgeStatus:      string(models.PledgePledged),
		PledgeHorizon:     30 * 24 * time.Hour,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	case "sqlite3":
		c.DBDriver = DriverSQLite
	default:
		return fmt.Errorf("unsupported db driver %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("db dsn is required")
	}
	if c.DBMaxOpenConns <= 0 {
		return fmt.Errorf("db max open conns must be positive")
	}
	if c.DBMaxIdleConns > c.DBMaxOpenConns {
		c.DBMaxIdleConns = c.DBMaxOpenConns
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.DonationAmount.IsNegative() || c.PledgeAmount.IsNegative() {
		return fmt.Errorf("default amounts cannot be negative")
	}
	if !models.DonationType(c.DonationType).Valid() {
		return fmt.Errorf("unknown donation type %q", c.DonationType)
	}
	if !models.PaymentStatus(c.PaymentStatus).Valid() {
		return fmt.Errorf("unknown payment status %q", c.PaymentStatus)
	}
	if !models.PledgeStatus(c.PledgeStatus).Valid() {
		return fmt.Errorf("unknown pledge status %q", c.PledgeStatus)
	}
	if c.PledgeHorizon < 0 {
		return fmt.Errorf("pledge horizon cannot be negative")
	}
	return nil
}

// Redacted returns a copy that is safe to log.
func (c Config) Redacted() Config {
	if c.DBDriver == DriverPostgres && c.DBDSN != "" {
		c.DBDSN = "*****"
	}
	return c
}

// configSetter applies values only when the matching flag was not set
// explicitly on the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	if changed == nil {
		changed = map[string]bool{}
	}
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setList(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setDecimal(flag, value string, dst *decimal.Decimal) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
