package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with TOML friendly types.
type FileConfig struct {
	Database struct {
		Driver          string `toml:"driver"`
		DSN             string `toml:"dsn"`
		MaxOpenConns    int    `toml:"max_open_conns"`
		MaxIdleConns    int    `toml:"max_idle_conns"`
		ConnMaxLifetime string `toml:"conn_max_lifetime"`
	} `toml:"database"`
	HTTP struct {
		Addr           string   `toml:"addr"`
		AllowedOrigins []string `toml:"allowed_origins"`
	} `toml:"http"`
	Log struct {
		Level  string `toml:"level"`
		Pretty *bool  `toml:"pretty"`
	} `toml:"log"`
	Defaults struct {
		DonationAmount string `toml:"donation_amount"`
		DonationType   string `toml:"donation_type"`
		PaymentStatus  string `toml:"payment_status"`
		PledgeAmount   string `toml:"pledge_amount"`
		PledgeStatus   string `toml:"pledge_status"`
		PledgeHorizon  string `toml:"pledge_horizon"`
	} `toml:"defaults"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.batchledger/config.toml when the home
// directory is known.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".batchledger", "config.toml")
	}
	return ""
}

// ApplyFileConfig copies file values into cfg, skipping flags in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("db-driver", fc.Database.Driver, &cfg.DBDriver)
	s.setString("db-dsn", fc.Database.DSN, &cfg.DBDSN)
	s.setInt("db-max-open", fc.Database.MaxOpenConns, &cfg.DBMaxOpenConns)
	s.setInt("db-max-idle", fc.Database.MaxIdleConns, &cfg.DBMaxIdleConns)
	if err := s.setDuration("db-conn-lifetime", fc.Database.ConnMaxLifetime, &cfg.DBConnMaxLifetime); err != nil {
		return err
	}

	s.setString("addr", fc.HTTP.Addr, &cfg.HTTPAddr)
	s.setList("allowed-origins", fc.HTTP.AllowedOrigins, &cfg.AllowedOrigins)

	s.setString("log-level", fc.Log.Level, &cfg.LogLevel)
	s.setBool("log-pretty", fc.Log.Pretty, &cfg.LogPretty)

	if err := s.setDecimal("donation-amount", fc.Defaults.DonationAmount, &cfg.DonationAmount); err != nil {
		return err
	}
	s.setString("donation-type", fc.Defaults.DonationType, &cfg.DonationType)
	s.setString("payment-status", fc.Defaults.PaymentStatus, &cfg.PaymentStatus)
	if err := s.setDecimal("pledge-amount", fc.Defaults.PledgeAmount, &cfg.PledgeAmount); err != nil {
		return err
	}
	s.setString("pledge-status", fc.Defaults.PledgeStatus, &cfg.PledgeStatus)
	if err := s.setDuration("pledge-horizon", fc.Defaults.PledgeHorizon, &cfg.PledgeHorizon); err != nil {
		return err
	}
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
