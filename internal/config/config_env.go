package config

import (
	"os"
	"strings"
)

// ApplyEnvConfig applies BATCHLEDGER_* environment variables, skipping flags
// in changed. DATABASE_URL is honoured as a fallback DSN.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("db-driver", os.Getenv("BATCHLEDGER_DB_DRIVER"), &cfg.DBDriver)
	dsn := os.Getenv("BATCHLEDGER_DB_DSN")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	s.setString("db-dsn", dsn, &cfg.DBDSN)
	if err := s.setIntFromString("db-max-open", os.Getenv("BATCHLEDGER_DB_MAX_OPEN_CONNS"), &cfg.DBMaxOpenConns); err != nil {
		return err
	}
	if err := s.setIntFromString("db-max-idle", os.Getenv("BATCHLEDGER_DB_MAX_IDLE_CONNS"), &cfg.DBMaxIdleConns); err != nil {
		return err
	}
	if err := s.setDuration("db-conn-lifetime", os.Getenv("BATCHLEDGER_DB_CONN_MAX_LIFETIME"), &cfg.DBConnMaxLifetime); err != nil {
		return err
	}

	s.setString("addr", os.Getenv("BATCHLEDGER_HTTP_ADDR"), &cfg.HTTPAddr)
	if v := os.Getenv("BATCHLEDGER_ALLOWED_ORIGINS"); v != "" {
		s.setList("allowed-origins", splitList(v), &cfg.AllowedOrigins)
	}

	s.setString("log-level", os.Getenv("BATCHLEDGER_LOG_LEVEL"), &cfg.LogLevel)
	s.setBoolFromString("log-pretty", os.Getenv("BATCHLEDGER_LOG_PRETTY"), &cfg.LogPretty)

	if err := s.setDecimal("donation-amount", os.Getenv("BATCHLEDGER_DONATION_AMOUNT"), &cfg.DonationAmount); err != nil {
		return err
	}
	s.setString("donation-type", os.Getenv("BATCHLEDGER_DONATION_TYPE"), &cfg.DonationType)
	s.setString("payment-status", os.Getenv("BATCHLEDGER_PAYMENT_STATUS"), &cfg.PaymentStatus)
	if err := s.setDecimal("pledge-amount", os.Getenv("BATCHLEDGER_PLEDGE_AMOUNT"), &cfg.PledgeAmount); err != nil {
		return err
	}
	s.setString("pledge-status", os.Getenv("BATCHLEDGER_PLEDGE_STATUS"), &cfg.PledgeStatus)
	if err := s.setDuration("pledge-horizon", os.Getenv("BATCHLEDGER_PLEDGE_HORIZON"), &cfg.PledgeHorizon); err != nil {
		return err
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
