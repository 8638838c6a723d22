package config

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// BindFlags registers the configuration flags on fs, writing straight into
// cfg. Flag names are the keys Load uses to tell explicit flags apart.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "database driver (sqlite or postgres)")
	fs.StringVar(&cfg.DBDSN, "db-dsn", cfg.DBDSN, "database file path or postgres DSN")
	fs.IntVar(&cfg.DBMaxOpenConns, "db-max-open", cfg.DBMaxOpenConns, "maximum open database connections")
	fs.IntVar(&cfg.DBMaxIdleConns, "db-max-idle", cfg.DBMaxIdleConns, "maximum idle database connections")
	fs.DurationVar(&cfg.DBConnMaxLifetime, "db-conn-lifetime", cfg.DBConnMaxLifetime, "maximum lifetime of a database connection")
	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringSliceVar(&cfg.AllowedOrigins, "allowed-origins", cfg.AllowedOrigins, "CORS allowed origins")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.LogPretty, "log-pretty", cfg.LogPretty, "human-readable console logs")
	fs.Var(decimalValue{&cfg.DonationAmount}, "donation-amount", "default donation amount of a new batch")
	fs.StringVar(&cfg.DonationType, "donation-type", cfg.DonationType, "default donation type (CC, CHECK, CASH, OTHER)")
	fs.StringVar(&cfg.PaymentStatus, "payment-status", cfg.PaymentStatus, "default payment status")
	fs.Var(decimalValue{&cfg.PledgeAmount}, "pledge-amount", "default pledge amount of a new batch")
	fs.StringVar(&cfg.PledgeStatus, "pledge-status", cfg.PledgeStatus, "default pledge status")
	fs.DurationVar(&cfg.PledgeHorizon, "pledge-horizon", cfg.PledgeHorizon, "default time until a pledge is expected")
}

// ChangedFlags lists the flags set explicitly on fs.
func ChangedFlags(fs *pflag.FlagSet) map[string]bool {
	changed := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	return changed
}

type decimalValue struct {
	d *decimal.Decimal
}

func (v decimalValue) String() string {
	if v.d == nil {
		return "0"
	}
	return v.d.String()
}

func (v decimalValue) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*v.d = d
	return nil
}

func (v decimalValue) Type() string { return "decimal" }
