package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"donor-batch-ledger/internal/config"
)

// ErrUnavailable reports that the store cannot be reached: it was closed or
// its connection went away. Callers abort rather than retry row by row.
var ErrUnavailable = errors.New("store unavailable")

const sqliteParams = "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"

// Store is the single process-wide handle on the database. Reads run
// concurrently; writes are serialized and each runs in one transaction.
type Store struct {
	db     *gorm.DB
	log    zerolog.Logger
	mu     sync.RWMutex
	closed bool
}

// Open connects using cfg, tunes the connection pool and applies pending
// migrations.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Store, error) {
	var dial gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dial = postgres.Open(cfg.DBDSN)
	case config.DriverSQLite, "":
		dial = sqlite.Open(SQLiteDSN(cfg.DBDSN))
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}

	gl := log.With().Str("component", "gorm").Logger()
	db, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(&gl, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s := &Store{db: db, log: log.With().Str("component", "store").Logger()}
	if err := s.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	s.log.Info().Str("driver", cfg.DBDriver).Msg("store ready")
	return s, nil
}

// SQLiteDSN appends the connection parameters the store relies on (foreign
// keys, WAL, busy timeout) unless the DSN already carries parameters.
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?" + sqliteParams
}

// Dialect returns the gorm dialector name, "sqlite" or "postgres".
func (s *Store) Dialect() string {
	return s.db.Dialector.Name()
}

// Read runs fn against the store under the shared lock.
func (s *Store) Read(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrUnavailable
	}
	return classify(fn(s.db.WithContext(ctx)))
}

// Write runs fn inside one transaction under the exclusive lock. The
// transaction commits when fn returns nil.
func (s *Store) Write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrUnavailable
	}
	return classify(s.db.WithContext(ctx).Transaction(fn))
}

// Close releases the pool. Later calls fail with ErrUnavailable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func classify(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
