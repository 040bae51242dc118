package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a property does not exist.
var ErrNotFound = errors.New("property not found")

// Store is the property repository used by the API.
type Store interface {
	// ListInBoundingBox returns for-sale and off-market properties inside box
	// that match filters, most expensive first.
	ListInBoundingBox(ctx context.Context, box BoundingBox, filters Filters) ([]Property, error)
	// ListAll returns for-sale properties, most recently listed first.
	ListAll(ctx context.Context) ([]Property, error)
	// Get returns a single property or ErrNotFound.
	Get(ctx context.Context, id int64) (*Property, error)
	// Insert stores a new property and returns its ID.
	Insert(ctx context.Context, p Property) (int64, error)
	// Stats aggregates over every stored property.
	Stats(ctx context.Context) (Stats, error)
	// Ping checks the backing storage is reachable.
	Ping(ctx context.Context) error
	// Close releases the backing storage.
	Close() error
}

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config selects and tunes the backing database.
type Config struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	// Migrate creates the properties table when it does not exist.
	Migrate bool `yaml:"migrate"`
}

// Open creates the store described by cfg. The returned store owns its
// database handle; callers must Close it.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", DriverMemory:
		logger.Info("using in-memory property store",
			zap.String("op", "store.Open"),
		)
		return NewMemoryStore(), nil
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("database driver %s requires a dsn", driver)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer; a shared connection also keeps
		// in-memory databases alive for the life of the store.
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	s := NewSQLStore(db, dialectFor(driver), logger)
	if cfg.Migrate || driver == DriverSQLite {
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logger.Info("connected to property database",
		zap.String("op", "store.Open"),
		zap.String("driver", driver),
	)
	return s, nil
}
