package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SQLStore is a Store backed by a database/sql handle.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

// NewSQLStore wraps an open database handle. The store takes ownership of db.
func NewSQLStore(db *sql.DB, d dialect, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{db: db, dialect: d, logger: logger}
}

// Migrate creates the properties table if needed.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema()); err != nil {
		return fmt.Errorf("failed to create properties table: %w", err)
	}
	return nil
}

// ListInBoundingBox implements Store.
func (s *SQLStore) ListInBoundingBox(ctx context.Context, box BoundingBox, filters Filters) ([]Property, error) {
	query, args := s.dialect.boundingBoxQuery(box, filters)
	properties, err := s.queryProperties(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties in bounding box: %w", err)
	}
	s.logger.Debug("bounding box query",
		zap.String("op", "store.ListInBoundingBox"),
		zap.Int("args", len(args)),
		zap.Int("rows", len(properties)),
	)
	return properties, nil
}

// ListAll implements Store.
func (s *SQLStore) ListAll(ctx context.Context) ([]Property, error) {
	properties, err := s.queryProperties(ctx, s.dialect.listAllQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return properties, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id int64) (*Property, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.getQuery(), id)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch property %d: %w", id, err)
	}
	return p, nil
}

// Insert implements Store.
func (s *SQLStore) Insert(ctx context.Context, p Property) (int64, error) {
	p.normalize()

	args := []interface{}{
		p.Address, p.Street, p.City, p.State, p.Zip,
		p.Latitude, p.Longitude,
		p.ForSale, nullTime(p.DateListed), p.DaysOnMarket, p.Status,
		p.Price, p.PricePerSqft,
		p.Sqft, p.Beds, p.Baths, p.LotSize, p.HOA,
		p.HomeType, p.HomeDesign, p.EstimatedTaxes, p.YearBuilt,
		p.Units, nullTime(p.LastSoldDate), nullFloat(p.LastSoldAmount),
		nullFloat(p.EstimatedMonthlyRent),
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, s.dialect.insertQuery(), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert property: %w", err)
	}

	s.logger.Info("property created",
		zap.String("op", "store.Insert"),
		zap.Int64("id", id),
		zap.String("address", p.Address),
	)
	return id, nil
}

// Stats implements Store.
func (s *SQLStore) Stats(ctx context.Context) (Stats, error) {
	var (
		stats         Stats
		avgPrice      sql.NullFloat64
		avgPricePerSq sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, s.dialect.statsQuery()).Scan(
		&stats.TotalProperties,
		&stats.ForSaleCount,
		&avgPrice,
		&avgPricePerSq,
		&stats.CitiesCount,
		&stats.StatesCount,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to aggregate property stats: %w", err)
	}
	stats.AvgPrice = avgPrice.Float64
	stats.AvgPricePerSqft = avgPricePerSq.Float64
	return stats, nil
}

// Ping implements Store.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) queryProperties(ctx context.Context, query string, args ...interface{}) ([]Property, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows",
				zap.String("op", "store.queryProperties"),
				zap.Error(closeErr),
			)
		}
	}()

	properties := make([]Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return properties, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row scanner) (*Property, error) {
	var (
		p              Property
		dateListed     sql.NullTime
		lastSoldDate   sql.NullTime
		lastSoldAmount sql.NullFloat64
		monthlyRent    sql.NullFloat64
	)
	err := row.Scan(
		&p.ID, &p.Address, &p.Street, &p.City, &p.State, &p.Zip,
		&p.Latitude, &p.Longitude,
		&p.ForSale, &dateListed, &p.DaysOnMarket, &p.Status,
		&p.Price, &p.PricePerSqft,
		&p.Sqft, &p.Beds, &p.Baths, &p.LotSize, &p.HOA,
		&p.HomeType, &p.HomeDesign, &p.EstimatedTaxes, &p.YearBuilt,
		&p.Units, &lastSoldDate, &lastSoldAmount,
		&monthlyRent,
	)
	if err != nil {
		return nil, err
	}
	p.DateListed = timePtr(dateListed)
	p.LastSoldDate = timePtr(lastSoldDate)
	p.LastSoldAmount = floatPtr(lastSoldAmount)
	p.EstimatedMonthlyRent = floatPtr(monthlyRent)
	return &p, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
