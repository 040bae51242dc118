package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/deal-finder/pkg/constants"
	"go.uber.org/zap"
)

func float64Ptr(v float64) *float64 { return &v }

func intValPtr(v int) *int { return &v }

func sampleProperties() []Property {
	listed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return []Property{
		{
			Address: "100 Main St", City: "Springfield", State: "IL",
			Latitude: 39.80, Longitude: -89.64, ForSale: true, Status: "For Sale",
			DateListed: &listed, Price: 300000, Sqft: 1500, Beds: 3, Baths: 2,
			HomeType: "Single Family", YearBuilt: 2000, EstimatedTaxes: 3600,
		},
		{
			Address: "200 Oak Ave", City: "Springfield", State: "IL",
			Latitude: 39.81, Longitude: -89.65, ForSale: true, Status: "For Sale",
			DateListed: &older, Price: 150000, Sqft: 1000, Beds: 2, Baths: 1,
			HomeType: "Condo", YearBuilt: 1985,
		},
		{
			Address: "300 Elm Rd", City: "Peoria", State: "IL",
			Latitude: 40.69, Longitude: -89.59, ForSale: false, Status: "Sold",
			Price: 220000, Sqft: 1800, Beds: 4, Baths: 2.5,
			HomeType: "Single Family", YearBuilt: 1970,
		},
		{
			Address: "400 Lake Dr", City: "Madison", State: "WI",
			Latitude: 43.07, Longitude: -89.40, ForSale: true, Status: "For Sale",
			Price: 410000, Sqft: 2200, Beds: 4, Baths: 3, Units: 2,
			HomeType: "Multi Family", YearBuilt: 2015,
			EstimatedMonthlyRent: float64Ptr(3200),
		},
	}
}

var springfield = BoundingBox{North: 40, South: 39.5, East: -89.5, West: -90}

func TestBoundingBoxContains(t *testing.T) {
	box := BoundingBox{North: 10, South: 0, East: 10, West: 0}
	tests := []struct {
		name     string
		lat, lng float64
		expected bool
	}{
		{"inside", 5, 5, true},
		{"south west corner", 0, 0, true},
		{"north east corner", 10, 10, true},
		{"north of box", 10.01, 5, false},
		{"west of box", 5, -0.01, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Contains(tt.lat, tt.lng); got != tt.expected {
				t.Errorf("Contains(%v, %v) = %v, expected %v", tt.lat, tt.lng, got, tt.expected)
			}
		})
	}
}

func TestFiltersMatches(t *testing.T) {
	p := Property{Status: "For Sale", HomeType: "Condo", Price: 150000, Beds: 2}
	tests := []struct {
		name     string
		filters  Filters
		expected bool
	}{
		{"no filters", Filters{}, true},
		{"status All is ignored", Filters{Status: "All", HomeType: "All"}, true},
		{"status mismatch", Filters{Status: "Sold"}, false},
		{"home type match", Filters{HomeType: "Condo"}, true},
		{"home type mismatch", Filters{HomeType: "Single Family"}, false},
		{"min price inclusive", Filters{MinPrice: float64Ptr(150000)}, true},
		{"min price above", Filters{MinPrice: float64Ptr(150001)}, false},
		{"max price below", Filters{MaxPrice: float64Ptr(149999)}, false},
		{"min beds", Filters{MinBeds: intValPtr(3)}, false},
		{"all satisfied", Filters{Status: "For Sale", MinPrice: float64Ptr(100000), MaxPrice: float64Ptr(200000), MinBeds: intValPtr(2)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Matches(p); got != tt.expected {
				t.Errorf("Matches() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	p := Property{Price: 200000, Sqft: 1000}
	p.normalize()
	if p.Units != 1 {
		t.Errorf("Units = %d, expected 1", p.Units)
	}
	if p.Status != "For Sale" {
		t.Errorf("Status = %q, expected default", p.Status)
	}
	if p.PricePerSqft != 200 {
		t.Errorf("PricePerSqft = %v, expected 200", p.PricePerSqft)
	}
}

func TestToAnalysisProperty(t *testing.T) {
	p := sampleProperties()[3]
	got := p.ToAnalysisProperty()
	if got.Price != 410000 || got.Area != 2200 || got.Beds != 4 || got.Baths != 3 || got.Units != 2 {
		t.Errorf("unexpected conversion: %+v", got)
	}
	if got.KnownMonthlyRent == nil || *got.KnownMonthlyRent != 3200 {
		t.Errorf("KnownMonthlyRent not carried over: %v", got.KnownMonthlyRent)
	}
}

func TestBoundingBoxQuery(t *testing.T) {
	filters := Filters{Status: "For Sale", HomeType: "All", MinPrice: float64Ptr(100000), MinBeds: intValPtr(2)}

	t.Run("postgres", func(t *testing.T) {
		query, args := postgresDialect.boundingBoxQuery(springfield, filters)
		for _, fragment := range []string{
			"latitude BETWEEN $1 AND $2",
			"longitude BETWEEN $3 AND $4",
			"status = $5",
			"price >= $6",
			"bed >= $7",
			"ORDER BY price DESC",
			fmt.Sprintf("LIMIT %d", constants.BoundingBoxLimit),
		} {
			if !strings.Contains(query, fragment) {
				t.Errorf("query missing %q:\n%s", fragment, query)
			}
		}
		if strings.Contains(query, "home_type") {
			t.Errorf("home type All should not be filtered:\n%s", query)
		}
		if len(args) != 7 {
			t.Fatalf("expected 7 args, got %d", len(args))
		}
		if args[0] != springfield.South || args[1] != springfield.North || args[2] != springfield.West || args[3] != springfield.East {
			t.Errorf("unexpected box args: %v", args[:4])
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		query, args := sqliteDialect.boundingBoxQuery(springfield, filters)
		if strings.Contains(query, "$") {
			t.Errorf("sqlite query should use ? placeholders:\n%s", query)
		}
		if got := strings.Count(query, "?"); got != len(args) {
			t.Errorf("expected %d placeholders, got %d", len(args), got)
		}
	})
}

func TestListAllQueryOrdering(t *testing.T) {
	for _, d := range []dialect{postgresDialect, sqliteDialect} {
		t.Run(d.name, func(t *testing.T) {
			query := d.listAllQuery()
			// Postgres sorts NULLs first under DESC, sqlite last; pin both.
			if !strings.Contains(query, "ORDER BY date_listed DESC NULLS LAST, id DESC") {
				t.Errorf("undated listings should sort after dated ones:\n%s", query)
			}
			if !strings.Contains(query, fmt.Sprintf("LIMIT %d", constants.ListAllLimit)) {
				t.Errorf("query missing limit:\n%s", query)
			}
		})
	}
}

func TestInsertQueryPlaceholders(t *testing.T) {
	query := postgresDialect.insertQuery()
	expected := fmt.Sprintf("$%d", len(insertColumns))
	if !strings.Contains(query, expected) || strings.Contains(query, fmt.Sprintf("$%d", len(insertColumns)+1)) {
		t.Errorf("insert query should bind exactly %d values:\n%s", len(insertColumns), query)
	}
	if !strings.HasSuffix(query, "RETURNING id") {
		t.Errorf("insert query should return the id:\n%s", query)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "oracle"}, nil); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if _, err := Open(context.Background(), Config{Driver: DriverPostgres}, nil); err == nil {
		t.Fatal("expected error for missing dsn")
	}
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "deals.db")
	sqlStore, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: dsn}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	memStore, err := Open(context.Background(), Config{Driver: DriverMemory}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open memory store: %v", err)
	}

	stores := map[string]Store{"sqlite": sqlStore, "memory": memStore}
	t.Cleanup(func() {
		for name, s := range stores {
			if err := s.Close(); err != nil {
				t.Errorf("failed to close %s store: %v", name, err)
			}
		}
	})
	return stores
}

func seed(t *testing.T, s Store, properties []Property) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(properties))
	for _, p := range properties {
		// SQL date scanning differs by driver, so round trips use undated rows.
		p.DateListed = nil
		id, err := s.Insert(context.Background(), p)
		if err != nil {
			t.Fatalf("Insert(%s) failed: %v", p.Address, err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ids := seed(t, s, sampleProperties())

			got, err := s.Get(ctx, ids[3])
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.Address != "400 Lake Dr" || got.Units != 2 || got.Price != 410000 {
				t.Errorf("unexpected property: %+v", got)
			}
			if got.EstimatedMonthlyRent == nil || *got.EstimatedMonthlyRent != 3200 {
				t.Errorf("EstimatedMonthlyRent = %v, expected 3200", got.EstimatedMonthlyRent)
			}
			if got.LastSoldAmount != nil {
				t.Errorf("LastSoldAmount = %v, expected nil", *got.LastSoldAmount)
			}

			defaulted, err := s.Get(ctx, ids[0])
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if defaulted.Units != 1 {
				t.Errorf("Units = %d, expected default 1", defaulted.Units)
			}
			if defaulted.PricePerSqft != 200 {
				t.Errorf("PricePerSqft = %v, expected 200", defaulted.PricePerSqft)
			}

			if _, err := s.Get(ctx, 9999); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, expected ErrNotFound", err)
			}
			if err := s.Ping(ctx); err != nil {
				t.Errorf("Ping failed: %v", err)
			}
		})
	}
}

func TestStoreListInBoundingBox(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, s, sampleProperties())

			all, err := s.ListInBoundingBox(ctx, springfield, Filters{})
			if err != nil {
				t.Fatalf("ListInBoundingBox failed: %v", err)
			}
			if len(all) != 2 {
				t.Fatalf("expected 2 properties in Springfield, got %d", len(all))
			}
			if all[0].Price < all[1].Price {
				t.Errorf("expected descending price order, got %v then %v", all[0].Price, all[1].Price)
			}

			condos, err := s.ListInBoundingBox(ctx, springfield, Filters{HomeType: "Condo"})
			if err != nil {
				t.Fatalf("ListInBoundingBox failed: %v", err)
			}
			if len(condos) != 1 || condos[0].Address != "200 Oak Ave" {
				t.Errorf("unexpected condo results: %+v", condos)
			}

			none, err := s.ListInBoundingBox(ctx, springfield, Filters{MinBeds: intValPtr(5)})
			if err != nil {
				t.Fatalf("ListInBoundingBox failed: %v", err)
			}
			if len(none) != 0 {
				t.Errorf("expected no results, got %d", len(none))
			}
		})
	}
}

func TestStoreListAllAndStats(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := s.Stats(ctx)
			if err != nil {
				t.Fatalf("Stats failed: %v", err)
			}
			if empty.TotalProperties != 0 || empty.AvgPrice != 0 {
				t.Errorf("expected empty stats, got %+v", empty)
			}

			ids := seed(t, s, sampleProperties())

			forSale, err := s.ListAll(ctx)
			if err != nil {
				t.Fatalf("ListAll failed: %v", err)
			}
			if len(forSale) != 3 {
				t.Fatalf("expected 3 for-sale properties, got %d", len(forSale))
			}
			// Undated rows fall back to newest first.
			if forSale[0].ID != ids[3] {
				t.Errorf("expected newest id %d first, got %d", ids[3], forSale[0].ID)
			}

			stats, err := s.Stats(ctx)
			if err != nil {
				t.Fatalf("Stats failed: %v", err)
			}
			if stats.TotalProperties != 4 || stats.ForSaleCount != 3 {
				t.Errorf("unexpected counts: %+v", stats)
			}
			if stats.CitiesCount != 3 || stats.StatesCount != 2 {
				t.Errorf("unexpected distinct counts: %+v", stats)
			}
			if stats.AvgPrice != 270000 {
				t.Errorf("AvgPrice = %v, expected 270000", stats.AvgPrice)
			}
		})
	}
}

func TestMemoryStoreListAllOrdersByDateListed(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, p := range sampleProperties() {
		if _, err := s.Insert(ctx, p); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	order := make([]string, len(got))
	for i, p := range got {
		order[i] = p.Address
	}
	expected := []string{"100 Main St", "200 Oak Ave", "400 Lake Dr"}
	if strings.Join(order, "|") != strings.Join(expected, "|") {
		t.Errorf("ListAll order = %v, expected %v", order, expected)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, err := s.Insert(ctx, sampleProperties()[3])
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	first, _ := s.Get(ctx, id)
	*first.EstimatedMonthlyRent = 1
	first.Address = "changed"

	second, _ := s.Get(ctx, id)
	if second.Address != "400 Lake Dr" || *second.EstimatedMonthlyRent != 3200 {
		t.Errorf("stored property was mutated through a returned copy: %+v", second)
	}
}

func TestSQLStoreToleratesNullColumns(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open(DriverSQLite, "file:"+filepath.Join(t.TempDir(), "legacy.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	s := NewSQLStore(db, sqliteDialect, zap.NewNop())
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	// A table created outside of Migrate, without NOT NULL constraints.
	legacy := "CREATE TABLE properties (id INTEGER PRIMARY KEY AUTOINCREMENT, " + strings.Join(insertColumns, ", ") + ")"
	if _, err := db.ExecContext(ctx, legacy); err != nil {
		t.Fatalf("failed to create legacy table: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO properties (latitude, longitude, price) VALUES (39.80, -89.64, 250000)"); err != nil {
		t.Fatalf("failed to insert sparse row: %v", err)
	}

	got, err := s.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed on NULL columns: %v", err)
	}
	if got.Price != 250000 || got.Address != "" || got.HomeDesign != "" || got.LotSize != 0 || got.HOA != 0 {
		t.Errorf("unexpected defaults: %+v", got)
	}
	if !got.ForSale || got.Units != 1 {
		t.Errorf("ForSale = %v, Units = %d, expected schema defaults true and 1", got.ForSale, got.Units)
	}
	if got.DateListed != nil || got.EstimatedMonthlyRent != nil {
		t.Errorf("nullable fields should stay nil: %+v", got)
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed on NULL columns: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected the sparse row to be listed, got %d", len(all))
	}

	boxed, err := s.ListInBoundingBox(ctx, springfield, Filters{})
	if err != nil {
		t.Fatalf("ListInBoundingBox failed on NULL columns: %v", err)
	}
	if len(boxed) != 1 {
		t.Errorf("expected 1 property in Springfield, got %d", len(boxed))
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed on NULL columns: %v", err)
	}
	if stats.TotalProperties != 1 || stats.ForSaleCount != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
}
