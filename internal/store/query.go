package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/deal-finder/pkg/constants"
)

// dialect captures the SQL differences between the supported databases.
type dialect struct {
	name       string
	positional bool // $1, $2 placeholders instead of ?
	primaryKey string
}

var (
	postgresDialect = dialect{name: DriverPostgres, positional: true, primaryKey: "SERIAL PRIMARY KEY"}
	sqliteDialect   = dialect{name: DriverSQLite, positional: false, primaryKey: "INTEGER PRIMARY KEY AUTOINCREMENT"}
)

func dialectFor(driver string) dialect {
	if driver == DriverSQLite {
		return sqliteDialect
	}
	return postgresDialect
}

// bind returns the placeholder for the n-th (1-based) parameter.
func (d dialect) bind(n int) string {
	if d.positional {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// binds returns a comma separated list of placeholders for parameters
// first through first+count-1.
func (d dialect) binds(first, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = d.bind(first + i)
	}
	return strings.Join(parts, ", ")
}

// propertyColumns selects every property column with the defaults of
// schema() applied, so rows from tables created without the NOT NULL
// constraints still scan into non-pointer fields.
const propertyColumns = `id,
	COALESCE(address, '') AS address,
	COALESCE(street, '') AS street,
	COALESCE(city, '') AS city,
	COALESCE(state, '') AS state,
	COALESCE(zip, '') AS zip,
	COALESCE(latitude, 0) AS latitude,
	COALESCE(longitude, 0) AS longitude,
	COALESCE(for_sale, TRUE) AS for_sale,
	date_listed,
	COALESCE(days_on_market, 0) AS days_on_market,
	COALESCE(status, '') AS status,
	COALESCE(price, 0) AS price,
	COALESCE(price_per_square_foot, 0) AS price_per_square_foot,
	COALESCE(square_foot, 0) AS square_foot,
	COALESCE(bed, 0) AS bed,
	COALESCE(bath, 0) AS bath,
	COALESCE(lot_size, 0) AS lot_size,
	COALESCE(hoa, 0) AS hoa,
	COALESCE(home_type, '') AS home_type,
	COALESCE(home_design, '') AS home_design,
	COALESCE(estimated_taxes, 0) AS estimated_taxes,
	COALESCE(year_built, 0) AS year_built,
	COALESCE(number_of_units, 1) AS number_of_units,
	last_sold_date, last_sold_amount,
	estimated_monthly_rent`

var insertColumns = []string{
	"address", "street", "city", "state", "zip",
	"latitude", "longitude",
	"for_sale", "date_listed", "days_on_market", "status",
	"price", "price_per_square_foot",
	"square_foot", "bed", "bath", "lot_size", "hoa",
	"home_type", "home_design", "estimated_taxes", "year_built",
	"number_of_units", "last_sold_date", "last_sold_amount",
	"estimated_monthly_rent",
}

func (d dialect) schema() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS properties (
	id %s,
	address TEXT NOT NULL DEFAULT '',
	street TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	zip TEXT NOT NULL DEFAULT '',
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	for_sale BOOLEAN NOT NULL DEFAULT TRUE,
	date_listed DATE,
	days_on_market INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'For Sale',
	price DOUBLE PRECISION NOT NULL,
	price_per_square_foot DOUBLE PRECISION NOT NULL DEFAULT 0,
	square_foot INTEGER NOT NULL DEFAULT 0,
	bed INTEGER NOT NULL DEFAULT 0,
	bath DOUBLE PRECISION NOT NULL DEFAULT 0,
	lot_size INTEGER NOT NULL DEFAULT 0,
	hoa DOUBLE PRECISION NOT NULL DEFAULT 0,
	home_type TEXT NOT NULL DEFAULT '',
	home_design TEXT NOT NULL DEFAULT '',
	estimated_taxes DOUBLE PRECISION NOT NULL DEFAULT 0,
	year_built INTEGER NOT NULL DEFAULT 0,
	number_of_units INTEGER NOT NULL DEFAULT 1,
	last_sold_date DATE,
	last_sold_amount DOUBLE PRECISION,
	estimated_monthly_rent DOUBLE PRECISION
)`, d.primaryKey)
}

func (d dialect) boundingBoxQuery(box BoundingBox, filters Filters) (string, []interface{}) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(propertyColumns)
	b.WriteString("\nFROM properties\nWHERE latitude BETWEEN ")
	b.WriteString(d.bind(1))
	b.WriteString(" AND ")
	b.WriteString(d.bind(2))
	b.WriteString("\n  AND longitude BETWEEN ")
	b.WriteString(d.bind(3))
	b.WriteString(" AND ")
	b.WriteString(d.bind(4))

	args := []interface{}{box.South, box.North, box.West, box.East}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		fmt.Fprintf(&b, "\n  AND %s %s", clause, d.bind(len(args)))
	}

	if activeFilter(filters.Status) {
		add("status =", filters.Status)
	}
	if activeFilter(filters.HomeType) {
		add("home_type =", filters.HomeType)
	}
	if filters.MinPrice != nil {
		add("price >=", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		add("price <=", *filters.MaxPrice)
	}
	if filters.MinBeds != nil {
		add("bed >=", *filters.MinBeds)
	}

	fmt.Fprintf(&b, "\nORDER BY price DESC, id ASC\nLIMIT %d", constants.BoundingBoxLimit)
	return b.String(), args
}

func (d dialect) listAllQuery() string {
	return fmt.Sprintf(`SELECT %s
FROM properties
WHERE COALESCE(for_sale, TRUE) = TRUE
ORDER BY date_listed DESC NULLS LAST, id DESC
LIMIT %d`, propertyColumns, constants.ListAllLimit)
}

func (d dialect) getQuery() string {
	return fmt.Sprintf("SELECT %s\nFROM properties\nWHERE id = %s", propertyColumns, d.bind(1))
}

func (d dialect) insertQuery() string {
	return fmt.Sprintf("INSERT INTO properties (%s)\nVALUES (%s)\nRETURNING id",
		strings.Join(insertColumns, ", "), d.binds(1, len(insertColumns)))
}

func (d dialect) statsQuery() string {
	return `SELECT
	COUNT(*),
	COALESCE(SUM(CASE WHEN COALESCE(for_sale, TRUE) THEN 1 ELSE 0 END), 0),
	AVG(price),
	AVG(price_per_square_foot),
	COUNT(DISTINCT city),
	COUNT(DISTINCT state)
FROM properties`
}
