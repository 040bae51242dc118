// Package constants provides shared constants for the deal-finder application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12
)

// Default investor assumptions.
const (
	DefaultDownPaymentPercent = 0.25
	DefaultInterestRate       = 0.07
	DefaultLoanTermYears      = 30
	DefaultClosingCostPercent = 0.03
	DefaultRehabBudget        = 0.0
	DefaultVacancyRate        = 0.08
	DefaultMaintenancePercent = 0.01
	DefaultCapexPercent       = 0.01
	DefaultManagementPercent  = 0.10
	DefaultInsuranceRate      = 0.005
)

// Transport rounding precision (decimal places).
const (
	// RatioPlaces applies to cap rate, cash-on-cash, break-even occupancy and the 1% rule ratio
	RatioPlaces = 4

	// MoneyPlaces applies to every currency amount
	MoneyPlaces = 2

	// CoveragePlaces applies to DSCR
	CoveragePlaces = 2
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of CLI configuration keys
	EnvPrefix = "DEALFINDER"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8000"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultShutdownTimeoutSeconds bounds graceful shutdown
	DefaultShutdownTimeoutSeconds = 10

	// DefaultDatabaseDriver selects the in-memory store when no database is configured
	DefaultDatabaseDriver = "memory"
)

// Store query limits
const (
	// BoundingBoxLimit caps the rows returned by a bounding box query
	BoundingBoxLimit = 500

	// ListAllLimit caps the rows returned when no bounding box is given
	ListAllLimit = 1000
)

// Heatmap defaults
const (
	// DefaultHeatmapResolution is the number of grid cells per axis
	DefaultHeatmapResolution = 20

	// MaxHeatmapResolution bounds the grid size requested by clients
	MaxHeatmapResolution = 200
)
