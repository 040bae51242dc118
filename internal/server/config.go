package server

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/deal-finder/internal/analysis"
	"github.com/iwvelando/deal-finder/internal/config"
	"github.com/iwvelando/deal-finder/internal/store"
	"github.com/iwvelando/deal-finder/pkg/constants"
	"github.com/iwvelando/deal-finder/pkg/validation"
	"gopkg.in/yaml.v3"
)

// DatabaseURLEnv names the environment variable that overrides the
// configured database DSN.
const DatabaseURLEnv = "DATABASE_URL"

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address         string                       `yaml:"address"`
	MaxBodySize     string                       `yaml:"maxBodySize"`
	Logging         config.LoggingConfig         `yaml:"logging"`
	Database        store.Config                 `yaml:"database"`
	CORS            CORSConfig                   `yaml:"cors"`
	ShutdownTimeout time.Duration                `yaml:"shutdownTimeout"`
	ReferenceYear   int                          `yaml:"referenceYear"`
	Assumptions     analysis.AssumptionOverrides `yaml:"assumptions"`
	bodySizeBytes   int64
}

func defaultConfig() *Config {
	return &Config{
		Address:         constants.DefaultServerAddress,
		MaxBodySize:     fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes),
		Logging:         config.LoggingConfig{},
		Database:        store.Config{Driver: constants.DefaultDatabaseDriver},
		CORS:            CORSConfig{AllowedOrigins: []string{"*"}},
		ShutdownTimeout: constants.DefaultShutdownTimeoutSeconds * time.Second,
		bodySizeBytes:   constants.DefaultMaxBodySizeBytes,
	}
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error. DATABASE_URL, when set, replaces the
// configured DSN.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read server config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	dsn := strings.TrimSpace(os.Getenv(DatabaseURLEnv))
	if dsn == "" {
		return
	}
	c.Database.DSN = dsn
	driver := strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if driver == "" || driver == store.DriverMemory {
		c.Database.Driver = store.DriverPostgres
	}
}

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// DefaultAssumptions returns the assumptions applied to requests that do not
// supply their own.
func (c *Config) DefaultAssumptions() analysis.Assumptions {
	return c.Assumptions.Apply(analysis.DefaultAssumptions())
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = constants.DefaultShutdownTimeoutSeconds * time.Second
	}
	if c.ReferenceYear < 0 {
		return fmt.Errorf("referenceYear must not be negative, got %d", c.ReferenceYear)
	}
	if err := validation.ValidateAssumptions(c.DefaultAssumptions()); err != nil {
		return fmt.Errorf("invalid default assumptions: %w", err)
	}

	sizeStr := strings.TrimSpace(c.MaxBodySize)
	if sizeStr == "" {
		c.bodySizeBytes = constants.DefaultMaxBodySizeBytes
		c.MaxBodySize = fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.bodySizeBytes = bytes
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	if n < 0 {
		return 0, fmt.Errorf("negative size %s", value)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
