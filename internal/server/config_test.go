package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/deal-finder/internal/store"
	"github.com/iwvelando/deal-finder/pkg/constants"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.BodySizeBytes() != constants.DefaultMaxBodySizeBytes {
		t.Fatalf("expected default body size, got %d", cfg.BodySizeBytes())
	}
	if cfg.Database.Driver != store.DriverMemory {
		t.Fatalf("expected memory driver by default, got %q", cfg.Database.Driver)
	}
	if cfg.ShutdownTimeout != constants.DefaultShutdownTimeoutSeconds*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Fatalf("expected permissive CORS default, got %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
	if cfg.DefaultAssumptions().InterestRate != constants.DefaultInterestRate {
		t.Fatalf("expected default assumptions")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "")

	path := writeConfig(t, `address: 127.0.0.1:9000
maxBodySize: 2M
shutdownTimeout: 30s
referenceYear: 2024
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
database:
  driver: sqlite
  dsn: file:deals.db
  maxIdleConns: 2
  connMaxLifetime: 5m
cors:
  allowedOrigins:
    - http://localhost:3000
assumptions:
  interestRate: 0.065
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.BodySizeBytes() != 2*1024*1024 {
		t.Fatalf("expected body size override, got %d", cfg.BodySizeBytes())
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Fatalf("expected shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.ReferenceYear != 2024 {
		t.Fatalf("expected reference year 2024, got %d", cfg.ReferenceYear)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" || cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Database.Driver != store.DriverSQLite || cfg.Database.DSN != "file:deals.db" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Database.MaxIdleConns != 2 || cfg.Database.ConnMaxLifetime != 5*time.Minute {
		t.Fatalf("unexpected pool settings %+v", cfg.Database)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORS.AllowedOrigins)
	}
	assumptions := cfg.DefaultAssumptions()
	if assumptions.InterestRate != 0.065 || assumptions.DownPaymentPercent != constants.DefaultDownPaymentPercent {
		t.Fatalf("unexpected default assumptions %+v", assumptions)
	}
}

func TestLoadConfigDatabaseURL(t *testing.T) {
	tests := []struct {
		name           string
		contents       string
		expectedDriver string
	}{
		{"memory default switches to postgres", "address: :8000\n", store.DriverPostgres},
		{"explicit driver is kept", "database:\n  driver: sqlite\n  dsn: file:other.db\n", store.DriverSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(DatabaseURLEnv, "postgres://deals@localhost/deals?sslmode=disable")

			cfg, err := LoadConfig(writeConfig(t, tt.contents))
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Database.DSN != "postgres://deals@localhost/deals?sslmode=disable" {
				t.Fatalf("expected DATABASE_URL to replace dsn, got %q", cfg.Database.DSN)
			}
			if cfg.Database.Driver != tt.expectedDriver {
				t.Fatalf("expected driver %q, got %q", tt.expectedDriver, cfg.Database.Driver)
			}
		})
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "")

	tests := map[string]string{
		"invalid size":        "maxBodySize: invalid",
		"malformed yaml":      "address: [",
		"negative year":       "referenceYear: -1",
		"invalid assumptions": "assumptions:\n  vacancyRate: 2\n",
	}
	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, contents)); err == nil {
				t.Fatal("expected error but got nil")
			}
		})
	}
}

func TestLoadConfigExample(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "")

	cfg, err := LoadConfig(filepath.Join("..", "..", constants.DefaultServerConfigFile+".example"))
	if err != nil {
		t.Fatalf("failed to load example server config: %v", err)
	}
	if cfg.Address != ":8000" || cfg.Database.Driver != store.DriverMemory {
		t.Fatalf("unexpected example config %+v", cfg)
	}
	if !strings.HasSuffix(cfg.MaxBodySize, "K") || cfg.BodySizeBytes() != 256*1024 {
		t.Fatalf("unexpected body size %q", cfg.MaxBodySize)
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxBodySizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	// 17592186044417M wraps to a small positive number if multiplied unchecked.
	for _, bad := range []string{"1GB", "abc", "-5", "17592186044417M", "9007199254740993K"} {
		if _, err := ParseSize(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
