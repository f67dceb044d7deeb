// Package config loads pipeline settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultPath is read when PIPELINE_CONFIG is unset.
const DefaultPath = "pipeline.yaml"

// Configuration validation errors.
var (
	ErrMissingHealthPath = errors.New("health.path is required")
	ErrMissingIncomePath = errors.New("income.path is required")
	ErrMissingFlatFile   = errors.New("output.flat_file is required")
	ErrMissingDSN        = errors.New("database.dsn (or DATABASE_URL) is required")
	ErrInvalidDriver     = errors.New("database.driver must be sqlite or postgres")
	ErrInvalidTable      = errors.New("database.table must be a plain identifier")
	ErrInvalidBatchSize  = errors.New("database.batch_size must be non-negative")
	ErrInvalidLogLevel   = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidRateLimit  = errors.New("report.rate_limit and report.burst must be non-negative")
)

// Config is the complete pipeline configuration.
type Config struct {
	Health   SourceConfig   `yaml:"health"`
	Income   SourceConfig   `yaml:"income"`
	Output   OutputConfig   `yaml:"output"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Report   ReportConfig   `yaml:"report"`
}

// SourceConfig describes one raw input file.
type SourceConfig struct {
	Path     string `yaml:"path"`
	Encoding string `yaml:"encoding"`
	// Columns maps source header names to canonical field names and is
	// merged over the built-in renames.
	Columns map[string]string `yaml:"columns"`
}

// OutputConfig locates the intermediate flat file.
type OutputConfig struct {
	FlatFile string `yaml:"flat_file"`
}

// DatabaseConfig selects the relational target.
type DatabaseConfig struct {
	Driver    string `yaml:"driver"`
	DSN       string `yaml:"dsn"`
	Table     string `yaml:"table"`
	Schema    string `yaml:"schema"`
	BatchSize int    `yaml:"batch_size"`
	LogSQL    bool   `yaml:"log_sql"`
}

// LoggingConfig sets verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ReportConfig configures the read-only HTTP API.
type ReportConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit"`
	Burst          int      `yaml:"burst"`
}

// Default mirrors the repository's data/ layout.
func Default() Config {
	return Config{
		Health: SourceConfig{
			Path:     "data/cdc_life_expectancy.csv",
			Encoding: "utf-8",
		},
		Income: SourceConfig{
			Path:     "data/census_income.csv",
			Encoding: "latin1",
		},
		Output: OutputConfig{
			FlatFile: "data/cleaned_health_income.csv",
		},
		Database: DatabaseConfig{
			Driver:    "sqlite",
			DSN:       "health_outcomes.db",
			Table:     "health_income",
			Schema:    "sql/schema.sql",
			BatchSize: 500,
		},
		Logging: LoggingConfig{Level: "info"},
		Report: ReportConfig{
			Addr:      ":5050",
			RateLimit: 10,
			Burst:     20,
		},
	}
}

// ResolvePath picks the config file: an explicit flag value, then
// PIPELINE_CONFIG, then DefaultPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv("PIPELINE_CONFIG")); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads path over Default and then applies environment overrides.
// A missing file at DefaultPath is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)
	return cfg, cfg.Validate()
}

// Environment variables:
//   - DATABASE_DRIVER: "sqlite" or "postgres"
//   - DATABASE_URL: DSN, or the database file path for sqlite
//   - LOG_LEVEL: debug, info, warn, error
//   - PORT: report API port
//   - REPORT_RATE_LIMIT: requests per second for the report API
func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("DATABASE_DRIVER")); v != "" {
		c.Database.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv("DATABASE_URL")); v != "" {
		c.Database.DSN = v
	}
	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		c.Report.Addr = ":" + v
	}
	if v := strings.TrimSpace(getenv("REPORT_RATE_LIMIT")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Report.RateLimit = f
		}
	}
}

// Validate checks required fields and enumerations.
func (c Config) Validate() error {
	if c.Health.Path == "" {
		return ErrMissingHealthPath
	}
	if c.Income.Path == "" {
		return ErrMissingIncomePath
	}
	if c.Output.FlatFile == "" {
		return ErrMissingFlatFile
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidDriver, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return ErrMissingDSN
	}
	if !isIdentifier(c.Database.Table) {
		return fmt.Errorf("%w (got %q)", ErrInvalidTable, c.Database.Table)
	}
	if c.Database.BatchSize < 0 {
		return ErrInvalidBatchSize
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	if c.Report.RateLimit < 0 || c.Report.Burst < 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
