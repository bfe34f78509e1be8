// Package config loads the tool configuration from environment variables,
// optionally seeded from a local .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/costlocker/report-export/pkg/logging"
)

// Environment variable names.
const (
	EnvAPIURL         = "COSTLOCKER_API_URL"
	EnvAPIToken       = "COSTLOCKER_API_TOKEN"
	EnvReportUUID     = "REPORT_UUID"
	EnvPageSize       = "REPORT_PAGE_SIZE"
	EnvMaxConcurrency = "REPORT_MAX_CONCURRENCY"
	EnvTimeout        = "REPORT_TIMEOUT"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogPretty      = "LOG_PRETTY"
)

// Defaults for optional settings.
const (
	DefaultPageSize       = 100
	DefaultMaxConcurrency = 5
	DefaultTimeout        = 30 * time.Second
)

// Config holds the full tool configuration.
type Config struct {
	// APIURL is the GraphQL endpoint URL.
	APIURL string

	// APIToken is the static API credential.
	APIToken string

	// ReportUUID identifies the report to fetch.
	ReportUUID string

	// PageSize is the number of items requested per page.
	PageSize int

	// MaxConcurrency limits parallel page requests.
	MaxConcurrency int

	// Timeout bounds each request round trip.
	Timeout time.Duration

	// Log configuration.
	LogLevel  logging.LogLevel
	LogPretty bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win over
// .env values. All validation happens here, before any network activity.
func Load() (Config, error) {
	// godotenv never overwrites variables already set in the process
	// environment, and a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := Config{
		PageSize:       DefaultPageSize,
		MaxConcurrency: DefaultMaxConcurrency,
		Timeout:        DefaultTimeout,
		LogLevel:       logging.LevelInfo,
	}

	cfg.APIURL = os.Getenv(EnvAPIURL)
	if cfg.APIURL == "" {
		return Config{}, fmt.Errorf("%s is required", EnvAPIURL)
	}

	cfg.APIToken = os.Getenv(EnvAPIToken)
	if cfg.APIToken == "" {
		return Config{}, fmt.Errorf("%s is required", EnvAPIToken)
	}

	cfg.ReportUUID = os.Getenv(EnvReportUUID)
	if cfg.ReportUUID == "" {
		return Config{}, fmt.Errorf("%s is required", EnvReportUUID)
	}
	if _, err := uuid.Parse(cfg.ReportUUID); err != nil {
		return Config{}, fmt.Errorf("%s is not a valid UUID: %w", EnvReportUUID, err)
	}

	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("%s must be a positive integer (got %q)", EnvPageSize, v)
		}
		cfg.PageSize = n
	}

	if v := os.Getenv(EnvMaxConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("%s must be a positive integer (got %q)", EnvMaxConcurrency, v)
		}
		cfg.MaxConcurrency = n
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("%s must be a positive duration (got %q)", EnvTimeout, v)
		}
		cfg.Timeout = d
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = logging.LogLevel(v)
	}

	if v := os.Getenv(EnvLogPretty); v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s must be a boolean (got %q)", EnvLogPretty, v)
		}
		cfg.LogPretty = pretty
	}

	return cfg, nil
}
