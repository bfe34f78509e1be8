package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/costlocker/report-export/pkg/logging"
)

const testUUID = "4e3f7a9c-8a2b-4c4d-9e1f-2b3c4d5e6f70"

// setRequiredEnv sets the three required variables to valid values.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIURL, "https://new.costlocker.com/graphql")
	t.Setenv(EnvAPIToken, "secret-token")
	t.Setenv(EnvReportUUID, testUUID)
}

// clearOptionalEnv makes sure optional variables from the host environment
// don't leak into tests.
func clearOptionalEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvPageSize, EnvMaxConcurrency, EnvTimeout, EnvLogLevel, EnvLogPretty} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIURL != "https://new.costlocker.com/graphql" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.APIToken != "secret-token" {
		t.Errorf("APIToken = %q", cfg.APIToken)
	}
	if cfg.ReportUUID != testUUID {
		t.Errorf("ReportUUID = %q", cfg.ReportUUID)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", cfg.PageSize, DefaultPageSize)
	}
	if cfg.MaxConcurrency != DefaultMaxConcurrency {
		t.Errorf("MaxConcurrency = %d, want %d", cfg.MaxConcurrency, DefaultMaxConcurrency)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantVar string
	}{
		{"missing_api_url", EnvAPIURL, EnvAPIURL},
		{"missing_api_token", EnvAPIToken, EnvAPIToken},
		{"missing_report_uuid", EnvReportUUID, EnvReportUUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			clearOptionalEnv(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			if err == nil {
				t.Fatal("Expected error but got nil")
			}
			if !strings.Contains(err.Error(), tt.wantVar) {
				t.Errorf("Error %q should name %s", err.Error(), tt.wantVar)
			}
		})
	}
}

func TestLoad_InvalidUUID(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)
	t.Setenv(EnvReportUUID, "not-a-uuid")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for invalid UUID")
	}
	if !strings.Contains(err.Error(), EnvReportUUID) {
		t.Errorf("Error %q should name %s", err.Error(), EnvReportUUID)
	}
}

func TestLoad_Optionals(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)
	t.Setenv(EnvPageSize, "25")
	t.Setenv(EnvMaxConcurrency, "3")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogPretty, "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", cfg.PageSize)
	}
	if cfg.MaxConcurrency != 3 {
		t.Errorf("MaxConcurrency = %d, want 3", cfg.MaxConcurrency)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if !cfg.LogPretty {
		t.Error("LogPretty should be true")
	}
}

func TestLoad_InvalidOptionals(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"page_size_not_number", EnvPageSize, "abc"},
		{"page_size_zero", EnvPageSize, "0"},
		{"page_size_negative", EnvPageSize, "-1"},
		{"concurrency_zero", EnvMaxConcurrency, "0"},
		{"timeout_not_duration", EnvTimeout, "banana"},
		{"timeout_negative", EnvTimeout, "-2s"},
		{"pretty_not_bool", EnvLogPretty, "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			clearOptionalEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("Expected error but got nil")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Error %q should name %s", err.Error(), tt.key)
			}
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := strings.Join([]string{
		EnvAPIURL + "=https://dotenv.costlocker.com/graphql",
		EnvAPIToken + "=dotenv-token",
		EnvReportUUID + "=" + testUUID,
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	t.Chdir(dir)

	clearOptionalEnv(t)
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAPIToken, "")
	t.Setenv(EnvReportUUID, "")

	// godotenv does not overwrite set variables, so blank the process values
	// entirely for this test.
	os.Unsetenv(EnvAPIURL)
	os.Unsetenv(EnvAPIToken)
	os.Unsetenv(EnvReportUUID)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIURL != "https://dotenv.costlocker.com/graphql" {
		t.Errorf("APIURL = %q, want value from .env", cfg.APIURL)
	}
	if cfg.APIToken != "dotenv-token" {
		t.Errorf("APIToken = %q, want value from .env", cfg.APIToken)
	}
}

func TestLoad_ProcessEnvWinsOverDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := EnvAPIToken + "=dotenv-token\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	t.Chdir(dir)

	setRequiredEnv(t)
	clearOptionalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIToken != "secret-token" {
		t.Errorf("APIToken = %q, process env should win over .env", cfg.APIToken)
	}
}
