package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ventas/internal/core"
)

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration
	ExportRateLimit int // export requests per client per minute
	XLSXRateLimit   int // overrides ExportRateLimit for xlsx; 0 inherits it

	// Logging
	LogLevel string

	// Backend selection
	DataBackend string

	// Synthetic dataset
	DatasetSeed  uint64
	DatasetSize  int
	DatasetStart string
	DatasetEnd   string

	// Database
	SQLiteDBPath string
	SQLiteSeed   bool

	// AMQP, optional: export notifications are disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

func Load() *Config {
	cfg := &Config{
		Port:            getEnv("PORT", "8081"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		ExportRateLimit: getEnvInt("EXPORT_RATE_LIMIT", 30),
		XLSXRateLimit:   getEnvInt("EXPORT_XLSX_RATE_LIMIT", 0),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataBackend: getEnv("DATA_BACKEND", "synthetic"),

		DatasetSeed:  getEnvUint("DATASET_SEED", 42),
		DatasetSize:  getEnvInt("DATASET_SIZE", 5000),
		DatasetStart: getEnv("DATASET_START", "2024-01-01"),
		DatasetEnd:   getEnv("DATASET_END", "2025-07-31"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ventas.db"),
		SQLiteSeed:   getEnvBool("SQLITE_SEED", true),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ventas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "export_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Ventas"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
	}

	return cfg
}

// DatasetRange parses the synthetic dataset bounds.
func (c *Config) DatasetRange() (core.DateRange, error) {
	start, err := core.ParseDate(c.DatasetStart)
	if err != nil {
		return core.DateRange{}, fmt.Errorf("dataset start: %w", err)
	}
	end, err := core.ParseDate(c.DatasetEnd)
	if err != nil {
		return core.DateRange{}, fmt.Errorf("dataset end: %w", err)
	}
	return core.NewDateRange(start, end), nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if c.ExportRateLimit < 1 || c.ExportRateLimit > 10000 {
		errors = append(errors, fmt.Sprintf("invalid export rate limit %d: must be between 1 and 10000", c.ExportRateLimit))
	}
	if c.XLSXRateLimit < 0 || c.XLSXRateLimit > 10000 {
		errors = append(errors, fmt.Sprintf("invalid xlsx export rate limit %d: must be between 0 and 10000", c.XLSXRateLimit))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Validate data backend
	validBackends := []string{"synthetic", "sqlite", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// The generator also seeds the sqlite backend, so its settings matter there too.
	if c.DataBackend == "synthetic" || (c.DataBackend == "sqlite" && c.SQLiteSeed) {
		if c.DatasetSize < 1 || c.DatasetSize > 1_000_000 {
			errors = append(errors, fmt.Sprintf("invalid dataset size %d: must be between 1 and 1000000", c.DatasetSize))
		}
		if r, err := c.DatasetRange(); err != nil {
			errors = append(errors, fmt.Sprintf("invalid dataset range: %v", err))
		} else if !r.IsValid() {
			errors = append(errors, fmt.Sprintf("invalid dataset range %s: start must not be after end", r))
		}
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate Google Sheets configuration if backend is sheets
	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets backend")
		}

		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets backend")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseUint(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// ExportFormatLimits returns the per-format export limits that differ from
// ExportRateLimit.
func (c *Config) ExportFormatLimits() map[string]int {
	limits := map[string]int{}
	if c.XLSXRateLimit > 0 {
		limits["xlsx"] = c.XLSXRateLimit
	}
	return limits
}
