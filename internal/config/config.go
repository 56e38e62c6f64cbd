package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by DATA_BACKEND.
const (
	BackendMemory = "memory"
	BackendFiles  = "files"
	BackendSQLite = "sqlite"
	BackendGCS    = "gcs"
)

var validBackends = []string{BackendMemory, BackendFiles, BackendSQLite, BackendGCS}

type Config struct {
	// Storage
	DataBackend   string
	DataDirectory string
	SQLiteDBPath  string
	GCSBucket     string
	GCSPrefix     string

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Advice
	GeminiModel string

	// Observability
	MetricsFile string
	LogLevel    string
	LogFormat   string

	// Store and reports
	StorageRetryInterval time.Duration
	ReportCacheSize      int
	ReportCacheTTL       time.Duration
	WeekStart            string
}

func Load() *Config {
	return &Config{
		DataBackend:   getEnv("DATA_BACKEND", BackendFiles),
		DataDirectory: getEnv("DATA_DIRECTORY", "./data"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),
		GCSBucket:     getEnv("GCS_BUCKET", ""),
		GCSPrefix:     getEnv("GCS_PREFIX", "fintrack/"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_changes"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Export"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		MetricsFile: getEnv("METRICS_FILE", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),

		StorageRetryInterval: getEnvDuration("STORAGE_RETRY_INTERVAL", 5*time.Minute),
		ReportCacheSize:      getEnvInt("REPORT_CACHE_SIZE", 32),
		ReportCacheTTL:       getEnvDuration("REPORT_CACHE_TTL", 10*time.Minute),
		WeekStart:            getEnv("WEEK_START", "sunday"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendFiles:
		if strings.TrimSpace(c.DataDirectory) == "" {
			errors = append(errors, "data directory cannot be empty when using files backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendGCS:
		if strings.TrimSpace(c.GCSBucket) == "" {
			errors = append(errors, "GCS bucket is required when using gcs backend")
		}
	}

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

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if c.StorageRetryInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid storage retry interval %v: must be at least 1 second", c.StorageRetryInterval))
	} else if c.StorageRetryInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid storage retry interval %v: must be at most 24 hours", c.StorageRetryInterval))
	}

	if c.ReportCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache size %d: must not be negative", c.ReportCacheSize))
	}
	if c.ReportCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache ttl %v: must not be negative", c.ReportCacheTTL))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if _, ok := parseWeekday(c.WeekStart); !ok {
		errors = append(errors, fmt.Sprintf("invalid week start '%s': must be 'sunday' or 'monday'", c.WeekStart))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// FirstDayOfWeek returns the configured week start, Sunday when unset or
// unrecognised.
func (c *Config) FirstDayOfWeek() time.Weekday {
	d, _ := parseWeekday(c.WeekStart)
	return d
}

func parseWeekday(s string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunday", "sun":
		return time.Sunday, true
	case "monday", "mon":
		return time.Monday, true
	default:
		return time.Sunday, false
	}
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
