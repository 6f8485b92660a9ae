package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port           string
	AllowedOrigins []string

	// Database
	DataBackend  string
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Recurring sweep worker
	SweepPort     string
	SweepInterval time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8081"),
		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_transactions"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Transactions"),

		SweepPort:     getEnv("SWEEP_PORT", "8082"),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 12*time.Hour),
	}

	return cfg
}

// Validate checks the configuration and returns one error collecting every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	for _, port := range []struct{ name, value string }{
		{"PORT", c.Port},
		{"SWEEP_PORT", c.SweepPort},
	} {
		if p, err := strconv.Atoi(port.value); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be a number", port.name, port.value))
		} else if p < 1 || p > 65535 {
			errors = append(errors, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", port.name, p))
		}
	}

	validBackends := []string{"sqlite", "memory"}
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

	if c.DataBackend == "sqlite" {
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

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errors = append(errors, "Google sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if c.SweepInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid sweep interval %v: must be at least 1 minute", c.SweepInterval))
	} else if c.SweepInterval > 7*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sweep interval %v: must be at most 7 days", c.SweepInterval))
	}

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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
