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

var (
	validVariants  = []string{"basic", "full"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

type Config struct {
	// HTTP Server
	Port string

	// Report
	DataFile      string
	Variant       string
	ThemeFile     string
	RenderTimeout time.Duration

	// Logging
	LogLevel string

	// Render journal (disabled when empty)
	JournalDBPath string

	// AMQP (disabled when URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataFile:      getEnv("DATA_FILE", "users.json"),
		Variant:       strings.ToLower(getEnv("VARIANT", "full")),
		ThemeFile:     getEnv("THEME_FILE", ""),
		RenderTimeout: getEnvDuration("RENDER_TIMEOUT", 7*time.Second),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		JournalDBPath: getEnv("JOURNAL_DB_PATH", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "paydash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "render_events"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.DataFile) == "" {
		errors = append(errors, "data file path cannot be empty")
	}

	if !slices.Contains(validVariants, c.Variant) {
		errors = append(errors, fmt.Sprintf("invalid variant '%s': must be one of %v", c.Variant, validVariants))
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if c.ThemeFile != "" {
		if _, err := os.Stat(c.ThemeFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("theme file does not exist: %s", c.ThemeFile))
		}
	}

	if c.RenderTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid render timeout %v: must be at least 1 second", c.RenderTimeout))
	} else if c.RenderTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid render timeout %v: must be at most 5 minutes", c.RenderTimeout))
	}

	if c.JournalDBPath != "" {
		dir := filepath.Dir(c.JournalDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create journal database directory '%s': %v", dir, err))
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

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// JournalEnabled reports whether render outcomes are stored.
func (c *Config) JournalEnabled() bool {
	return c.JournalDBPath != ""
}

// AMQPEnabled reports whether render events are published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
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
