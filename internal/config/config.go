// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Transport names accepted by FLOWLINE_TRANSPORT.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds all application configuration. One Config serves both
// binaries; each reads only the fields it needs.
type Config struct {
	// Store settings.
	AnalyticsDBPath string // SQLite file for the analytics service.
	CRMDBPath       string // SQLite file for the CRM service.

	// Transport settings.
	Transport    string // "stdio" (default) or "http".
	Port         int    // HTTP port when Transport is "http".
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// CRM policy.
	CRMStrictRefs bool // Reject deals whose contact_id has no contact row.

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		AnalyticsDBPath: envStr("FLOWLINE_ANALYTICS_DB", "data/analytics.db"),
		CRMDBPath:       envStr("FLOWLINE_CRM_DB", "data/crm.db"),
		Transport:       envStr("FLOWLINE_TRANSPORT", TransportStdio),
		Port:            envInt("FLOWLINE_PORT", 8080),
		ReadTimeout:     envDuration("FLOWLINE_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    envDuration("FLOWLINE_WRITE_TIMEOUT", 30*time.Second),
		CRMStrictRefs:   envBool("FLOWLINE_CRM_STRICT_REFS", false),
		OTELEndpoint:    envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:     envStr("OTEL_SERVICE_NAME", "flowline"),
		LogLevel:        envStr("FLOWLINE_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and consistent.
func (c Config) Validate() error {
	if c.AnalyticsDBPath == "" {
		return fmt.Errorf("config: FLOWLINE_ANALYTICS_DB is required")
	}
	if c.CRMDBPath == "" {
		return fmt.Errorf("config: FLOWLINE_CRM_DB is required")
	}
	if c.Transport != TransportStdio && c.Transport != TransportHTTP {
		return fmt.Errorf("config: FLOWLINE_TRANSPORT must be %q or %q, got %q",
			TransportStdio, TransportHTTP, c.Transport)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: FLOWLINE_PORT must be in 1-65535")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
