// Package config loads pipeline configuration from the environment,
// falling back to defaults that work for a single CLI invocation.
package config

import (
	"os"
	"strconv"
)

// Config holds the tunables the pipeline reads from the environment.
// CLI flags (cmd/ledger/main.go) take precedence over these when both
// are set; see internal/config.Load's callers.
type Config struct {
	Router  RouterConfig
	Logging LoggingConfig
	Metrics MetricsConfig
}

// RouterConfig tunes the per-client router.
type RouterConfig struct {
	// InboxCapacity is the bounded channel size per client.
	InboxCapacity int
}

// LoggingConfig tunes internal/logging.
type LoggingConfig struct {
	Level  string
	Format string
}

// MetricsConfig tunes the optional metrics/health HTTP surface
// (internal/server). Addr is empty unless explicitly enabled.
type MetricsConfig struct {
	Addr string
}

// Load reads configuration from the environment, falling back to
// defaults that work for a typical single-invocation CLI run.
func Load() *Config {
	return &Config{
		Router: RouterConfig{
			InboxCapacity: getEnvAsInt("LEDGER_INBOX_CAPACITY", 256),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LEDGER_LOG_LEVEL", "info"),
			Format: getEnv("LEDGER_LOG_FORMAT", "text"),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("LEDGER_METRICS_ADDR", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
