// Package config loads process configuration from the environment,
// following the getEnv/getEnvAsX convention also used by this module's
// Kafka config loader (internal/infrastructure/messaging/kafka).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig
	Ledger        LedgerConfig
	Logging       LoggingConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServerConfig controls the TCP reactor/worker-pool front door.
type ServerConfig struct {
	Host string
	Port int

	// WorkerCount is K in spec.md §4.3 — the fixed worker pool size.
	WorkerCount int
	// QueueCapacity is Q — the bounded task queue depth.
	QueueCapacity int
	// ReadBufferSize is BUFSZ — the per-read buffer in §4.3.
	ReadBufferSize int
	// EpollTimeout bounds how long the reactor blocks per wake, so
	// running=false is observed promptly (spec.md §4.3/§5).
	EpollTimeout time.Duration
	// ProcessingDelay is the simulated per-command delay from spec.md §4.2.
	// Defaults to 100ms so worker-pool concurrency is externally
	// measurable; tests that need fast execution set it to 0 explicitly.
	ProcessingDelay time.Duration
	// SingleThreadedDefault seeds the MODE_SINGLE/MODE_MULTI toggle.
	SingleThreadedDefault bool
}

// LedgerConfig bounds the in-memory account table.
type LedgerConfig struct {
	Capacity int // N in spec.md §3, default 1000
}

type LoggingConfig struct {
	Level  string
	Format string
}

// KafkaConfig controls the best-effort transaction-event publisher.
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	ClientID string
}

// ObservabilityConfig controls the diagnostic HTTP sidecar (SPEC_FULL §7).
type ObservabilityConfig struct {
	Enabled bool
	Addr    string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                  getEnv("LEDGER_HOST", "0.0.0.0"),
			Port:                  getEnvAsInt("LEDGER_PORT", 8080),
			WorkerCount:           getEnvAsInt("LEDGER_WORKERS", 10),
			QueueCapacity:         getEnvAsInt("LEDGER_QUEUE_CAPACITY", 1000),
			ReadBufferSize:        getEnvAsInt("LEDGER_READ_BUFFER", 1024),
			EpollTimeout:          getEnvAsDuration("LEDGER_POLL_TIMEOUT", time.Second),
			ProcessingDelay:       getEnvAsDuration("LEDGER_PROCESSING_DELAY", 100*time.Millisecond),
			SingleThreadedDefault: getEnvAsBool("LEDGER_SINGLE_THREADED", false),
		},
		Ledger: LedgerConfig{
			Capacity: getEnvAsInt("LEDGER_CAPACITY", 1000),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Kafka: KafkaConfig{
			Enabled:  getEnvAsBool("KAFKA_ENABLED", false),
			Brokers:  getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			ClientID: getEnv("KAFKA_CLIENT_ID", "ledgerd"),
		},
		Observability: ObservabilityConfig{
			Enabled: getEnvAsBool("OBSERVABILITY_ENABLED", true),
			Addr:    getEnv("OBSERVABILITY_ADDR", ":9090"),
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
