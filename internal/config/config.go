package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	BackendURL  string
	DatabaseURL string
	RedisURL    string
	Environment string

	HintMinRetries      int
	SingleOccupancy     bool
	MissingStartWindow  time.Duration
	CompletionThreshold float64

	QuestionCacheTTL time.Duration
	RequestTimeout   time.Duration
	TelemetryTimeout time.Duration

	TelemetryLedgerEnabled bool
	TelemetryHTTPEnabled   bool

	Events EventConfig
}

// LoadConfig reads .env when present and falls back to defaults for unset keys.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		BackendURL:  getEnv("BACKEND_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		Environment: getEnv("ENVIRONMENT", "development"),

		HintMinRetries:      getEnvInt("HINT_MIN_RETRIES", 3),
		SingleOccupancy:     getEnvBool("SINGLE_OCCUPANCY", false),
		MissingStartWindow:  getEnvDuration("MISSING_START_WINDOW", 60*time.Second),
		CompletionThreshold: getEnvFloat("COMPLETION_THRESHOLD", 0.70),

		QuestionCacheTTL: getEnvDuration("QUESTION_CACHE_TTL", 5*time.Minute),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		TelemetryTimeout: getEnvDuration("TELEMETRY_TIMEOUT", 5*time.Second),

		TelemetryLedgerEnabled: getEnvBool("TELEMETRY_LEDGER_ENABLED", true),
		TelemetryHTTPEnabled:   getEnvBool("TELEMETRY_HTTP_ENABLED", true),

		Events: EventConfig{
			Enabled:        getEnvBool("EVENTS_ENABLED", false),
			Publisher:      getEnv("EVENTS_PUBLISHER", "kafka"),
			KafkaBrokers:   getEnv("KAFKA_BROKERS", "localhost:9092"),
			TelemetryTopic: getEnv("TELEMETRY_TOPIC", "learning.telemetry"),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
