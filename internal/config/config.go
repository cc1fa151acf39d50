// Package config loads gateway configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration for the gateway process.
type Config struct {
	HTTPPort      string
	JWTSecret     []byte
	EncryptionKey string // base64 AES key for credential storage
	Database      DatabaseConfig
	Redis         RedisConfig
	Dispatch      DispatchConfig
	Telemetry     TelemetryConfig
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds Redis connection settings for the telemetry queue.
type RedisConfig struct {
	Address      string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DispatchConfig holds the compiled-in timeout defaults per endpoint family
// and the fallback endpoint kinds tried after a retriable failure. The
// fallback timeout override is not read here: the policy resolver reads
// LLM_FALLBACK_TIMEOUT_MS fresh on every call.
type DispatchConfig struct {
	ChatTimeout      time.Duration
	ResponsesTimeout time.Duration
	FallbackKinds    []string
}

// TelemetryConfig holds settings for the dispatch-record pipeline.
type TelemetryConfig struct {
	UseRedis      bool
	QueueName     string
	BatchSize     int
	BatchTimeout  time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
	S3Enabled     bool
	S3Bucket      string
	S3Region      string
	S3Prefix      string
	ArchiveSource string // identifier embedded in archive object keys
}

func getEnvString(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val == "true" || val == "1"
}

func getEnvList(key string, defaultValue []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	encKey := os.Getenv("CREDENTIAL_ENCRYPTION_KEY")
	if encKey == "" {
		return nil, fmt.Errorf("CREDENTIAL_ENCRYPTION_KEY is required")
	}

	cfg := &Config{
		HTTPPort:      getEnvString("HTTP_PORT", "8080"),
		JWTSecret:     []byte(getEnvString("JWT_SECRET", "supersecretkey")),
		EncryptionKey: encKey,
		Database: DatabaseConfig{
			URL:             dbURL,
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		},
		Redis: RedisConfig{
			Address:      getEnvString("REDIS_ADDRESS", "localhost:6379"),
			Password:     getEnvString("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Dispatch: DispatchConfig{
			ChatTimeout:      getEnvDuration("LLM_CHAT_TIMEOUT", 60*time.Second),
			ResponsesTimeout: getEnvDuration("LLM_RESPONSES_TIMEOUT", 120*time.Second),
			FallbackKinds:    getEnvList("LLM_FALLBACK_KINDS", []string{"responses"}),
		},
		Telemetry: TelemetryConfig{
			UseRedis:      getEnvBool("TELEMETRY_USE_REDIS", false),
			QueueName:     getEnvString("TELEMETRY_QUEUE_NAME", "dispatch"),
			BatchSize:     getEnvInt("TELEMETRY_BATCH_SIZE", 100),
			BatchTimeout:  getEnvDuration("TELEMETRY_BATCH_TIMEOUT", 5*time.Second),
			MaxRetries:    getEnvInt("TELEMETRY_MAX_RETRIES", 3),
			RetryBackoff:  getEnvDuration("TELEMETRY_RETRY_BACKOFF", 1*time.Second),
			S3Enabled:     getEnvBool("TELEMETRY_S3_ENABLED", false),
			S3Bucket:      getEnvString("TELEMETRY_S3_BUCKET", ""),
			S3Region:      getEnvString("TELEMETRY_S3_REGION", "us-east-1"),
			S3Prefix:      getEnvString("TELEMETRY_S3_PREFIX", "dispatch/"),
			ArchiveSource: getEnvString("POD_NAME", "gateway-0"),
		},
	}

	return cfg, nil
}
