package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Transport names accepted by KPI_TRANSPORT.
const (
	TransportAuto = "auto"
	TransportHTTP = "http"
	TransportHost = "host"
	TransportMock = "mock"
)

type Config struct {
	Addr                 string
	Environment          string
	Transport            string
	APIURL               string
	APITimeout           time.Duration
	HostTimeout          time.Duration
	MockDelay            time.Duration
	SeedOnFailure        bool
	SessionDBPath        string
	SessionEncryptionKey string
	JWTSecret            string
	SessionTTL           time.Duration
	BackendAddr          string
	DatabaseURL          string
	MigrationsDir        string
	RunMigrations        bool
	RunSeed              bool
	PhotoDriver          string
	PhotoS3Bucket        string
	PhotoS3Region        string
	PhotoS3Endpoint      string
	PhotoS3PathStyle     bool
	PhotoSize            int
	MaxBodyBytes         int64
	RateLimitPerMinute   int
	MetricsEnabled       bool
	FrontendDir          string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables take precedence over it.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:                 getEnv("APP_ADDR", ":8080"),
		Environment:          getEnv("APP_ENV", "development"),
		Transport:            strings.ToLower(getEnv("KPI_TRANSPORT", TransportAuto)),
		APIURL:               getEnv("KPI_API_URL", ""),
		APITimeout:           getEnvDuration("KPI_API_TIMEOUT", 0),
		HostTimeout:          getEnvDuration("KPI_HOST_TIMEOUT", 30*time.Second),
		MockDelay:            getEnvDuration("KPI_MOCK_DELAY", 600*time.Millisecond),
		SeedOnFailure:        getEnvBool("KPI_SEED_ON_FAILURE", false),
		SessionDBPath:        getEnv("SESSION_DB_PATH", "data/session.db"),
		SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", ""),
		JWTSecret:            getEnv("JWT_SECRET", "dev-secret"),
		SessionTTL:           getEnvDuration("SESSION_TTL", 12*time.Hour),
		BackendAddr:          getEnv("BACKEND_ADDR", ":8090"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		MigrationsDir:        getEnv("MIGRATIONS_DIR", "migrations"),
		RunMigrations:        getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:              getEnvBool("RUN_SEED", true),
		PhotoDriver:          strings.ToLower(getEnv("PHOTO_DRIVER", "memory")),
		PhotoS3Bucket:        getEnv("PHOTO_S3_BUCKET", ""),
		PhotoS3Region:        getEnv("PHOTO_S3_REGION", "us-east-1"),
		PhotoS3Endpoint:      getEnv("PHOTO_S3_ENDPOINT", ""),
		PhotoS3PathStyle:     getEnvBool("PHOTO_S3_PATH_STYLE", false),
		PhotoSize:            getEnvInt("PHOTO_SIZE", 200),
		MaxBodyBytes:         int64(getEnvInt("MAX_BODY_BYTES", 4194304)),
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MetricsEnabled:       getEnvBool("METRICS_ENABLED", true),
		FrontendDir:          getEnv("FRONTEND_DIR", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// Validate checks the settings used by the dashboard API.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportAuto, TransportHTTP, TransportHost, TransportMock:
	default:
		return fmt.Errorf("KPI_TRANSPORT must be one of auto, http, host, mock")
	}
	if c.Transport == TransportHTTP && strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("KPI_API_URL is required when KPI_TRANSPORT is http")
	}
	if c.HostTimeout <= 0 {
		return fmt.Errorf("KPI_HOST_TIMEOUT must be positive")
	}
	if c.APITimeout < 0 || c.MockDelay < 0 {
		return fmt.Errorf("KPI_API_TIMEOUT and KPI_MOCK_DELAY must not be negative")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" || c.JWTSecret == "dev-secret" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.SessionEncryptionKey == "" {
			return fmt.Errorf("SESSION_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	switch c.PhotoDriver {
	case "memory":
	case "s3":
		if strings.TrimSpace(c.PhotoS3Bucket) == "" {
			return fmt.Errorf("PHOTO_S3_BUCKET must be set when PHOTO_DRIVER is s3")
		}
	default:
		return fmt.Errorf("PHOTO_DRIVER must be memory or s3")
	}
	if c.PhotoSize < 16 {
		return fmt.Errorf("PHOTO_SIZE must be at least 16")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// ValidateBackend checks the settings used by the reference backend.
func (c Config) ValidateBackend() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.BackendAddr) == "" {
		return fmt.Errorf("BACKEND_ADDR is required")
	}
	return nil
}
