package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	PostalLookup PostalLookupConfig
	Engine       EngineConfig
	OTEL         OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PostalLookupConfig holds configuration for the external postal-code service
type PostalLookupConfig struct {
	BaseURL        string
	TimeoutSeconds int
	// DefaultState is used on the degraded descriptor when the raw
	// location carries no usable state information.
	DefaultState string
}

// EngineConfig holds tuning for the lead distribution engine
type EngineConfig struct {
	// LocationCacheTTL is how long a resolved postal code stays fresh.
	LocationCacheTTL time.Duration
	// CacheSweepInterval is how often expired cache entries are evicted.
	CacheSweepInterval time.Duration
	// CapacityWarningThreshold is the utilization percentage at or above
	// which a provider is flagged by the capacity monitor.
	CapacityWarningThreshold float64
	// ResolveConcurrency bounds the fan-out of batch postal resolution.
	ResolveConcurrency int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "referral_network"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		PostalLookup: PostalLookupConfig{
			BaseURL:        getEnv("POSTAL_LOOKUP_URL", "https://viacep.com.br/ws"),
			TimeoutSeconds: getEnvAsInt("POSTAL_LOOKUP_TIMEOUT_SECONDS", 5),
			DefaultState:   getEnv("POSTAL_DEFAULT_STATE", "SP"),
		},
		Engine: EngineConfig{
			LocationCacheTTL:         time.Duration(getEnvAsInt("LOCATION_CACHE_TTL_HOURS", 24)) * time.Hour,
			CacheSweepInterval:       time.Duration(getEnvAsInt("CACHE_SWEEP_INTERVAL_MINUTES", 60)) * time.Minute,
			CapacityWarningThreshold: getEnvAsFloat("CAPACITY_WARNING_THRESHOLD", 80.0),
			ResolveConcurrency:       getEnvAsInt("RESOLVE_CONCURRENCY", 8),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "referral-network"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Timeout returns the postal lookup timeout as a duration
func (c *PostalLookupConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
