package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Recommend RecommendConfig
	Artifacts ArtifactsConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds the optional Postgres artifact source configuration
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

// SessionConfig bounds per-session state and its expiry
type SessionConfig struct {
	TTL           time.Duration
	RecentItems   int // recency-list items returned per context read
	EventLogLimit int // events returned per context read
	RecencyCap    int // hard cap on the stored recency list
}

// RecommendConfig tunes the recommendation pipeline
type RecommendConfig struct {
	DefaultK        int
	MaxK            int
	PoolSize        int
	DiversityWeight float64
	CacheEnabled    bool
	CacheBackend    string // memory or redis
	CacheTTL        time.Duration
	CacheMaxEntries int
}

// ArtifactsConfig selects where serving artifacts are read from
type ArtifactsConfig struct {
	Source string // file or postgres
	Path   string // directory for the file source
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
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "sessionrec"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			TTL:           time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 24)) * time.Hour,
			RecentItems:   getEnvAsInt("SESSION_RECENT_ITEMS", 20),
			EventLogLimit: getEnvAsInt("SESSION_EVENT_LOG_LIMIT", 50),
			RecencyCap:    getEnvAsInt("SESSION_RECENCY_CAP", 100),
		},
		Recommend: RecommendConfig{
			DefaultK:        getEnvAsInt("RECOMMEND_DEFAULT_K", 20),
			MaxK:            getEnvAsInt("RECOMMEND_MAX_K", 100),
			PoolSize:        getEnvAsInt("RECOMMEND_POOL_SIZE", 100),
			DiversityWeight: getEnvAsFloat("RECOMMEND_DIVERSITY_WEIGHT", 0.3),
			CacheEnabled:    getEnvAsBool("RECOMMEND_CACHE_ENABLED", true),
			CacheBackend:    getEnv("RECOMMEND_CACHE_BACKEND", "memory"),
			CacheTTL:        time.Duration(getEnvAsInt("RECOMMEND_CACHE_TTL_SECONDS", 300)) * time.Second,
			CacheMaxEntries: getEnvAsInt("RECOMMEND_CACHE_MAX_ENTRIES", 10000),
		},
		Artifacts: ArtifactsConfig{
			Source: getEnv("ARTIFACTS_SOURCE", "file"),
			Path:   getEnv("ARTIFACTS_PATH", "./artifacts"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "sessionrec"),
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

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
