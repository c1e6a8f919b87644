package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds process-level settings sourced from the environment.
// Site and selector definitions live in the sites file, not here.
type Config struct {
	Database   DatabaseConfig
	Embeddings EmbeddingsConfig
	Redis      RedisConfig
	Fetch      FetchConfig
	Server     ServerConfig
	Logging    LoggingConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type EmbeddingsConfig struct {
	BaseURL     string
	Model       string
	Dimension   int
	ChunkSize   int
	MaxDocChars int
	Timeout     time.Duration
}

type RedisConfig struct {
	Addr     string
	DB       int
	CacheTTL time.Duration
}

type FetchConfig struct {
	UserAgent string
	Timeout   time.Duration
}

type ServerConfig struct {
	StatusAddr string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "fashion_catalog"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		},
		Embeddings: EmbeddingsConfig{
			BaseURL:     getEnvOrDefault("EMBEDDINGS_URL", "http://localhost:8093"),
			Model:       getEnvOrDefault("EMBEDDINGS_MODEL", "google/siglip-base-patch16-384"),
			Dimension:   getIntOrDefault("EMBEDDINGS_DIM", 768),
			ChunkSize:   getIntOrDefault("EMBEDDINGS_CHUNK_SIZE", 8),
			MaxDocChars: getIntOrDefault("EMBEDDINGS_MAX_DOC_CHARS", 2000),
			Timeout:     getDurationOrDefault("EMBEDDINGS_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			CacheTTL: getDurationOrDefault("REDIS_CACHE_TTL", 7*24*time.Hour),
		},
		Fetch: FetchConfig{
			UserAgent: getEnvOrDefault("USER_AGENT",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
			Timeout: getDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
		},
		Server: ServerConfig{
			StatusAddr: getEnvOrDefault("STATUS_ADDR", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
