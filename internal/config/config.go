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
	// Server configuration
	Server ServerConfig

	// Feed source configuration
	Feed FeedConfig

	// Database configuration (feed snapshot persistence)
	Database DatabaseConfig

	// Catalog configuration
	Catalog CatalogConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// FeedConfig holds feed source settings
type FeedConfig struct {
	URL             string
	FetchTimeout    time.Duration
	RefreshSchedule string // cron expression; empty disables scheduled refresh
	LoadOnStart     bool
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	Enabled      bool
	SnapshotKeep int // newest snapshots retained after each load; <=0 keeps all
}

// CatalogConfig holds catalog and map settings
type CatalogConfig struct {
	PinCap         int      // max pins handed to the map widget per request
	FallbackImages []string // deterministic fallback covers, keyed by render position
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Feed: FeedConfig{
			URL:             getEnv("FEED_URL", ""),
			FetchTimeout:    getDurationEnv("FEED_FETCH_TIMEOUT", 30*time.Second),
			RefreshSchedule: getEnv("FEED_REFRESH_SCHEDULE", ""),
			LoadOnStart:     getBoolEnv("FEED_LOAD_ON_START", true),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "offplan_catalog"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			Enabled:      getBoolEnv("DB_ENABLED", true),
			SnapshotKeep: getIntEnv("SNAPSHOT_KEEP", 20),
		},
		Catalog: CatalogConfig{
			PinCap:         getIntEnv("MAP_PIN_CAP", 200),
			FallbackImages: getSliceEnv("FALLBACK_IMAGES", defaultFallbackImages),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultFallbackImages are used when FALLBACK_IMAGES is unset. The rendering
// surface picks one deterministically by listing position.
var defaultFallbackImages = []string{
	"/static/placeholders/project-1.jpg",
	"/static/placeholders/project-2.jpg",
	"/static/placeholders/project-3.jpg",
	"/static/placeholders/project-4.jpg",
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Feed.URL == "" {
		return fmt.Errorf("FEED_URL is required")
	}
	if c.Catalog.PinCap <= 0 {
		return fmt.Errorf("MAP_PIN_CAP must be positive")
	}
	if c.Database.Enabled && c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required when DB_ENABLED=true")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
