package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// Redis Configuration (result polling / stats cache)
	Redis RedisConfig `json:"redis"`

	// Mongo Configuration (media blob storage)
	Mongo MongoConfig `json:"mongo"`

	// Publish engine configuration
	Publish PublishConfig `json:"publish"`

	// Platform OAuth app credentials
	Platforms PlatformsConfig `json:"platforms"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	MediaPort    string `json:"media_port"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	Environment  string `json:"environment"` // development, staging, production
	FrontendURL  string `json:"frontend_url"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

type RedisConfig struct {
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

type MongoConfig struct {
	URI          string `json:"uri"`
	DatabaseName string `json:"database_name"`
	Enabled      bool   `json:"enabled"`
}

// PublishConfig tunes the publish orchestration engine.
type PublishConfig struct {
	// StepDelay is the pause between progress checkpoints while a target
	// is in_progress. It is UX pacing, not a platform signal.
	StepDelay time.Duration `json:"step_delay"`

	// HTTPTimeout bounds each outbound adapter call.
	HTTPTimeout time.Duration `json:"http_timeout"`

	// RatePerSecond limits outbound calls per platform.
	RatePerSecond float64 `json:"rate_per_second"`

	// SchedulerSpec is the cron spec for the scheduled-post scan.
	SchedulerSpec string `json:"scheduler_spec"`
}

// PlatformsConfig holds OAuth app credentials per platform.
// Instagram rides on the Facebook app (Graph API).
type PlatformsConfig struct {
	TwitterClientID      string `json:"twitter_client_id"`
	TwitterClientSecret  string `json:"twitter_client_secret"`
	FacebookClientID     string `json:"facebook_client_id"`
	FacebookClientSecret string `json:"facebook_client_secret"`
	LinkedInClientID     string `json:"linkedin_client_id"`
	LinkedInClientSecret string `json:"linkedin_client_secret"`
	YouTubeClientID      string `json:"youtube_client_id"`
	YouTubeClientSecret  string `json:"youtube_client_secret"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level   string `json:"level"`   // debug, info, warn, error
	Console bool   `json:"console"` // pretty console writer vs JSON
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

// Load builds the config from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvOrDefault("SERVER_PORT", "8080"),
			MediaPort:    getEnvOrDefault("MEDIA_PORT", "8081"),
			ReadTimeout:  getEnvIntOrDefault("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", 15),
			Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
			FrontendURL:  getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			Username:     getEnvOrDefault("DB_USER", "crosspost"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			DatabaseName: getEnvOrDefault("DB_NAME", "crosspost"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:     getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
			Enabled: getEnvOrDefault("REDIS_ENABLED", "true") == "true",
		},
		Mongo: MongoConfig{
			URI:          getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
			DatabaseName: getEnvOrDefault("MONGO_DB", "crosspost_media"),
			Enabled:      getEnvOrDefault("MONGO_ENABLED", "true") == "true",
		},
		Publish: PublishConfig{
			StepDelay:     getEnvDurationOrDefault("PUBLISH_STEP_DELAY", 500*time.Millisecond),
			HTTPTimeout:   getEnvDurationOrDefault("PUBLISH_HTTP_TIMEOUT", 30*time.Second),
			RatePerSecond: getEnvFloatOrDefault("PUBLISH_RATE_PER_SECOND", 5),
			SchedulerSpec: getEnvOrDefault("PUBLISH_SCHEDULER_SPEC", "* * * * *"),
		},
		Platforms: PlatformsConfig{
			TwitterClientID:      os.Getenv("TWITTER_CLIENT_ID"),
			TwitterClientSecret:  os.Getenv("TWITTER_CLIENT_SECRET"),
			FacebookClientID:     os.Getenv("FACEBOOK_CLIENT_ID"),
			FacebookClientSecret: os.Getenv("FACEBOOK_CLIENT_SECRET"),
			LinkedInClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
			LinkedInClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
			YouTubeClientID:      os.Getenv("YOUTUBE_CLIENT_ID"),
			YouTubeClientSecret:  os.Getenv("YOUTUBE_CLIENT_SECRET"),
		},
		Logging: LoggingConfig{
			Level:   getEnvOrDefault("LOG_LEVEL", "info"),
			Console: getEnvOrDefault("LOG_CONSOLE", "true") == "true",
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
