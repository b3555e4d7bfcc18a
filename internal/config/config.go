package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the typed view of the process environment
type Config struct {
	Port        string
	Environment string

	// Database
	DBDriver    string // postgres | sqlite
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Redis (profile cache)
	RedisHost     string
	RedisPort     string
	RedisPassword string

	JWTSecret string

	LogLevel string
	LogFile  string

	Feed          FeedConfig
	Notifications NotificationConfig

	ProfileCacheTTL time.Duration
	StoreTimeout    time.Duration

	Telemetry TelemetryConfig
}

// FeedConfig tunes the following-feed fan-out
type FeedConfig struct {
	MembershipLimit   int // K: actor ids per membership query
	PerBatchLimit     int // floor for rows fetched per batch
	EnrichConcurrency int
}

type NotificationConfig struct {
	BulkChunk int
}

type TelemetryConfig struct {
	Enabled      bool
	Endpoint     string
	SamplingRate float64
	ServiceName  string
}

// Load reads .env (if present) and the environment into a Config.
// Missing .env files are not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8787")
	v.SetDefault("ENVIRONMENT", "development")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "boxd")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "boxd.log")

	v.SetDefault("FEED_MEMBERSHIP_LIMIT", 10)
	v.SetDefault("FEED_PER_BATCH_LIMIT", 50)
	v.SetDefault("FEED_ENRICH_CONCURRENCY", 8)
	v.SetDefault("NOTIFICATION_BULK_CHUNK", 500)

	v.SetDefault("PROFILE_CACHE_TTL", "60s")
	v.SetDefault("STORE_TIMEOUT", "5s")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("OTEL_SAMPLING_RATE", 1.0)
	v.SetDefault("OTEL_SERVICE_NAME", "boxd-social")
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString("PORT"),
		Environment:   v.GetString("ENVIRONMENT"),
		DBDriver:      v.GetString("DB_DRIVER"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBSSLMode:     v.GetString("DB_SSLMODE"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFile:       v.GetString("LOG_FILE"),
		Feed: FeedConfig{
			MembershipLimit:   v.GetInt("FEED_MEMBERSHIP_LIMIT"),
			PerBatchLimit:     v.GetInt("FEED_PER_BATCH_LIMIT"),
			EnrichConcurrency: v.GetInt("FEED_ENRICH_CONCURRENCY"),
		},
		Notifications: NotificationConfig{
			BulkChunk: v.GetInt("NOTIFICATION_BULK_CHUNK"),
		},
		ProfileCacheTTL: v.GetDuration("PROFILE_CACHE_TTL"),
		StoreTimeout:    v.GetDuration("STORE_TIMEOUT"),
		Telemetry: TelemetryConfig{
			Enabled:      v.GetBool("OTEL_ENABLED"),
			Endpoint:     v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SamplingRate: v.GetFloat64("OTEL_SAMPLING_RATE"),
			ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on settings the services cannot run with
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.Feed.MembershipLimit < 1 {
		return fmt.Errorf("FEED_MEMBERSHIP_LIMIT must be at least 1")
	}
	if c.Feed.EnrichConcurrency < 1 {
		return fmt.Errorf("FEED_ENRICH_CONCURRENCY must be at least 1")
	}
	if c.Notifications.BulkChunk < 1 {
		return fmt.Errorf("NOTIFICATION_BULK_CHUNK must be at least 1")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	return nil
}

// PostgresDSN returns DATABASE_URL or a DSN assembled from the DB_* parts
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
