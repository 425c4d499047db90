// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"reelhub/internal/models"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT" yaml:"port"`
	Env            string `mapstructure:"APP_ENV" yaml:"app_env"`
	AppURL         string `mapstructure:"APP_URL" yaml:"app_url"`
	AppDomain      string `mapstructure:"APP_DOMAIN" yaml:"app_domain"`
	DBHost         string `mapstructure:"DB_HOST" yaml:"db_host"`
	DBPort         string `mapstructure:"DB_PORT" yaml:"db_port"`
	DBUser         string `mapstructure:"DB_USER" yaml:"db_user"`
	DBPassword     string `mapstructure:"DB_PASSWORD" yaml:"-"`
	DBName         string `mapstructure:"DB_NAME" yaml:"db_name"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE" yaml:"db_sslmode"`
	RedisURL       string `mapstructure:"REDIS_URL" yaml:"redis_url"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS" yaml:"feature_flags"`

	StorageDir       string `mapstructure:"STORAGE_DIR" yaml:"storage_dir"`
	StorageBucketID  string `mapstructure:"STORAGE_BUCKET_ID" yaml:"storage_bucket_id"`
	MediaBaseURL     string `mapstructure:"MEDIA_BASE_URL" yaml:"media_base_url"`
	MaxVideoUploadMB int    `mapstructure:"MAX_VIDEO_UPLOAD_MB" yaml:"max_video_upload_mb"`
	MaxImageUploadMB int    `mapstructure:"MAX_IMAGE_UPLOAD_MB" yaml:"max_image_upload_mb"`

	Collections models.Collections `mapstructure:",squash" yaml:"collections"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID" yaml:"google_client_id"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET" yaml:"-"`
	SessionSecret      string `mapstructure:"SESSION_SECRET" yaml:"-"`
	SessionTTLHours    int    `mapstructure:"SESSION_TTL_HOURS" yaml:"session_ttl_hours"`

	TracingEnabled   bool   `mapstructure:"TRACING_ENABLED" yaml:"tracing_enabled"`
	TracingExporter  string `mapstructure:"TRACING_EXPORTER" yaml:"tracing_exporter"`
	OTLPEndpoint     string `mapstructure:"OTLP_ENDPOINT" yaml:"otlp_endpoint"`
	SearchDebounceMS int    `mapstructure:"SEARCH_DEBOUNCE_MS" yaml:"search_debounce_ms"`
}

// Backend is the subset of configuration the backend client needs to come up.
type Backend struct {
	Endpoint     string
	DSN          string
	RedisURL     string
	StorageDir   string
	BucketID     string
	MediaBaseURL string
	AppURL       string
	AppDomain    string
	Collections  models.Collections

	GoogleClientID     string
	GoogleClientSecret string
	SessionSecret      string
	SessionTTL         time.Duration

	// AutoMigrate creates missing collection tables on first connect.
	AutoMigrate bool
}

const defaultSessionSecret = "change-me-session-secret-change-me"

var envKeys = []string{
	"PORT", "APP_ENV", "APP_URL", "APP_DOMAIN",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"REDIS_URL", "ALLOWED_ORIGINS", "FEATURE_FLAGS",
	"STORAGE_DIR", "STORAGE_BUCKET_ID", "MEDIA_BASE_URL",
	"MAX_VIDEO_UPLOAD_MB", "MAX_IMAGE_UPLOAD_MB",
	"COLLECTION_ID_PROFILE", "COLLECTION_ID_POST", "COLLECTION_ID_LIKE",
	"COLLECTION_ID_COMMENT", "COLLECTION_ID_FOLLOW", "COLLECTION_ID_FILE", "COLLECTION_ID_ACCOUNT",
	"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "SESSION_SECRET", "SESSION_TTL_HOURS",
	"TRACING_ENABLED", "TRACING_EXPORTER", "OTLP_ENDPOINT", "SEARCH_DEBOUNCE_MS",
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()
	// Unmarshal only sees env values for keys viper already knows about.
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	defaults := models.DefaultCollections()
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_URL", "http://localhost:3000")
	viper.SetDefault("APP_DOMAIN", "localhost")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "reelhub")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	viper.SetDefault("FEATURE_FLAGS", "live_search=on,following_feed=on")
	viper.SetDefault("STORAGE_DIR", "./data/storage")
	viper.SetDefault("STORAGE_BUCKET_ID", "videos")
	viper.SetDefault("MEDIA_BASE_URL", "http://localhost:8080")
	viper.SetDefault("MAX_VIDEO_UPLOAD_MB", 2048)
	viper.SetDefault("MAX_IMAGE_UPLOAD_MB", 10)
	viper.SetDefault("COLLECTION_ID_PROFILE", defaults.Profiles)
	viper.SetDefault("COLLECTION_ID_POST", defaults.Posts)
	viper.SetDefault("COLLECTION_ID_LIKE", defaults.Likes)
	viper.SetDefault("COLLECTION_ID_COMMENT", defaults.Comments)
	viper.SetDefault("COLLECTION_ID_FOLLOW", defaults.Follows)
	viper.SetDefault("COLLECTION_ID_FILE", defaults.Files)
	viper.SetDefault("COLLECTION_ID_ACCOUNT", defaults.Accounts)
	viper.SetDefault("SESSION_SECRET", defaultSessionSecret)
	viper.SetDefault("SESSION_TTL_HOURS", 24*7)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("SEARCH_DEBOUNCE_MS", 300)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// IsProduction reports whether the configuration targets production.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.MaxVideoUploadMB < 0 || c.MaxImageUploadMB < 0 {
		return errors.New("upload size limits must not be negative")
	}
	if c.SessionTTLHours < 0 {
		return errors.New("SESSION_TTL_HOURS must not be negative")
	}

	if c.IsProduction() {
		if c.SessionSecret == defaultSessionSecret || len(c.SessionSecret) < 32 {
			return errors.New("SESSION_SECRET must be changed and at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	if c.DBHost == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode,
	)
}

// Backend returns the settings the backend client is built from.
func (c *Config) Backend() Backend {
	ttl := time.Duration(c.SessionTTLHours) * time.Hour
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	return Backend{
		Endpoint:           c.DBHost,
		DSN:                c.DSN(),
		RedisURL:           c.RedisURL,
		StorageDir:         c.StorageDir,
		BucketID:           c.StorageBucketID,
		MediaBaseURL:       strings.TrimRight(c.MediaBaseURL, "/"),
		AppURL:             strings.TrimRight(c.AppURL, "/"),
		AppDomain:          c.AppDomain,
		Collections:        c.Collections,
		GoogleClientID:     c.GoogleClientID,
		GoogleClientSecret: c.GoogleClientSecret,
		SessionSecret:      c.SessionSecret,
		SessionTTL:         ttl,
		AutoMigrate:        !c.IsProduction(),
	}
}

// MissingKeys lists the required backend settings that are empty.
func (b Backend) MissingKeys() []string {
	var missing []string
	if b.DSN == "" {
		missing = append(missing, "DB_HOST")
	}
	if b.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if b.StorageDir == "" {
		missing = append(missing, "STORAGE_DIR")
	}
	if b.BucketID == "" {
		missing = append(missing, "STORAGE_BUCKET_ID")
	}
	if b.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	return append(missing, b.Collections.Missing()...)
}

// MaxVideoBytes returns the video upload limit in bytes.
func (c *Config) MaxVideoBytes() int64 {
	return int64(c.MaxVideoUploadMB) << 20
}

// MaxImageBytes returns the image upload limit in bytes.
func (c *Config) MaxImageBytes() int64 {
	return int64(c.MaxImageUploadMB) << 20
}

// SearchDebounce returns the live search delay.
func (c *Config) SearchDebounce() time.Duration {
	if c.SearchDebounceMS <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}
