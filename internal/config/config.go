// Package config provides configuration management for the Sitewise backend.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// CacheConfig holds the tuning knobs of the caching layer.
type CacheConfig struct {
	DataMaxEntries         int `yaml:"data_max_entries" validate:"gt=0"`
	IdentityMaxEntries     int `yaml:"identity_max_entries" validate:"gt=0"`
	IdentityTTLSeconds     int `yaml:"identity_ttl_seconds" validate:"gt=0"`
	CleanupIntervalSeconds int `yaml:"cleanup_interval_seconds" validate:"gt=0"`
}

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment" validate:"oneof=development staging production"`

	// Supabase collaborators
	SupabaseURL            string `yaml:"supabase_url"`
	SupabaseServiceRoleKey string `yaml:"-"`

	// Authentication. "remote" asks the auth service who the caller is on
	// every request; "local" verifies the token signature in-process.
	AuthMode  string `yaml:"auth_mode" validate:"oneof=remote local"`
	JWTSecret string `yaml:"-"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Feature flags
	EnableTracing bool   `yaml:"enable_tracing"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`
	EnableCORS    bool   `yaml:"enable_cors"`

	// Caching
	Cache CacheConfig `yaml:"cache"`
}

// LoadConfig loads configuration from an optional YAML file (CONFIG_FILE) with
// environment variables taking precedence over both the file and the defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: ":8080",
		Environment:   "development",
		AuthMode:      "remote",
		JWTIssuer:     "sitewise-backend",
		LogLevel:      "info",
		EnableCORS:    true,
		Cache: CacheConfig{
			DataMaxEntries:         1000,
			IdentityMaxEntries:     500,
			IdentityTTLSeconds:     60,
			CleanupIntervalSeconds: 60,
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile overlays values from a YAML config file.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays values from environment variables.
func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.SupabaseURL = getEnv("SUPABASE_URL", c.SupabaseURL)
	c.SupabaseServiceRoleKey = getEnv("SUPABASE_SERVICE_ROLE_KEY", c.SupabaseServiceRoleKey)
	c.AuthMode = getEnv("AUTH_MODE", c.AuthMode)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.OTLPEndpoint = getEnv("OTLP_ENDPOINT", c.OTLPEndpoint)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)

	c.Cache.DataMaxEntries = getEnvInt("CACHE_DATA_MAX_ENTRIES", c.Cache.DataMaxEntries)
	c.Cache.IdentityMaxEntries = getEnvInt("CACHE_IDENTITY_MAX_ENTRIES", c.Cache.IdentityMaxEntries)
	c.Cache.IdentityTTLSeconds = getEnvInt("CACHE_IDENTITY_TTL_SECONDS", c.Cache.IdentityTTLSeconds)
	c.Cache.CleanupIntervalSeconds = getEnvInt("CACHE_CLEANUP_INTERVAL_SECONDS", c.Cache.CleanupIntervalSeconds)
}

// Validate checks if all required configuration is present.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.AuthMode == "remote" && c.Environment == "production" {
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required in production")
		}
		if c.SupabaseServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required in production")
		}
	}
	if c.AuthMode == "local" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is local")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
