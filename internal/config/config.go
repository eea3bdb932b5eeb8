package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Aggregator  AggregatorConfig  `mapstructure:"aggregator"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	Obfuscation ObfuscationConfig `mapstructure:"obfuscation"`
	Auth        AuthConfig        `mapstructure:"auth"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects and configures the catalog store
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	Path   string `mapstructure:"path"`   // sqlite file
	DSN    string `mapstructure:"dsn"`    // postgres connection string
}

// AggregatorConfig holds PSCA aggregator client configuration
type AggregatorConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Enabled      bool          `mapstructure:"enabled"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"` // requests per second
	Burst        int           `mapstructure:"burst"`
	DefaultLimit int           `mapstructure:"default_limit"`
}

// MarketplaceConfig tunes the listing pipeline
type MarketplaceConfig struct {
	Workers  int           `mapstructure:"workers"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// ObfuscationConfig controls public ID derivation
type ObfuscationConfig struct {
	// IDSecret switches public IDs to keyed HMAC hashing when set
	IDSecret string `mapstructure:"id_secret"`
}

// AuthConfig holds API authentication secrets
type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	AdminAPIKey string `mapstructure:"admin_api_key"`
}

// CORSConfig holds cross-origin settings for the browser frontend
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds local catalog settings
type CatalogConfig struct {
	SeedFile string `mapstructure:"seed_file"` // applied at start-up when set
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Config file is optional
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Read from environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind specific environment variables
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration primarily from environment variables
func LoadFromEnv() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from .env file if it exists
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	// Read from environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind specific environment variables
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	// Database defaults
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "./data/marketplace.db")

	// Aggregator defaults
	v.SetDefault("aggregator.enabled", true)
	v.SetDefault("aggregator.timeout", 5*time.Second)
	v.SetDefault("aggregator.rate_limit", 5.0)
	v.SetDefault("aggregator.burst", 10)
	v.SetDefault("aggregator.default_limit", 100)

	// Marketplace defaults
	v.SetDefault("marketplace.workers", 8)
	v.SetDefault("marketplace.cache_ttl", time.Duration(0))

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	// Helper to bind and log errors (BindEnv errors are non-fatal but should be logged)
	bindEnv := func(key string, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			slog.Warn("failed to bind environment variable",
				slog.String("key", key),
				slog.String("env_var", envVar),
				slog.String("error", err.Error()))
		}
	}

	// Aggregator
	bindEnv("aggregator.base_url", "PSCA_BASE_URL")
	bindEnv("aggregator.api_key", "PSCA_API_KEY")
	bindEnv("aggregator.enabled", "PSCA_ENABLED")

	// Database
	bindEnv("database.driver", "DATABASE_DRIVER")
	bindEnv("database.path", "DATABASE_PATH")
	bindEnv("database.dsn", "DATABASE_URL")

	// Server config
	bindEnv("server.host", "SERVER_HOST")
	bindEnv("server.port", "SERVER_PORT")

	// Secrets
	bindEnv("obfuscation.id_secret", "PUBLIC_ID_SECRET")
	bindEnv("auth.jwt_secret", "JWT_SECRET")
	bindEnv("auth.admin_api_key", "ADMIN_API_KEY")

	// CORS and catalog
	bindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")
	bindEnv("catalog.seed_file", "CATALOG_SEED_FILE")

	// Logging
	bindEnv("logging.level", "LOG_LEVEL")
	bindEnv("logging.format", "LOG_FORMAT")
}

// AggregatorActive reports whether live offers should be fetched
func (c *Config) AggregatorActive() bool {
	return c.Aggregator.Enabled && c.Aggregator.BaseURL != ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("DATABASE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q (want %q or %q)", c.Database.Driver, DriverSQLite, DriverPostgres)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}

	if c.Aggregator.Enabled && c.Aggregator.BaseURL != "" {
		if !strings.HasPrefix(c.Aggregator.BaseURL, "http://") && !strings.HasPrefix(c.Aggregator.BaseURL, "https://") {
			return fmt.Errorf("PSCA_BASE_URL must be an http(s) URL")
		}
		if c.Aggregator.Timeout <= 0 {
			return fmt.Errorf("aggregator timeout must be positive")
		}
	}

	if c.Marketplace.Workers < 1 {
		return fmt.Errorf("marketplace workers must be at least 1")
	}

	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	return nil
}
