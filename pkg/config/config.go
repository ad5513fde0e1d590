// Package config loads service settings from environment variables,
// optionally layered over a YAML file named by CONFIG_FILE.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`
	HTTPPort int    `yaml:"http_port"`

	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`

	CatalogBaseURL  string        `yaml:"catalog_base_url"`
	CatalogTimeout  time.Duration `yaml:"catalog_timeout"`
	CatalogCacheTTL time.Duration `yaml:"catalog_cache_ttl"`

	SessionMaxAge          time.Duration `yaml:"session_max_age"`
	SessionCleanupInterval time.Duration `yaml:"session_cleanup_interval"`

	StoreCurrency string `yaml:"store_currency"`
}

func defaults() Config {
	return Config{
		AppEnv:                 "dev",
		LogLevel:               "info",
		HTTPPort:               8080,
		CatalogBaseURL:         "https://fakestoreapi.com",
		CatalogTimeout:         5 * time.Second,
		CatalogCacheTTL:        10 * time.Minute,
		SessionMaxAge:          30 * 24 * time.Hour,
		SessionCleanupInterval: time.Hour,
		StoreCurrency:          "USD",
	}
}

// Load builds the config: defaults, then the YAML file in CONFIG_FILE if set, then env.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.CatalogBaseURL = getEnv("CATALOG_BASE_URL", cfg.CatalogBaseURL)
	cfg.CatalogTimeout = getEnvDuration("CATALOG_TIMEOUT", cfg.CatalogTimeout)
	cfg.CatalogCacheTTL = getEnvDuration("CATALOG_CACHE_TTL", cfg.CatalogCacheTTL)
	cfg.SessionMaxAge = getEnvDuration("SESSION_MAX_AGE", cfg.SessionMaxAge)
	cfg.SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", cfg.SessionCleanupInterval)
	cfg.StoreCurrency = getEnv("STORE_CURRENCY", cfg.StoreCurrency)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Production() bool {
	return c.AppEnv == "production"
}

// Currency returns the parsed store currency. Load has already validated it.
func (c Config) Currency() currency.Unit {
	return currency.MustParseISO(c.StoreCurrency)
}

func (c Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http port out of range: %d", c.HTTPPort)
	}
	if _, err := currency.ParseISO(c.StoreCurrency); err != nil {
		return fmt.Errorf("store currency[%s] is not valid: %w", c.StoreCurrency, err)
	}
	if c.Production() && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required in production")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be positive: %s", c.SessionMaxAge)
	}
	if c.SessionCleanupInterval <= 0 {
		return fmt.Errorf("session cleanup interval must be positive: %s", c.SessionCleanupInterval)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("os.ReadFile: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("yaml.Unmarshal[%s]: %w", path, err)
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}

	return d
}
