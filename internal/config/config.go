// Package config loads facet settings from defaults, an optional YAML file and
// FACET_* environment variables, in that order of precedence.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/facet/pkg/domain"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config is the full runtime configuration.
type Config struct {
	Port     int    `yaml:"port" env:"FACET_PORT"`
	LogLevel string `yaml:"log_level" env:"FACET_LOG_LEVEL"`

	Store   StoreConfig   `yaml:"store"`
	Cookie  CookieConfig  `yaml:"cookie"`
	Session SessionConfig `yaml:"session"`
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Driver string      `yaml:"driver" env:"FACET_STORE_DRIVER"`
	Dir    string      `yaml:"dir" env:"FACET_STORE_DIR"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig holds the Redis store and lock settings.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"FACET_REDIS_ADDR"`
	Password string        `yaml:"password" env:"FACET_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"FACET_REDIS_DB"`
	Prefix   string        `yaml:"prefix" env:"FACET_REDIS_PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"FACET_REDIS_TTL"`
}

// CookieConfig holds the session cookie attributes.
type CookieConfig struct {
	Name           string        `yaml:"name" env:"FACET_COOKIE_NAME"`
	Path           string        `yaml:"path" env:"FACET_COOKIE_PATH"`
	Domain         string        `yaml:"domain" env:"FACET_COOKIE_DOMAIN"`
	Lifetime       time.Duration `yaml:"lifetime" env:"FACET_COOKIE_LIFETIME"`
	Secure         bool          `yaml:"secure" env:"FACET_COOKIE_SECURE"`
	CrossSubdomain bool          `yaml:"cross_subdomain" env:"FACET_COOKIE_CROSS_SUBDOMAIN"`
}

// SessionConfig holds facade and locking settings.
type SessionConfig struct {
	Prefix        string        `yaml:"prefix" env:"FACET_SESSION_PREFIX"`
	LockTTL       time.Duration `yaml:"lock_ttl" env:"FACET_SESSION_LOCK_TTL"`
	EncryptionKey string        `yaml:"encryption_key" env:"FACET_SESSION_ENCRYPTION_KEY"` // base64, 32 bytes
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:     8080,
		LogLevel: "info",
		Store: StoreConfig{
			Driver: DriverMemory,
			Dir:    ".facet/sessions",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "facet:session:",
			},
		},
		Cookie: CookieConfig{
			Name: domain.DefaultCookieName,
			Path: "/",
		},
		Session: SessionConfig{
			Prefix:  domain.DefaultPrefix,
			LockTTL: 30 * time.Second,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path is
// empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv overlays environment variables onto target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		return fmt.Errorf("unknown store driver %q (want memory, file or redis)", c.Store.Driver)
	}
	if c.Cookie.Name == "" {
		return fmt.Errorf("cookie name must not be empty")
	}
	if _, err := c.EncryptionKey(); err != nil {
		return err
	}
	return nil
}

// EncryptionKey decodes the at-rest encryption key. It returns nil when none is set.
func (c *Config) EncryptionKey() ([]byte, error) {
	if c.Session.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.Session.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid encryption key: got %d bytes, want 32", len(key))
	}
	return key, nil
}

// CookieScope returns the configured initial cookie scope.
func (c *Config) CookieScope() domain.CookieScope {
	return domain.CookieScope{
		Lifetime: c.Cookie.Lifetime,
		Path:     c.Cookie.Path,
		Domain:   c.Cookie.Domain,
	}
}
