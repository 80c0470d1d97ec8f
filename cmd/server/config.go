// Package main provides the Ressurstorg server CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Limits   LimitsConfig   `yaml:"limits"`
	Verbose  bool           `yaml:"-"` // set via CLI flag
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address           string        `yaml:"address"`             // API listen address (default: :8080)
	MetricsAddress    string        `yaml:"metrics_address"`     // Prometheus listen address (default: :9091)
	StreamMaxDuration time.Duration `yaml:"stream_max_duration"` // max SSE stream lifetime (default: 30m)
	TLS               TLSConfig     `yaml:"tls"`
}

// TLSConfig contains TLS settings for the API server.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // database file path (default: data/ressurstorg.db)
}

// AuthConfig contains token and lockout settings.
type AuthConfig struct {
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl"`  // default: 15m
	RefreshTokenTTL  time.Duration `yaml:"refresh_token_ttl"` // default: 168h
	LockoutThreshold int           `yaml:"lockout_threshold"` // failed logins before lockout (default: 5)
	LockoutDuration  time.Duration `yaml:"lockout_duration"`  // default: 30m
	TokenSweep       time.Duration `yaml:"token_sweep"`       // expired token sweep interval (default: 1h)
}

// LimitsConfig contains rate limit settings, per minute.
type LimitsConfig struct {
	PerIP      int `yaml:"per_ip"`      // auth endpoints (default: 10)
	PerCompany int `yaml:"per_company"` // authenticated endpoints (default: 120)
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.MetricsAddress == "" {
		c.Server.MetricsAddress = ":9091"
	}
	if c.Server.StreamMaxDuration == 0 {
		c.Server.StreamMaxDuration = 30 * time.Minute
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/ressurstorg.db"
	}
	if c.Auth.AccessTokenTTL == 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL == 0 {
		c.Auth.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if c.Auth.LockoutThreshold == 0 {
		c.Auth.LockoutThreshold = 5
	}
	if c.Auth.LockoutDuration == 0 {
		c.Auth.LockoutDuration = 30 * time.Minute
	}
	if c.Auth.TokenSweep == 0 {
		c.Auth.TokenSweep = time.Hour
	}
	if c.Limits.PerIP == 0 {
		c.Limits.PerIP = 10
	}
	if c.Limits.PerCompany == 0 {
		c.Limits.PerCompany = 120
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" {
			return fmt.Errorf("server.tls.cert_file is required when TLS is enabled")
		}
		if c.Server.TLS.KeyFile == "" {
			return fmt.Errorf("server.tls.key_file is required when TLS is enabled")
		}
	}
	if c.Auth.LockoutThreshold < 0 {
		return fmt.Errorf("auth.lockout_threshold must not be negative")
	}
	if c.Limits.PerIP < 0 || c.Limits.PerCompany < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	return nil
}
