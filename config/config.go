// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PatrickOgilvie/honertia/core/schema"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig       `yaml:"server"`
	Database  DatabaseConfig     `yaml:"database"`
	Auth      AuthConfig         `yaml:"auth"`
	Templates TemplatesConfig    `yaml:"templates"`
	Schema    []CollectionConfig `yaml:"schema"`
	Logging   LoggingConfig      `yaml:"logging"`
	Metrics   MetricsConfig      `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig configures the backing store. An empty path leaves the
// database capability unconfigured; routes without bindings still work.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig configures session authentication. An empty secret leaves the
// auth capability unconfigured.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret,omitempty"`
	Expiration time.Duration `yaml:"expiration"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// TemplatesConfig configures page rendering.
type TemplatesConfig struct {
	Dir string `yaml:"dir"`
}

// CollectionConfig declares one collection bindings may resolve against.
type CollectionConfig struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // default: /metrics
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	HONERTIA_SERVER_HOST     - Server host (default: 0.0.0.0)
//	HONERTIA_SERVER_PORT     - Server port (default: 8080)
//	HONERTIA_DATABASE_PATH   - SQLite database path
//	HONERTIA_AUTH_SECRET     - JWT signing secret
//	HONERTIA_TEMPLATES_DIR   - Page template directory
//	HONERTIA_LOG_LEVEL       - Log level: debug, info, warn, error (default: info)
//	HONERTIA_LOG_FORMAT      - Log format: json or console (default: json)
//	HONERTIA_METRICS_ENABLED - Enable /metrics endpoint
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables when the file does not exist.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// SchemaMap builds the immutable schema map handed to the dispatcher. A
// config with no collections yields an unconfigured map.
func (c *Config) SchemaMap() schema.Map {
	if len(c.Schema) == 0 {
		return schema.Map{}
	}

	collections := make([]schema.Collection, 0, len(c.Schema))
	for _, cc := range c.Schema {
		collections = append(collections, schema.Collection{
			Name:    cc.Name,
			Columns: cc.Columns,
		})
	}
	return schema.NewMap(collections...)
}

// applyEnvOverrides applies HONERTIA_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HONERTIA_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("HONERTIA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HONERTIA_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("HONERTIA_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if v := os.Getenv("HONERTIA_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("HONERTIA_AUTH_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("HONERTIA_AUTH_EXPIRATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.Expiration = d
		}
	}

	if v := os.Getenv("HONERTIA_TEMPLATES_DIR"); v != "" {
		cfg.Templates.Dir = v
	}

	if v := os.Getenv("HONERTIA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HONERTIA_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("HONERTIA_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("HONERTIA_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Auth.Expiration == 0 {
		cfg.Auth.Expiration = 24 * time.Hour
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", cfg.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	seen := map[string]bool{}
	for i, c := range cfg.Schema {
		if c.Name == "" {
			return fmt.Errorf("schema[%d].name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("schema collection %q declared twice", c.Name)
		}
		seen[c.Name] = true
		if len(c.Columns) == 0 {
			return fmt.Errorf("schema collection %q has no columns", c.Name)
		}
	}

	return nil
}
