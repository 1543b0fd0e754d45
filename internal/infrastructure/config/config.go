// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	lockBackend := cfg.Locking.Backend
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Locking       LockingConfig       `yaml:"locking"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	Driver       string `yaml:"driver"`        // "sqlite3" (default) or "mysql"
	DatabasePath string `yaml:"database_path"` // sqlite3 only
	DSN          string `yaml:"dsn"`           // mysql only
}

// LockingConfig selects how recalculations are serialized per session
type LockingConfig struct {
	Backend string      `yaml:"backend"` // "local" (default) or "redis"
	TTL     string      `yaml:"ttl"`     // lock lease, e.g. "30s"
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${LEDGER_MYSQL_DSN})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("LEDGER_PORT", 8080),
			AllowedOrigins: getEnvList("LEDGER_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Storage: StorageConfig{
			Driver:       getEnv("LEDGER_DB_DRIVER", "sqlite3"),
			DatabasePath: getEnv("LEDGER_DB_PATH", "resale_ledger.db"),
			DSN:          os.Getenv("LEDGER_MYSQL_DSN"),
		},
		Locking: LockingConfig{
			Backend: getEnv("LEDGER_LOCK_BACKEND", "local"),
			TTL:     getEnv("LEDGER_LOCK_TTL", "30s"),
			Redis: RedisConfig{
				Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
				Password: os.Getenv("REDIS_PASSWORD"),
				DB:       getEnvInt("REDIS_DB", 0),
			},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite3"
	}
	if c.Storage.Driver == "sqlite3" && c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "resale_ledger.db"
	}
	if c.Locking.Backend == "" {
		c.Locking.Backend = "local"
	}
	if c.Locking.TTL == "" {
		c.Locking.TTL = "30s"
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// Validate rejects unknown drivers, lock backends and malformed durations.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite3":
	case "mysql":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Locking.Backend {
	case "local":
	case "redis":
		if c.Locking.Redis.Addr == "" {
			return fmt.Errorf("locking.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown locking backend %q", c.Locking.Backend)
	}

	if _, err := c.Locking.LockTTL(); err != nil {
		return err
	}
	return nil
}

// LockTTL parses the lock lease duration.
func (l LockingConfig) LockTTL() (time.Duration, error) {
	if l.TTL == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(l.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid locking.ttl %q: %w", l.TTL, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("locking.ttl must be positive, got %s", d)
	}
	return d, nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvList splits a comma-separated environment variable
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
