package config

import (
	"fmt"
	"os"
	"time"

	"github.com/initra/procflow/pkg/database"
	"github.com/initra/procflow/pkg/middleware"
	"github.com/initra/procflow/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvAppEnv             = "PROCFLOW_ENV"
	EnvAppShutdownTimeout = "PROCFLOW_SHUTDOWN_TIMEOUT"
	EnvAppVersion         = "PROCFLOW_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "PROCFLOW_DB_HOST",
	Port:            "PROCFLOW_DB_PORT",
	Name:            "PROCFLOW_DB_NAME",
	User:            "PROCFLOW_DB_USER",
	Password:        "PROCFLOW_DB_PASSWORD",
	SSLMode:         "PROCFLOW_DB_SSL_MODE",
	MaxOpenConns:    "PROCFLOW_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PROCFLOW_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PROCFLOW_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PROCFLOW_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "PROCFLOW_STORAGE_CONTAINER_NAME",
	ConnectionString: "PROCFLOW_STORAGE_CONNECTION_STRING",
}

var authEnv = &middleware.AuthEnv{
	Enabled:  "PROCFLOW_AUTH_ENABLED",
	Issuer:   "PROCFLOW_AUTH_ISSUER",
	ClientID: "PROCFLOW_AUTH_CLIENT_ID",
}

// Config is the root configuration for the procflow service.
type Config struct {
	Server          ServerConfig          `toml:"server"`
	Database        database.Config       `toml:"database"`
	Storage         storage.Config        `toml:"storage"`
	Auth            middleware.AuthConfig `toml:"auth"`
	API             APIConfig             `toml:"api"`
	ShutdownTimeout string                `toml:"shutdown_timeout"`
	Version         string                `toml:"version"`
}

// Env returns the PROCFLOW_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAppEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Auth.Merge(&overlay.Auth)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAppShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAppVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvAppEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
