// Package config provides configuration management for weavereplace.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/solatis/weavereplace/internal/core/logging"
	"github.com/solatis/weavereplace/internal/template"
)

// Config is the complete runtime configuration.
type Config struct {
	Placeholders template.Delimiters
	Template     TemplateConfig
	Server       ServerConfig
	Metrics      MetricsConfig
	Log          LogConfig
	Database     DatabaseConfig
}

// TemplateConfig holds resolver settings.
type TemplateConfig struct {
	MaxPasses int
}

// ServerConfig holds configuration for the gRPC Weave service.
type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	MaxBatchSize   int
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MetricsConfig holds the Prometheus listener address. Empty disables it.
type MetricsConfig struct {
	Addr string
}

// LogConfig selects level and encoder.
type LogConfig struct {
	Level  string
	Format string
}

// DatabaseConfig holds the storage DSN (sqlite://path or postgres://...).
type DatabaseConfig struct {
	URL string
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Placeholders: template.DefaultDelimiters(),
		Template: TemplateConfig{
			MaxPasses: template.DefaultMaxPasses,
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           50051,
			RequestTimeout: 30 * time.Second,
			MaxBatchSize:   1000,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatJSON,
		},
		Database: DatabaseConfig{
			URL: "sqlite://./weavereplace.db",
		},
	}
}

// Validate checks port range, positive limits, delimiters and log settings.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.Server.RequestTimeout)
	}
	if c.Server.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive, got %d", c.Server.MaxBatchSize)
	}
	if c.Template.MaxPasses <= 0 {
		return fmt.Errorf("max_passes must be positive, got %d", c.Template.MaxPasses)
	}
	if err := c.Placeholders.Validate(); err != nil {
		return fmt.Errorf("placeholders: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != logging.FormatJSON && c.Log.Format != logging.FormatText {
		return fmt.Errorf("log format must be %q or %q, got %q", logging.FormatJSON, logging.FormatText, c.Log.Format)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database url must not be empty")
	}
	return nil
}

// hasPassword reports whether dsn embeds a password in its userinfo.
func hasPassword(dsn string) bool {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return false
	}
	_, ok := u.User.Password()
	return ok
}
