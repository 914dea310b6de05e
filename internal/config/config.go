// Package config provides configuration loading for rmwiki.
//
// Configuration is assembled from defaults, an optional YAML or TOML file,
// and RMWIKI_* environment variables (highest precedence).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds the complete rmwiki configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	API           APIConfig           `koanf:"api"`
	Cache         CacheConfig         `koanf:"cache"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"http_host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// APIConfig holds settings for the remote character API.
type APIConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
	// RateLimit is requests per second. Zero with a non-zero Burst disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`
	UserAgent string  `koanf:"user_agent"`
	// FanOut bounds concurrent requests when loading favourites.
	FanOut int `koanf:"fan_out"`
}

// CacheConfig holds response cache configuration. A zero TTL disables caching.
type CacheConfig struct {
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// ObservabilityConfig holds logging and OpenTelemetry configuration.
type ObservabilityConfig struct {
	LogLevel        string `koanf:"log_level"`
	LogFormat       string `koanf:"log_format"`
	EnableTelemetry bool   `koanf:"enable_telemetry"`
	ServiceName     string `koanf:"service_name"`
	OTLPEndpoint    string `koanf:"otlp_endpoint"`
	OTLPProtocol    string `koanf:"otlp_protocol"`
	OTLPInsecure    bool   `koanf:"otlp_insecure"`
}

// Default values.
const (
	DefaultHost       = "localhost"
	DefaultPort       = 9090
	DefaultBaseURL    = "https://rickandmortyapi.com/api"
	DefaultUserAgent  = "rmwiki/dev"
	DefaultMaxEntries = 256
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 10 * time.Second
	}
	if cfg.API.RateLimit == 0 && cfg.API.Burst == 0 {
		cfg.API.RateLimit = 5
		cfg.API.Burst = 5
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = DefaultUserAgent
	}
	if cfg.API.FanOut == 0 {
		cfg.API.FanOut = 4
	}

	if cfg.Cache.TTL > 0 && cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultMaxEntries
	}

	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	if cfg.Observability.LogFormat == "" {
		cfg.Observability.LogFormat = "json"
	}
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "rmwiki"
	}
	if cfg.Observability.OTLPEndpoint == "" {
		cfg.Observability.OTLPEndpoint = "localhost:4317"
	}
	if cfg.Observability.OTLPProtocol == "" {
		cfg.Observability.OTLPProtocol = "grpc"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base url must be http or https, got %q", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api base url has no host: %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api timeout must be positive")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api rate limit cannot be negative: %v", c.API.RateLimit)
	}
	if c.API.RateLimit > 0 && c.API.Burst < 1 {
		return fmt.Errorf("api burst must be >= 1 when rate limiting, got %d", c.API.Burst)
	}
	if c.API.FanOut < 1 {
		return fmt.Errorf("api fan_out must be >= 1, got %d", c.API.FanOut)
	}

	if c.Cache.TTL < 0 {
		return errors.New("cache ttl cannot be negative")
	}
	if c.Cache.TTL > 0 && c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache max_entries must be >= 1 when caching, got %d", c.Cache.MaxEntries)
	}

	if c.Observability.LogFormat != "json" && c.Observability.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got %q", c.Observability.LogFormat)
	}
	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	return nil
}
