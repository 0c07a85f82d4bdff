// Package config provides configuration management with hot-reload support.
// Secrets are referenced from the environment with ${VAR} expansion so the
// YAML file can be committed without credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Identity  IdentityConfig  `yaml:"identity"`
	Provider  ProviderConfig  `yaml:"provider"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// StoreConfig contains settings for the question cache store.
// URL is a credential-free postgres URL; the two credential tiers are
// injected per connection. UserCredential is the restricted role used for
// request-scoped reads and writes, ServiceCredential the privileged role
// used only for migrations.
type StoreConfig struct {
	URL               string        `yaml:"url"`
	UserCredential    string        `yaml:"user_credential"`    // "role:password"
	ServiceCredential string        `yaml:"service_credential"` // "role:password"
	MaxOpenConns      int           `yaml:"max_open_conns"`
	MaxIdleConns      int           `yaml:"max_idle_conns"`
	ConnLifetime      time.Duration `yaml:"conn_lifetime"`
}

// IdentityConfig contains settings for bearer token verification.
type IdentityConfig struct {
	// Mode selects the verification strategy: "jwt" validates tokens locally
	// against JWTSecret, "remote" calls the identity provider's user endpoint.
	Mode      string        `yaml:"mode"`
	IssuerURL string        `yaml:"issuer_url"`
	JWTSecret string        `yaml:"jwt_secret"`
	// AnonKey is sent as the apikey header in remote mode.
	AnonKey  string        `yaml:"anon_key"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// ProviderConfig contains settings for the embedding/generation provider.
// APIKey is intentionally not validated at load time: a missing key is a
// per-request fatal error, matching the deployment model where the key may
// be rotated independently of the process.
type ProviderConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	EmbeddingModel string        `yaml:"embedding_model"`
	ChatModel      string        `yaml:"chat_model"`
	Timeout        time.Duration `yaml:"timeout"`
}

// CacheConfig contains cache behavior settings.
type CacheConfig struct {
	SemanticReuse SemanticReuseConfig `yaml:"semantic_reuse"`
}

// SemanticReuseConfig enables linking a cache miss to an already-answered
// entry whose question embedding is close enough to the new one.
type SemanticReuseConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Threshold float64 `yaml:"threshold"`
}

// RateLimitConfig defines per-user rate limiting on the gateway routes.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

// CORSConfig contains cross-origin settings. An empty allowlist with
// Enabled=true means all origins are allowed.
type CORSConfig struct {
	Enabled      bool     `yaml:"enabled"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Store: StoreConfig{
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			ConnLifetime: 5 * time.Minute,
		},
		Identity: IdentityConfig{
			Mode:     "jwt",
			CacheTTL: time.Minute,
		},
		Provider: ProviderConfig{
			BaseURL:        "https://api.openai.com/v1",
			EmbeddingModel: "text-embedding-3-small",
			ChatModel:      "gpt-4o-mini",
			Timeout:        60 * time.Second,
		},
		Cache: CacheConfig{
			SemanticReuse: SemanticReuseConfig{
				Enabled:   false,
				Threshold: 0.95,
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 60,
			Burst:             10,
		},
		CORS: CORSConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadFromFile reads and parses a YAML configuration file.
// Environment variables in the format ${VAR_NAME} are expanded.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors. Provider and identity
// secrets are deliberately excluded: their absence fails the first request
// that needs them, not startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Store.URL == "" {
		return fmt.Errorf("store.url is required")
	}
	if c.Store.UserCredential == "" {
		return fmt.Errorf("store.user_credential is required")
	}

	switch c.Identity.Mode {
	case "jwt", "remote":
	default:
		return fmt.Errorf("identity.mode must be %q or %q, got %q", "jwt", "remote", c.Identity.Mode)
	}
	if c.Identity.Mode == "remote" && c.Identity.IssuerURL == "" {
		return fmt.Errorf("identity.issuer_url is required in remote mode")
	}

	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if c.Provider.EmbeddingModel == "" || c.Provider.ChatModel == "" {
		return fmt.Errorf("provider embedding_model and chat_model are required")
	}

	if c.Cache.SemanticReuse.Enabled {
		t := c.Cache.SemanticReuse.Threshold
		if t <= 0 || t > 1 {
			return fmt.Errorf("cache.semantic_reuse.threshold must be in (0, 1], got %v", t)
		}
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be positive")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}

	return nil
}
