package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultReadTimeout is the default HTTP server read timeout
	DefaultReadTimeout = 10 * time.Second
	// DefaultWriteTimeout is the default HTTP server write timeout
	DefaultWriteTimeout = 30 * time.Second
	// DefaultWebhookTimeout is the default timeout for audit webhook calls
	DefaultWebhookTimeout = 10 * time.Second
	// DefaultExchangeTimeout is the default timeout for OAuth code exchange
	DefaultExchangeTimeout = 15 * time.Second
	// DefaultPendingTTL is how long a pending OAuth handle is kept
	DefaultPendingTTL = 15 * time.Minute
	// DefaultServerAddress is the default listen address
	DefaultServerAddress = ":8090"
)

type Config struct {
	Debug     bool            `yaml:"debug"` // Controls log level and format
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	OAuth     OAuthConfig     `yaml:"oauth"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Platforms PlatformsConfig `yaml:"platforms"`
}

type ServerConfig struct {
	Address      string        `yaml:"address"`       // e.g., ":8090"
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"` // Default: 30s
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// OAuthConfig configures the redirect-based connection path.
// AuthorizeURLs maps platform id to the external authorization page the
// browser is sent to; ExchangeURL is the trusted intermediary that swaps an
// authorization code for account details.
type OAuthConfig struct {
	ExchangeURL     string            `yaml:"exchange_url"`
	ExchangeTimeout time.Duration     `yaml:"exchange_timeout"`
	AuthorizeURLs   map[string]string `yaml:"authorize_urls"`
	PendingTTL      time.Duration     `yaml:"pending_ttl"`
}

// WebhookConfig configures the best-effort audit webhook.
type WebhookConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// PlatformsConfig holds the pre-provisioned credentials used for read-only
// identity verification. These are service-level tokens, not user tokens.
type PlatformsConfig struct {
	TwitterBearerToken   string `yaml:"twitter_bearer_token"`
	LinkedInAccessToken  string `yaml:"linkedin_access_token"`
	FacebookAccessToken  string `yaml:"facebook_access_token"`
	InstagramAccessToken string `yaml:"instagram_access_token"`
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis.addr is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.OAuth.ExchangeURL == "" {
		return errors.New("oauth.exchange_url is required")
	}
	return nil
}

// setDefaults sets default values for configuration fields
func setDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = DefaultServerAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Webhook.Timeout == 0 {
		cfg.Webhook.Timeout = DefaultWebhookTimeout
	}
	if cfg.OAuth.ExchangeTimeout == 0 {
		cfg.OAuth.ExchangeTimeout = DefaultExchangeTimeout
	}
	if cfg.OAuth.PendingTTL == 0 {
		cfg.OAuth.PendingTTL = DefaultPendingTTL
	}
	if cfg.Webhook.URL == "" {
		// The exchange endpoint doubles as the audit sink unless overridden
		cfg.Webhook.URL = cfg.OAuth.ExchangeURL
	}
}

// overrideWithEnvVars overrides configuration with environment variables
func overrideWithEnvVars(cfg *Config) {
	if v := os.Getenv("APP_DEBUG"); v != "" {
		cfg.Debug = parseBool(v)
	}
	if v := os.Getenv("SOCIALLINK_PORT"); v != "" {
		cfg.Server.Address = ":" + v
	}
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		cfg.Database.Port = v
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		cfg.Database.DBName = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("OAUTH_EXCHANGE_URL"); v != "" {
		cfg.OAuth.ExchangeURL = v
	}
	if v := os.Getenv("AUDIT_WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("TWITTER_BEARER_TOKEN"); v != "" {
		cfg.Platforms.TwitterBearerToken = v
	}
	if v := os.Getenv("LINKEDIN_ACCESS_TOKEN"); v != "" {
		cfg.Platforms.LinkedInAccessToken = v
	}
	if v := os.Getenv("FACEBOOK_ACCESS_TOKEN"); v != "" {
		cfg.Platforms.FacebookAccessToken = v
	}
	if v := os.Getenv("INSTAGRAM_ACCESS_TOKEN"); v != "" {
		cfg.Platforms.InstagramAccessToken = v
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	overrideWithEnvVars(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// parseBool parses a string value as a boolean.
// Returns true for "true", "1", "yes" (case-insensitive), false otherwise.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}
