// Package config loads the settings of the streaming proxy.
//
// Values are resolved in this order, later sources winning:
//
//  1. built-in defaults
//  2. a YAML file (optional)
//  3. a .env file (optional)
//  4. BLITZR_* environment variables
//
// Keys are snake_case; the environment variable of "rate_limit" is
// BLITZR_RATE_LIMIT.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Sternrassler/blitzr-client/internal/validation"
	"github.com/Sternrassler/blitzr-client/pkg/client"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BLITZR"

// ProxyConfig configures cmd/blitzr-proxy.
type ProxyConfig struct {
	Port string `mapstructure:"port" validate:"required,numeric"`

	APIKey         string        `mapstructure:"api_key" validate:"required"`
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	UserAgent      string        `mapstructure:"user_agent" validate:"required"`
	RateLimit      float64       `mapstructure:"rate_limit" validate:"gte=0"`
	Burst          int           `mapstructure:"burst" validate:"gte=0"`
	QuotaThreshold int           `mapstructure:"quota_threshold" validate:"gte=0"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries     int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// RedisAddr enables the response cache and shared quota. Empty disables both.
	RedisAddr     string `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`

	// BatchSize is the page size when a request gives none.
	BatchSize int `mapstructure:"batch_size" validate:"gt=0,lte=100"`
	// MaxItems caps the items streamed by one response.
	MaxItems int `mapstructure:"max_items" validate:"gt=0"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`

	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogPretty bool   `mapstructure:"log_pretty"`
}

var defaults = map[string]any{
	"port":             "8080",
	"base_url":         client.DefaultBaseURL,
	"user_agent":       "blitzr-proxy/1.0",
	"rate_limit":       10.0,
	"burst":            10,
	"quota_threshold":  5,
	"timeout":          "30s",
	"max_retries":      3,
	"api_key":          "",
	"redis_addr":       "",
	"redis_password":   "",
	"redis_db":         0,
	"batch_size":       25,
	"max_items":        1000,
	"shutdown_timeout": "15s",
	"log_level":        "info",
	"log_pretty":       false,
}

type loadOptions struct {
	configFile string
	envFile    string
}

// Option configures Load.
type Option func(*loadOptions)

// WithConfigFile reads a YAML file. A missing file is an error.
func WithConfigFile(path string) Option {
	return func(o *loadOptions) { o.configFile = path }
}

// WithEnvFile reads a .env file. A missing file is ignored.
func WithEnvFile(path string) Option {
	return func(o *loadOptions) { o.envFile = path }
}

// Load resolves and validates the proxy configuration.
func Load(opts ...Option) (*ProxyConfig, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", o.configFile, err)
		}
	}

	if o.envFile != "" {
		if err := applyEnvFile(v, o.envFile); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var cfg ProxyConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvFile copies BLITZR_* entries of a .env file into v. Variables
// already present in the environment take precedence and are left to
// AutomaticEnv.
func applyEnvFile(v *viper.Viper, path string) error {
	entries, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read env file %s: %w", path, err)
	}

	prefix := EnvPrefix + "_"
	for name, value := range entries {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		v.Set(strings.ToLower(strings.TrimPrefix(name, prefix)), value)
	}
	return nil
}

// ClientConfig builds the transport configuration. redisClient may be nil.
func (c *ProxyConfig) ClientConfig(redisClient *redis.Client) client.Config {
	cfg := client.DefaultConfig(c.APIKey)
	cfg.BaseURL = c.BaseURL
	cfg.UserAgent = c.UserAgent
	cfg.RateLimit = c.RateLimit
	cfg.Burst = c.Burst
	cfg.QuotaThreshold = c.QuotaThreshold
	cfg.Timeout = c.Timeout
	cfg.MaxRetries = c.MaxRetries
	cfg.Redis = redisClient
	return cfg
}

// RedisOptions returns the connection options, or nil without RedisAddr.
func (c *ProxyConfig) RedisOptions() *redis.Options {
	if c.RedisAddr == "" {
		return nil
	}
	return &redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
