// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/ocms-pages/internal/scheduler"
	"github.com/olegiv/ocms-pages/internal/util"
)

// knownWeakSecrets contains example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me",
	"changeme",
	"secret",
	"webhook-secret",
}

// MinWebhookSecretLength is the minimum webhook secret length in production.
const MinWebhookSecretLength = 16

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath         string        `env:"OCMS_DB_PATH" envDefault:"./data/pages.db"`
	ServerHost     string        `env:"OCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort     int           `env:"OCMS_SERVER_PORT" envDefault:"8080"`
	Env            string        `env:"OCMS_ENV" envDefault:"development"`
	LogLevel       string        `env:"OCMS_LOG_LEVEL" envDefault:"info"`
	APIBasePath    string        `env:"OCMS_API_BASE_PATH" envDefault:"/api/v1"`
	RequestTimeout time.Duration `env:"OCMS_REQUEST_TIMEOUT" envDefault:"30s"`

	// Rate limiting per client IP; RPS 0 disables it
	RateLimitRPS   float64 `env:"OCMS_RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"OCMS_RATE_LIMIT_BURST" envDefault:"40"`

	// Cache configuration
	RedisURL     string        `env:"OCMS_REDIS_URL"`                              // Optional Redis URL for shared caching
	CachePrefix  string        `env:"OCMS_CACHE_PREFIX" envDefault:"ocms-pages:"` // Redis key prefix
	CacheTTL     time.Duration `env:"OCMS_CACHE_TTL" envDefault:"10m"`
	CacheMaxSize int           `env:"OCMS_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Webhooks
	WebhookURLs         []string `env:"OCMS_WEBHOOK_URLS" envSeparator:","`
	WebhookSecret       string   `env:"OCMS_WEBHOOK_SECRET"`
	WebhookWorkers      int      `env:"OCMS_WEBHOOK_WORKERS" envDefault:"3"`
	WebhookAllowPrivate bool     `env:"OCMS_WEBHOOK_ALLOW_PRIVATE" envDefault:"false"`

	// Event log retention
	EventRetentionDays int    `env:"OCMS_EVENT_RETENTION_DAYS" envDefault:"90"`
	RetentionSchedule  string `env:"OCMS_RETENTION_SCHEDULE" envDefault:"0 3 * * *"`

	MetricsEnabled bool `env:"OCMS_METRICS_ENABLED" envDefault:"true"`
	DoSeed         bool `env:"OCMS_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// WebhooksEnabled returns true if at least one webhook endpoint is configured.
func (c Config) WebhooksEnabled() bool {
	return len(c.WebhookURLs) > 0
}

// SlogLevel maps LogLevel to a slog.Level. Load has already validated it.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(context.Background()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(ctx context.Context) error {
	switch c.Env {
	case "development", "production", "test":
	default:
		return fmt.Errorf("OCMS_ENV must be development, production or test, got %q", c.Env)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("OCMS_LOG_LEVEL: %w", err)
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("OCMS_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}

	if !strings.HasPrefix(c.APIBasePath, "/") {
		return fmt.Errorf("OCMS_API_BASE_PATH must start with /, got %q", c.APIBasePath)
	}
	c.APIBasePath = strings.TrimRight(c.APIBasePath, "/")
	if c.APIBasePath == "" {
		return fmt.Errorf("OCMS_API_BASE_PATH must not be the root path")
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("OCMS_REQUEST_TIMEOUT must not be negative")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("OCMS_RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("OCMS_RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("OCMS_CACHE_TTL must be positive")
	}
	if c.CacheMaxSize < 0 {
		return fmt.Errorf("OCMS_CACHE_MAX_SIZE must not be negative")
	}

	if c.WebhookWorkers < 1 {
		return fmt.Errorf("OCMS_WEBHOOK_WORKERS must be at least 1, got %d", c.WebhookWorkers)
	}
	urls := c.WebhookURLs[:0]
	for _, u := range c.WebhookURLs {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if err := util.ValidateWebhookURL(ctx, u, c.WebhookAllowPrivate, nil); err != nil {
			return fmt.Errorf("OCMS_WEBHOOK_URLS: %q: %w", u, err)
		}
		urls = append(urls, u)
	}
	c.WebhookURLs = urls
	if err := c.validateWebhookSecret(); err != nil {
		return err
	}

	if c.EventRetentionDays < 1 {
		return fmt.Errorf("OCMS_EVENT_RETENTION_DAYS must be at least 1, got %d", c.EventRetentionDays)
	}
	if err := scheduler.ValidateSchedule(c.RetentionSchedule); err != nil {
		return fmt.Errorf("OCMS_RETENTION_SCHEDULE: %w", err)
	}

	return nil
}

// validateWebhookSecret requires a strong secret for production webhooks and
// warns about unsigned deliveries elsewhere.
func (c *Config) validateWebhookSecret() error {
	if !c.WebhooksEnabled() {
		return nil
	}
	if c.WebhookSecret == "" {
		if c.Env == "production" {
			return fmt.Errorf("OCMS_WEBHOOK_SECRET is required when webhooks are enabled in production")
		}
		slog.Warn("OCMS_WEBHOOK_SECRET is empty; webhook deliveries will be unsigned")
		return nil
	}
	if c.Env != "production" {
		return nil
	}

	if len(c.WebhookSecret) < MinWebhookSecretLength {
		return fmt.Errorf("OCMS_WEBHOOK_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinWebhookSecretLength, len(c.WebhookSecret))
	}
	for _, weak := range knownWeakSecrets {
		if strings.EqualFold(c.WebhookSecret, weak) {
			return fmt.Errorf("OCMS_WEBHOOK_SECRET is a known default value and must not be used")
		}
	}
	if !hasMinimumEntropy(c.WebhookSecret) {
		slog.Warn("OCMS_WEBHOOK_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
