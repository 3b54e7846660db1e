// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Tenant resolution
	// DefaultTenantID is returned when no claim, profile, or legacy
	// mapping yields a tenant. Resolution never fails outward.
	DefaultTenantID string `env:"DEFAULT_TENANT_ID" envDefault:"tenant-a"`

	// LegacyTenantMap is a comma-separated list of email=tenant pairs,
	// a migration bridge for accounts created before tenant claims were
	// issued. Example: "a@x.com=tenant-a,b@x.com=tenant-b".
	LegacyTenantMap string `env:"LEGACY_TENANT_MAP" envDefault:"sunset@propertyflow.com=tenant-a,ocean@propertyflow.com=tenant-b,candidate@propertyflow.com=tenant-a"`

	// Revenue cache
	RevenueCacheTTL time.Duration `env:"REVENUE_CACHE_TTL" envDefault:"5m"`

	// Timeout applied to individual profile/reservation store calls.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`

	// Rate limiting (per tenant, token bucket)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPM     int  `env:"RATE_LIMIT_RPM" envDefault:"300"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"50"`

	// Argon2id hash of the admin API key, PHC string format.
	// Admin endpoints are disabled when empty.
	AdminAPIKeyHash string `env:"ADMIN_API_KEY_HASH" envDefault:""`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ParseLegacyTenantMap parses the email=tenant pairs into a map.
// Malformed pairs are rejected rather than skipped: a typo in the
// migration table should fail startup, not silently drop a mapping.
func (c *Config) ParseLegacyTenantMap() (map[string]string, error) {
	mapping := make(map[string]string)
	if c.LegacyTenantMap == "" {
		return mapping, nil
	}

	for _, pair := range strings.Split(c.LegacyTenantMap, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		email, tenant, ok := strings.Cut(pair, "=")
		email = strings.TrimSpace(email)
		tenant = strings.TrimSpace(tenant)
		if !ok || email == "" || tenant == "" {
			return nil, fmt.Errorf("invalid legacy tenant mapping entry %q", pair)
		}

		mapping[email] = tenant
	}

	return mapping, nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
