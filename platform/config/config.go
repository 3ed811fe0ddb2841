// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported record store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides PostgreSQL connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// MongoConfig provides MongoDB connection settings.
type MongoConfig interface {
	GetMongoURI() string
	GetMongoDatabase() string
}

// StoreConfig selects and bounds the record store.
type StoreConfig interface {
	GetStoreDriver() string
	GetStoreTimeout() time.Duration
}

// RedisConfig provides settings for the session revocation list.
type RedisConfig interface {
	GetRedisURL() string
	IsRedisEnabled() bool
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTSecret() string
}

// SessionConfig provides settings needed by the auth service and session cookie.
type SessionConfig interface {
	JWTConfig
	GetSessionTTL() time.Duration
	GetCookieName() string
	GetCookieDomain() string
	GetCookieSecure() bool
	GetCookieSameSite() http.SameSite
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetAuthRateLimitPerMinute() int
	IsDevelopment() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	StoreDriver            string
	StoreTimeout           time.Duration
	DatabaseURL            string
	MongoURI               string
	MongoDatabase          string
	RedisURL               string
	JWTSecret              string
	SessionTTL             time.Duration
	CookieName             string
	CookieDomain           string
	CookieSecure           bool
	CookieSameSite         http.SameSite
	CORSOrigins            []string
	CORSAllowCreds         bool
	AuthRateLimitPerMinute int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// MongoConfig implementation
func (c *Config) GetMongoURI() string      { return c.MongoURI }
func (c *Config) GetMongoDatabase() string { return c.MongoDatabase }

// StoreConfig implementation
func (c *Config) GetStoreDriver() string         { return c.StoreDriver }
func (c *Config) GetStoreTimeout() time.Duration { return c.StoreTimeout }

// RedisConfig implementation
func (c *Config) GetRedisURL() string  { return c.RedisURL }
func (c *Config) IsRedisEnabled() bool { return c.RedisURL != "" }

// JWTConfig implementation
func (c *Config) GetJWTSecret() string { return c.JWTSecret }

// SessionConfig implementation
func (c *Config) GetSessionTTL() time.Duration      { return c.SessionTTL }
func (c *Config) GetCookieName() string             { return c.CookieName }
func (c *Config) GetCookieDomain() string           { return c.CookieDomain }
func (c *Config) GetCookieSecure() bool             { return c.CookieSecure }
func (c *Config) GetCookieSameSite() http.SameSite { return c.CookieSameSite }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string           { return c.HTTPAddr }
func (c *Config) GetCORSOrigins() []string      { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool       { return c.CORSAllowCreds }
func (c *Config) GetAuthRateLimitPerMinute() int { return c.AuthRateLimitPerMinute }
func (c *Config) IsDevelopment() bool           { return strings.EqualFold(c.Env, "development") }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "development")

	cookieSecure := strings.EqualFold(getEnv("COOKIE_SECURE", ""), "true")
	if getEnv("COOKIE_SECURE", "") == "" {
		cookieSecure = strings.EqualFold(env, "production")
	}

	cfg := &Config{
		Env:                    env,
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		StoreDriver:            strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		StoreTimeout:           mustDuration(getEnv("STORE_TIMEOUT", "10s")),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		MongoURI:               getEnv("MONGODB_URI", ""),
		MongoDatabase:          getEnv("MONGODB_DATABASE", "lead_management"),
		RedisURL:               getEnv("REDIS_URL", ""),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		SessionTTL:             mustDuration(getEnv("JWT_TTL", "24h")),
		CookieName:             getEnv("COOKIE_NAME", "token"),
		CookieDomain:           getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:           cookieSecure,
		CookieSameSite:         parseSameSite(getEnv("COOKIE_SAMESITE", "Lax")),
		CORSOrigins:            splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AuthRateLimitPerMinute: mustInt(getEnv("AUTH_RATE_LIMIT_PER_MINUTE", "20")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is %s", StoreDriverPostgres)
		}
	case StoreDriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_DRIVER is %s", StoreDriverMongo)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be a positive duration")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be a positive duration")
	}
	if containsWildcard(c.CORSOrigins) && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ORIGINS contains *")
	}
	if c.CookieSameSite == http.SameSiteNoneMode && !c.CookieSecure {
		return fmt.Errorf("COOKIE_SAMESITE=None requires COOKIE_SECURE=true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}
