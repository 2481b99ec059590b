// ABOUTME: Configuration management for the application with environment variable support
// ABOUTME: Defines configuration structures for server, cache, catalog and logging settings

package config

import (
	"errors"
	"io/fs"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig

	// Cache contains cache configuration
	Cache CacheConfig

	// Catalog contains OPDS catalog source configuration
	Catalog CatalogConfig

	// Log contains logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string

	// RefreshTimer is the interval in seconds between catalog refreshes
	RefreshTimer int

	// RateLimit is the sustained number of requests per second allowed per client
	RateLimit float64

	// RateBurst is the number of requests a client may burst above RateLimit
	RateBurst int

	// AllowedOrigins lists the CORS origins, "*" allows all
	AllowedOrigins []string

	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is honored
	TrustedProxies []string
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (memory/redis/sqlite)
	Type string

	// Redis contains Redis-specific configuration
	Redis RedisConfig

	// Memory contains in-memory cache configuration
	Memory MemoryConfig

	// SQLite contains SQLite-specific configuration
	SQLite SQLiteConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int

	// KeyPrefix namespaces every key written by this process
	KeyPrefix string
}

// MemoryConfig holds in-memory cache configuration
type MemoryConfig struct {
	// CleanupInterval is how often expired entries are purged, in seconds
	CleanupInterval int
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	// Path is the database file location
	Path string
}

// CatalogConfig describes where the OPDS feed lives and how its links are rewritten
type CatalogConfig struct {
	// FeedURL is the OPDS acquisition feed to ingest
	FeedURL string

	// BaseURL is the origin relative hrefs resolve against. Defaults to the FeedURL origin.
	BaseURL string

	// ProxyURL is prepended to escaped absolute URLs. Empty disables forwarding.
	ProxyURL string

	// FeedCacheTTL is how long the raw feed is cached, in seconds
	FeedCacheTTL int
}

// LogConfig holds logging configuration
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string

	// Format is json or text
	Format string

	// File enables rotating file output when set
	File string

	// MaxSizeMB is the size at which the log file rotates
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept
	MaxBackups int

	// MaxAgeDays is how long rotated files are kept
	MaxAgeDays int
}

// Load reads optional .env files and then the environment.
// Missing env files are ignored; variables already set take precedence.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return LoadFromEnv()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvOrDefault("PORT", "8000"),
			RefreshTimer:   getEnvAsIntOrDefault("REFRESH_TIMER", 3600),
			RateLimit:      getEnvAsFloatOrDefault("RATE_LIMIT", 10),
			RateBurst:      getEnvAsIntOrDefault("RATE_BURST", 20),
			AllowedOrigins: getEnvAsListOrDefault("ALLOWED_ORIGINS", []string{"*"}),
			TrustedProxies: getEnvAsListOrDefault("TRUSTED_PROXIES", nil),
		},
		Cache: CacheConfig{
			Type: getEnvOrDefault("CACHE_TYPE", "memory"),
			Redis: RedisConfig{
				Address:   getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password:  getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:        getEnvAsIntOrDefault("REDIS_DB", 0),
				KeyPrefix: getEnvOrDefault("REDIS_KEY_PREFIX", ""),
			},
			Memory: MemoryConfig{
				CleanupInterval: getEnvAsIntOrDefault("MEMORY_CACHE_CLEANUP", 600),
			},
			SQLite: SQLiteConfig{
				Path: getEnvOrDefault("SQLITE_PATH", "bookshelf.db"),
			},
		},
		Catalog: CatalogConfig{
			FeedURL:      getEnvOrDefault("OPDS_FEED_URL", "http://localhost:8080/opds"),
			BaseURL:      getEnvOrDefault("OPDS_BASE_URL", ""),
			ProxyURL:     getEnvOrDefault("OPDS_PROXY_URL", ""),
			FeedCacheTTL: getEnvAsIntOrDefault("OPDS_CACHE_TTL", 300),
		},
		Log: LogConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
			File:       getEnvOrDefault("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsIntOrDefault("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getEnvAsIntOrDefault("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvAsIntOrDefault("LOG_MAX_AGE_DAYS", 28),
		},
	}

	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = originOf(cfg.Catalog.FeedURL)
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault returns the environment variable as float64 or a default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsListOrDefault splits a comma-separated variable
func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func isAbsoluteURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	if c.Server.RefreshTimer < 1 {
		return errors.New("refresh timer must be at least 1 second")
	}

	if c.Server.RateLimit <= 0 || c.Server.RateBurst < 1 {
		return errors.New("rate limit and burst must be positive")
	}

	for _, proxy := range c.Server.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			return errors.New("trusted proxies must be IP addresses or CIDRs")
		}
	}

	switch c.Cache.Type {
	case "memory", "redis", "sqlite":
	default:
		return errors.New("cache type must be 'memory', 'redis' or 'sqlite'")
	}

	if c.Cache.Type == "redis" && c.Cache.Redis.Address == "" {
		return errors.New("redis address cannot be empty when using redis cache")
	}

	if c.Cache.Type == "sqlite" && c.Cache.SQLite.Path == "" {
		return errors.New("sqlite path cannot be empty when using sqlite cache")
	}

	if !isAbsoluteURL(c.Catalog.FeedURL) {
		return errors.New("catalog feed URL must be an absolute URL")
	}

	if c.Catalog.BaseURL != "" && !isAbsoluteURL(c.Catalog.BaseURL) {
		return errors.New("catalog base URL must be an absolute URL")
	}

	if c.Catalog.ProxyURL != "" && !isAbsoluteURL(c.Catalog.ProxyURL) {
		return errors.New("catalog proxy URL must be an absolute URL")
	}

	if c.Catalog.FeedCacheTTL < 0 {
		return errors.New("feed cache TTL cannot be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.New("log level must be one of debug, info, warn, error")
	}

	return nil
}
