// ABOUTME: Default implementations for library dependencies
// ABOUTME: Provides factory functions for creating default service implementations

package bookshelf

import (
	"os"
	"time"

	"bookshelf-api/core/interfaces"
	"bookshelf-api/infrastructure/cache/memory"
	"bookshelf-api/infrastructure/cache/sqlite"
	httpInfra "bookshelf-api/infrastructure/http/standard"
	"bookshelf-api/infrastructure/logger/structured"
)

// DefaultHTTPClient creates a default HTTP client with sensible timeouts
func DefaultHTTPClient() interfaces.HTTPClient {
	return httpInfra.NewStandardHTTPClient(30 * time.Second)
}

// DefaultMemoryCache creates a default in-memory cache
func DefaultMemoryCache() interfaces.Cache {
	return memory.NewMemoryCache()
}

// DefaultSQLiteCache creates a SQLite cache at filePath. Reading progress
// stored there survives restarts.
func DefaultSQLiteCache(filePath string) (interfaces.Cache, error) {
	return sqlite.NewSQLiteCache(filePath)
}

// DefaultLogger creates a JSON logger writing info and above to stderr
func DefaultLogger() interfaces.Logger {
	return structured.NewWithWriter(os.Stderr, "info")
}

// QuietLogger creates a logger that discards all output
func QuietLogger() interfaces.Logger {
	return &quietLogger{}
}

// quietLogger is a logger that discards all output
type quietLogger struct{}

func (q *quietLogger) Debug(msg string, fields map[string]interface{}) {}
func (q *quietLogger) Info(msg string, fields map[string]interface{})  {}
func (q *quietLogger) Warn(msg string, fields map[string]interface{})  {}
func (q *quietLogger) Error(msg string, fields map[string]interface{}) {}

// CacheOption represents cache configuration options
type CacheOption struct {
	Type     CacheType
	FilePath string // For SQLite cache
}

// CacheType represents the type of cache
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeSQLite CacheType = "sqlite"
)

// WithCacheOption creates a cache based on the provided options
func WithCacheOption(opt CacheOption) Option {
	return func(c *Config) error {
		switch opt.Type {
		case CacheTypeMemory:
			c.Cache = DefaultMemoryCache()
		case CacheTypeSQLite:
			if opt.FilePath == "" {
				opt.FilePath = "bookshelf_cache.db"
			}
			cache, err := DefaultSQLiteCache(opt.FilePath)
			if err != nil {
				return NewError(ErrorTypeConfiguration, "failed to open SQLite cache").
					WithCause(err).
					WithContext("path", opt.FilePath)
			}
			c.Cache = cache
		default:
			return NewError(ErrorTypeConfiguration, "invalid cache type").
				WithContext("type", string(opt.Type))
		}
		return nil
	}
}

// WithDefaultLogger logs through DefaultLogger instead of discarding output
func WithDefaultLogger() Option {
	return func(c *Config) error {
		c.Logger = DefaultLogger()
		return nil
	}
}

// WithQuietMode configures the client to suppress all log output
func WithQuietMode() Option {
	return func(c *Config) error {
		c.Logger = QuietLogger()
		return nil
	}
}
