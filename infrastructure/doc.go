// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package. These implementations handle external concerns
// such as caching, HTTP communication, logging and URL rewriting.
//
// The infrastructure package is organized by technical concern:
//
// - cache/memory: In-memory cache on go-cache
// - cache/redis: Redis-based cache implementation
// - cache/sqlite: SQLite cache that keeps reading progress across restarts
// - http/standard: Standard library HTTP client with retry logic
// - logger/structured: logrus JSON logger with optional lumberjack file rotation
// - urlresolver: Resolves feed hrefs and forwards remote URLs through a proxy
//
// # Cache Implementations
//
// A ttl of zero stores a value without expiry:
//
//	cache := memory.NewMemoryCache()
//	err := cache.Set(ctx, "key", []byte("value"), 0)
//	value, err := cache.Get(ctx, "key")
//
// Redis Cache Example:
//
//	cache, err := redis.NewRedisCache(cfg.Cache.Redis)
//
// # HTTP Client
//
// The HTTP client retries transient failures:
//
//	client := standard.NewStandardHTTPClient(30 * time.Second)
//	resp, err := client.Get(ctx, "https://books.example.com/opds")
//	if err != nil {
//	    // Handle error
//	}
//	defer resp.Body().Close()
//
// # Logger
//
//	logger := structured.NewLogger(cfg.Log)
//	logger.Info("Catalog refreshed", map[string]interface{}{
//	    "books": 42,
//	})
package infrastructure
