// ABOUTME: Main entry point for the Bookshelf API server
// ABOUTME: Wires together all components and starts the HTTP server

package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookshelf-api/api"
	"bookshelf-api/api/handlers"
	"bookshelf-api/api/middleware"
	"bookshelf-api/core/catalog"
	"bookshelf-api/core/interfaces"
	"bookshelf-api/core/progress"
	"bookshelf-api/core/services"
	"bookshelf-api/core/workers"
	"bookshelf-api/infrastructure/cache/memory"
	"bookshelf-api/infrastructure/cache/redis"
	"bookshelf-api/infrastructure/cache/sqlite"
	stdhttp "bookshelf-api/infrastructure/http/standard"
	"bookshelf-api/infrastructure/logger/structured"
	"bookshelf-api/infrastructure/urlresolver"
	"bookshelf-api/pkg/config"
	"bookshelf-api/pkg/featureflags"
)

const flagPrefix = "FEATURE_"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := structured.NewLogger(cfg.Log)
	defer logger.Close()

	logger.Info("Starting Bookshelf API", map[string]interface{}{
		"port":          cfg.Server.Port,
		"cache_type":    cfg.Cache.Type,
		"refresh_timer": cfg.Server.RefreshTimer,
		"feed_url":      cfg.Catalog.FeedURL,
	})

	cache, closeCache := newCache(cfg, logger)
	defer closeCache()

	flags := featureflags.NewEnvManager(flagPrefix)
	flags.SetDefault(featureflags.CacheEnabled, true)
	flags.SetDefault(featureflags.RateLimitEnabled, true)
	logger.Info("Feature flags", flagFields(flags))

	httpClient := stdhttp.NewStandardHTTPClientWithTransport(30*time.Second, &middleware.LoggingRoundTripper{
		Transport: http.DefaultTransport,
		Logger:    logger,
	})

	urls, err := urlresolver.New(cfg.Catalog.BaseURL, cfg.Catalog.ProxyURL)
	if err != nil {
		log.Fatalf("Invalid catalog URLs: %v", err)
	}

	deps := interfaces.Dependencies{
		Cache:      cache,
		HTTPClient: httpClient,
		Logger:     logger,
	}

	progressService := progress.NewService(deps)
	catalogService := catalog.NewService(deps, progressService, catalog.Options{
		FeedURL:  cfg.Catalog.FeedURL,
		CacheTTL: time.Duration(cfg.Catalog.FeedCacheTTL) * time.Second,
		URLs:     urls,
	})
	colorService := services.NewCoverColorService(deps)

	refreshWorker := workers.NewRefreshWorker(catalogService, colorService, logger, workers.RefreshConfig{
		Interval: time.Duration(cfg.Server.RefreshTimer) * time.Second,
		Flags:    flags,
	})
	if err := refreshWorker.Start(); err != nil {
		log.Fatalf("Failed to start refresh worker: %v", err)
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		log.Fatalf("Invalid trusted proxies: %v", err)
	}

	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{
		Logger:         logger,
		Flags:          flags,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		TrustedProxies: proxies,
	})

	handlers.NewCatalogHandler(catalogService, colorService, refreshWorker).RegisterRoutes(humaAPI)
	handlers.NewProgressHandler(progressService).RegisterRoutes(humaAPI)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	if err := refreshWorker.Stop(); err != nil {
		logger.Warn("Refresh worker did not stop cleanly", map[string]interface{}{
			"error": err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	logger.Info("Server stopped", nil)
}

// newCache builds the configured cache backend. Redis falls back to memory
// when unreachable; sqlite keeps progress across restarts.
func newCache(cfg *config.Config, logger interfaces.Logger) (interfaces.Cache, func()) {
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := redis.NewRedisCache(cfg.Cache.Redis)
		if err != nil {
			logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			break
		}
		logger.Info("Using Redis cache", map[string]interface{}{
			"address": cfg.Cache.Redis.Address,
		})
		return redisCache, closer(redisCache, logger)

	case "sqlite":
		sqliteCache, err := sqlite.NewSQLiteCacheWithLogger(cfg.Cache.SQLite.Path, logger)
		if err != nil {
			logger.Error("Failed to open SQLite cache, falling back to memory", map[string]interface{}{
				"path":  cfg.Cache.SQLite.Path,
				"error": err.Error(),
			})
			break
		}
		logger.Info("Using SQLite cache", map[string]interface{}{
			"path": cfg.Cache.SQLite.Path,
		})
		return sqliteCache, closer(sqliteCache, logger)
	}

	logger.Info("Using memory cache", nil)
	return memory.NewMemoryCacheWithCleanup(time.Duration(cfg.Cache.Memory.CleanupInterval) * time.Second), func() {}
}

func closer(c io.Closer, logger interfaces.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close cache", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func flagFields(m featureflags.Manager) map[string]interface{} {
	fields := make(map[string]interface{})
	for flag, enabled := range m.GetAllFlags() {
		fields[string(flag)] = enabled
	}
	return fields
}
