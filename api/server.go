// ABOUTME: Huma API server configuration and setup
// ABOUTME: Provides OpenAPI documentation and request/response validation

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"bookshelf-api/api/middleware"
	"bookshelf-api/core/interfaces"
	"bookshelf-api/pkg/featureflags"
)

const (
	apiTitle   = "Bookshelf API"
	apiVersion = "1.0.0"
)

// APIConfig holds configuration for the API
type APIConfig struct {
	Logger interfaces.Logger

	// Flags is placed in every request context. Nil leaves all flags off.
	Flags featureflags.Manager

	// AllowedOrigins lists CORS origins. Empty allows all.
	AllowedOrigins []string

	// RateLimit is sustained requests per second per client, RateBurst the
	// burst above it. Enforced only while rate_limit_enabled is on.
	RateLimit float64
	RateBurst int

	// TrustedProxies are the peers whose X-Forwarded-For is used to key clients
	TrustedProxies middleware.TrustedProxies
}

// NewAPI creates and configures a new Huma API instance with defaults
func NewAPI() (huma.API, chi.Router) {
	return NewAPIWithMiddleware(APIConfig{})
}

// NewAPIWithMiddleware creates a new API with middleware configured
func NewAPIWithMiddleware(cfg APIConfig) (huma.API, chi.Router) {
	router := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// CORS runs first so preflight requests are answered before anything else
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Link", middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: !allowsAll(origins),
		MaxAge:           300,
	}))

	router.Use(middleware.FeatureFlagMiddleware(cfg.Flags))

	if cfg.Logger != nil {
		router.Use(middleware.RequestLoggingMiddleware(cfg.Logger))
	}

	if cfg.RateLimit > 0 && cfg.RateBurst > 0 {
		limiter := middleware.NewRateLimiterBehindProxies(cfg.RateLimit, cfg.RateBurst, cfg.TrustedProxies)
		router.Use(middleware.RateLimitMiddleware(limiter))
	}

	config := huma.DefaultConfig(apiTitle, apiVersion)
	config.Info.Description = "Personal e-book catalog built from an OPDS feed, with fuzzy search and reading progress"

	api := humachi.New(router, config)

	return api, router
}

func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
