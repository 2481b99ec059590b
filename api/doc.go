// Package api provides the HTTP API layer for the bookshelf catalog.
// It uses the Huma framework to provide automatic OpenAPI documentation,
// request/response validation, and a clean handler interface.
//
// # Architecture
//
// - server.go: Huma API configuration and setup
// - handlers/: HTTP request handlers for the catalog and reading progress
// - dto/: Data Transfer Objects for requests and responses
// - middleware/: request IDs and logging, feature flags, rate limiting
//
// The OpenAPI document is served at /openapi.json and the interactive docs
// at /docs.
//
// # Usage Example
//
//	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{
//	    Logger:         logger,
//	    Flags:          flags,
//	    AllowedOrigins: cfg.Server.AllowedOrigins,
//	    RateLimit:      cfg.Server.RateLimit,
//	    RateBurst:      cfg.Server.RateBurst,
//	})
//
//	handlers.NewCatalogHandler(catalogService, colorService, refreshWorker).RegisterRoutes(humaAPI)
//	handlers.NewProgressHandler(progressService).RegisterRoutes(humaAPI)
//
//	http.ListenAndServe(":8000", router)
//
// # Error Handling
//
// Errors use the RFC 7807 problem format. Domain errors map to status codes:
// NotFoundError is 404, ValidationError is 400, and an unreachable or
// unparseable catalog feed is 503 "catalog unavailable".
package api
