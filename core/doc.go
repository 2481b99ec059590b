// Package core contains the business logic for the Bookshelf API.
// It is designed to be framework-agnostic and can be used independently
// of any web framework or infrastructure concerns.
//
// The core package is organized into several sub-packages:
//
// - domain: Pure domain models (Feed, Book, Catalog, ReadingProgress)
// - opds: OPDS/Atom feed parser
// - catalog: Entry-to-book resolution and the catalog service
// - search: Fuzzy relevance scoring, simple search and suggestions
// - sorting: Reading priority sort over stored progress
// - progress: Reading progress and history persistence
// - services: Cover color extraction
// - workers: Background catalog refresh
// - errors: Custom error types for better error handling
// - interfaces: Contracts for external dependencies (cache, HTTP, logger)
//
// # Design Principles
//
// - No external framework dependencies
// - All external dependencies are injected via interfaces
// - Business logic is testable in isolation
//
// # Usage Example
//
//	deps := interfaces.Dependencies{
//	    Cache:      myCache,      // implements interfaces.Cache
//	    HTTPClient: myHTTPClient, // implements interfaces.HTTPClient
//	    Logger:     myLogger,     // implements interfaces.Logger
//	}
//
//	progressService := progress.NewService(deps)
//	catalogService := catalog.NewService(deps, progressService, catalog.Options{
//	    FeedURL: "https://books.example.com/opds",
//	})
//
//	books, err := catalogService.Books(ctx, "dune")
package core
