// ABOUTME: Configuration options for the bookshelf library client
// ABOUTME: Provides functional options pattern for flexible client configuration

package bookshelf

import (
	"time"

	"bookshelf-api/core/interfaces"
)

// Option is a functional option for configuring the client
type Option func(*Config) error

// WithFeedURL sets the OPDS acquisition feed the catalog is built from
func WithFeedURL(feedURL string) Option {
	return func(c *Config) error {
		c.FeedURL = feedURL
		return nil
	}
}

// WithBaseURL sets the origin relative hrefs resolve against
func WithBaseURL(baseURL string) Option {
	return func(c *Config) error {
		c.BaseURL = baseURL
		return nil
	}
}

// WithProxyURL routes remote cover and download links through a forwarding prefix
func WithProxyURL(proxyURL string) Option {
	return func(c *Config) error {
		c.ProxyURL = proxyURL
		return nil
	}
}

// WithCache sets a custom cache implementation
func WithCache(cache interfaces.Cache) Option {
	return func(c *Config) error {
		c.Cache = cache
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client interfaces.HTTPClient) Option {
	return func(c *Config) error {
		c.HTTPClient = client
		return nil
	}
}

// WithLogger sets a custom logger
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithFeedCacheTTL caches the raw feed for ttl. Zero disables the feed cache.
func WithFeedCacheTTL(ttl time.Duration) Option {
	return func(c *Config) error {
		if ttl < 0 {
			return NewError(ErrorTypeValidation, "feed cache TTL cannot be negative")
		}
		c.FeedCacheTTL = ttl
		return nil
	}
}

// WithSimpleSearch replaces fuzzy ranking with a plain substring filter
func WithSimpleSearch(enabled bool) Option {
	return func(c *Config) error {
		c.SimpleSearch = enabled
		return nil
	}
}

// WithRelevanceOnly orders search results by relevance over catalog order
// instead of breaking score ties by reading priority
func WithRelevanceOnly(enabled bool) Option {
	return func(c *Config) error {
		c.RelevanceOnly = enabled
		return nil
	}
}

// WithAutoRefresh refreshes the catalog in the background every interval
func WithAutoRefresh(interval time.Duration) Option {
	return func(c *Config) error {
		if interval <= 0 {
			return NewError(ErrorTypeValidation, "refresh interval must be positive")
		}
		c.RefreshInterval = interval
		return nil
	}
}

// ListOption is a functional option for book listings
type ListOption func(*ListOptions)

// ListOptions holds options for book listings
type ListOptions struct {
	Page         int
	ItemsPerPage int
}

// WithPagination returns a single 1-based page of results
func WithPagination(page, itemsPerPage int) ListOption {
	return func(o *ListOptions) {
		o.Page = page
		o.ItemsPerPage = itemsPerPage
	}
}

// defaultConfig returns the default client configuration
func defaultConfig() Config {
	return Config{
		Cache:        DefaultMemoryCache(),
		HTTPClient:   DefaultHTTPClient(),
		Logger:       QuietLogger(),
		FeedCacheTTL: 5 * time.Minute,
	}
}
