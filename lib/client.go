// ABOUTME: Main client for the bookshelf library providing catalog and progress access
// ABOUTME: Offers a clean API for using core functionality without HTTP dependencies

package bookshelf

import (
	"context"
	"sync"
	"time"

	"bookshelf-api/core/catalog"
	"bookshelf-api/core/interfaces"
	"bookshelf-api/core/progress"
	"bookshelf-api/core/workers"
	"bookshelf-api/infrastructure/urlresolver"
	"bookshelf-api/pkg/featureflags"
)

// Client is the main entry point for the bookshelf library
type Client struct {
	catalog  *catalog.Service
	progress *progress.Service
	flags    featureflags.Manager

	// refreshes the catalog in the background when auto refresh is on
	refreshWorker *workers.RefreshWorker

	deps   interfaces.Dependencies
	config Config

	mu     sync.RWMutex
	closed bool
}

// Config holds the configuration for the client
type Config struct {
	// FeedURL is the OPDS acquisition feed. Required.
	FeedURL string

	// BaseURL and ProxyURL control how book links are rewritten
	BaseURL  string
	ProxyURL string

	Cache      interfaces.Cache
	HTTPClient interfaces.HTTPClient
	Logger     interfaces.Logger

	// FeedCacheTTL is how long the raw feed is cached. Zero disables it.
	FeedCacheTTL time.Duration

	SimpleSearch  bool
	RelevanceOnly bool

	// RefreshInterval enables background refresh when positive
	RefreshInterval time.Duration
}

// NewClient creates a new bookshelf client with the given options
func NewClient(options ...Option) (*Client, error) {
	config := defaultConfig()

	for _, opt := range options {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	urls, err := urlresolver.New(config.BaseURL, config.ProxyURL)
	if err != nil {
		return nil, NewError(ErrorTypeConfiguration, "invalid base URL").
			WithCause(err).
			WithContext("base_url", config.BaseURL)
	}

	deps := interfaces.Dependencies{
		HTTPClient: config.HTTPClient,
		Cache:      config.Cache,
		Logger:     config.Logger,
	}

	progressService := progress.NewService(deps)

	client := &Client{
		progress: progressService,
		catalog: catalog.NewService(deps, progressService, catalog.Options{
			FeedURL:  config.FeedURL,
			CacheTTL: config.FeedCacheTTL,
			URLs:     urls,
		}),
		flags: featureflags.NewStaticManager(map[featureflags.FeatureFlag]bool{
			featureflags.CacheEnabled:  config.FeedCacheTTL > 0,
			featureflags.SimpleSearch:  config.SimpleSearch,
			featureflags.RelevanceOnly: config.RelevanceOnly,
		}),
		deps:   deps,
		config: config,
	}

	if config.RefreshInterval > 0 {
		client.refreshWorker = workers.NewRefreshWorker(client.catalog, nil, config.Logger, workers.RefreshConfig{
			Interval: config.RefreshInterval,
			Flags:    client.flags,
		})
		if err := client.refreshWorker.Start(); err != nil {
			return nil, wrapError(err)
		}
	}

	return client, nil
}

// validateConfig ensures all required fields are set
func validateConfig(config *Config) error {
	if config.FeedURL == "" {
		return ErrNoFeedURL
	}
	if config.Cache == nil {
		return NewError(ErrorTypeConfiguration, "cache is required")
	}
	if config.HTTPClient == nil {
		return NewError(ErrorTypeConfiguration, "HTTP client is required")
	}
	if config.Logger == nil {
		config.Logger = QuietLogger()
	}
	return nil
}

// Books returns the catalog ordered for display. A non-empty query narrows
// the catalog to relevant books, most relevant first.
func (c *Client) Books(ctx context.Context, query string, opts ...ListOption) ([]Book, error) {
	ctx, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}

	books, err := c.catalog.Books(ctx, query)
	if err != nil {
		return nil, wrapError(err)
	}

	result := booksToPublic(books)

	var options ListOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.Page > 0 || options.ItemsPerPage > 0 {
		result = applyPagination(result, options.Page, options.ItemsPerPage)
	}

	return result, nil
}

// Book returns a single book by id
func (c *Client) Book(ctx context.Context, id string) (*Book, error) {
	ctx, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}

	book, err := c.catalog.Book(ctx, id)
	if err != nil {
		return nil, wrapError(err)
	}

	public := bookToPublic(*book)
	return &public, nil
}

// Suggestions returns up to limit search completions for a partial query
func (c *Client) Suggestions(ctx context.Context, query string, limit int) ([]string, error) {
	ctx, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}

	suggestions, err := c.catalog.Suggestions(ctx, query, limit)
	if err != nil {
		return nil, wrapError(err)
	}
	return suggestions, nil
}

// Refresh re-fetches the feed and replaces the catalog
func (c *Client) Refresh(ctx context.Context) (*CatalogInfo, error) {
	ctx, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}

	cat, err := c.catalog.Refresh(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	return catalogInfo(cat), nil
}

// Stats reports on the current catalog
func (c *Client) Stats(ctx context.Context) (*catalog.Stats, error) {
	ctx, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := c.catalog.Stats(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	return stats, nil
}

// SaveProgress records the reader's position in a book
func (c *Client) SaveProgress(ctx context.Context, bookID string, update ProgressUpdate) (*Progress, error) {
	ctx, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := c.progress.SaveProgress(ctx, bookID, progress.Update{
		Location:     update.Location,
		Progress:     update.Progress,
		CurrentPage:  update.CurrentPage,
		TotalPages:   update.TotalPages,
		ChapterTitle: update.ChapterTitle,
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return progressToPublic(saved), nil
}

// Progress returns the saved position for a book, or nil if none exists
func (c *Client) Progress(ctx context.Context, bookID string) (*Progress, error) {
	ctx, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}

	p, err := c.progress.GetProgress(ctx, bookID)
	if err != nil {
		return nil, wrapError(err)
	}
	return progressToPublic(p), nil
}

// AddToHistory moves a book to the front of the reading history
func (c *Client) AddToHistory(ctx context.Context, bookID, title, author string) error {
	ctx, err := c.begin(ctx)
	if err != nil {
		return err
	}

	if _, err := c.progress.AddToHistory(ctx, bookID, title, author); err != nil {
		return wrapError(err)
	}
	return nil
}

// History returns the reading history, newest first
func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	ctx, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := c.progress.GetHistory(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	return historyToPublic(entries), nil
}

// Export returns all reading data in its portable form
func (c *Client) Export(ctx context.Context) (*progress.Export, error) {
	ctx, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}

	data, err := c.progress.Export(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	return data, nil
}

// Import replaces stored reading data with the sections present in data
func (c *Client) Import(ctx context.Context, data progress.Export) error {
	ctx, err := c.begin(ctx)
	if err != nil {
		return err
	}

	if err := c.progress.Import(ctx, data); err != nil {
		return wrapError(err)
	}
	return nil
}

// RefreshStatus reports the background refresh outcome. ok is false when
// auto refresh is off.
func (c *Client) RefreshStatus() (status workers.RefreshStatus, ok bool) {
	if c.refreshWorker == nil {
		return workers.RefreshStatus{}, false
	}
	return c.refreshWorker.Status(), true
}

// Close stops background work. The client cannot be used afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if c.refreshWorker != nil {
		return c.refreshWorker.Stop()
	}
	return nil
}

// begin rejects calls on a closed client and attaches the client's flags
func (c *Client) begin(ctx context.Context) (context.Context, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	return featureflags.WithManager(ctx, c.flags), nil
}

