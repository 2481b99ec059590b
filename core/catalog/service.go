// ABOUTME: Catalog service fetches the OPDS feed and serves the ranked book catalog
// ABOUTME: Owns the current catalog and swaps it wholesale on every refresh

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"bookshelf-api/core/domain"
	coreerrors "bookshelf-api/core/errors"
	"bookshelf-api/core/interfaces"
	"bookshelf-api/core/opds"
	"bookshelf-api/core/search"
	"bookshelf-api/core/sorting"
	"bookshelf-api/pkg/featureflags"
)

const (
	feedCacheKeyPrefix = "opds:feed:"

	// maxFeedBytes bounds how much of a feed response is read
	maxFeedBytes = 32 << 20
)

// ErrSourceUnavailable marks failures to reach the feed server
var ErrSourceUnavailable = errors.New("catalog source unavailable")

// Options configures the catalog source
type Options struct {
	// FeedURL is the OPDS acquisition feed to ingest
	FeedURL string

	// CacheTTL is how long raw feed XML is cached. Zero disables the feed cache.
	CacheTTL time.Duration

	// URLs normalizes hrefs on resolved books. Nil leaves them untouched.
	URLs interfaces.URLResolver
}

// Stats describes the current catalog
type Stats struct {
	FeedID    string              `json:"feedId"`
	FeedTitle string              `json:"feedTitle"`
	FetchedAt time.Time           `json:"fetchedAt"`
	Books     int                 `json:"books"`
	Dropped   int                 `json:"dropped"`
	Sorting   domain.SortingStats `json:"sorting"`
}

// Service handles catalog ingestion and ranking
type Service struct {
	deps     interfaces.Dependencies
	opts     Options
	parser   *opds.Parser
	resolver *Resolver
	sorter   *sorting.PrioritySorter
	now      func() time.Time

	mu      sync.RWMutex
	catalog *domain.Catalog

	// serializes loads so concurrent callers share one fetch
	loadMu sync.Mutex
}

// NewService creates a catalog service. progress may be nil, in which case
// books are ordered by title alone.
func NewService(deps interfaces.Dependencies, progress interfaces.ProgressStore, opts Options) *Service {
	s := &Service{
		deps:   deps,
		opts:   opts,
		parser: opds.NewParser(),
		sorter: sorting.NewPrioritySorter(progress, deps.Logger),
		now:    time.Now,
	}
	s.resolver = NewResolver(opts.URLs, s.logDrop)
	return s
}

// Refresh fetches the feed from its source, bypassing the feed cache, and
// replaces the catalog. On failure the previous catalog stays in place.
func (s *Service) Refresh(ctx context.Context) (*domain.Catalog, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	return s.load(ctx, false)
}

// Catalog returns the current catalog, loading it on first use
func (s *Service) Catalog(ctx context.Context) (*domain.Catalog, error) {
	if c := s.current(); c != nil {
		return c, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if c := s.current(); c != nil {
		return c, nil
	}
	return s.load(ctx, true)
}

// Books returns the catalog ordered for display. Without a query books are
// priority sorted. With a query only relevant books are returned, most
// relevant first, with priority order breaking score ties.
func (s *Service) Books(ctx context.Context, query string) ([]domain.Book, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	books := c.Snapshot()
	query = strings.TrimSpace(query)

	if query == "" {
		return s.sorter.Sort(ctx, books), nil
	}

	if featureflags.IsEnabled(ctx, featureflags.SimpleSearch) {
		return search.SimpleSearch(s.sorter.Sort(ctx, books), query), nil
	}

	if featureflags.IsEnabled(ctx, featureflags.RelevanceOnly) {
		return search.Search(books, query), nil
	}

	return search.Search(s.sorter.Sort(ctx, books), query), nil
}

// Book returns a single book by id
func (s *Service) Book(ctx context.Context, id string) (*domain.Book, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	book, ok := c.Get(id)
	if !ok {
		return nil, &coreerrors.NotFoundError{Resource: "book", ID: id}
	}
	return &book, nil
}

// Suggestions returns search completions for a partial query
func (s *Service) Suggestions(ctx context.Context, query string, limit int) ([]string, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return search.Suggestions(c.Books, query, limit), nil
}

// Stats reports on the current catalog and the progress behind its ordering
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		FeedID:    c.FeedID,
		FeedTitle: c.FeedTitle,
		FetchedAt: c.FetchedAt,
		Books:     c.Len(),
		Dropped:   c.Dropped,
		Sorting:   s.sorter.Stats(ctx, c.Books),
	}, nil
}

func (s *Service) current() *domain.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// load must be called with loadMu held
func (s *Service) load(ctx context.Context, allowCached bool) (*domain.Catalog, error) {
	cacheOn := s.feedCacheEnabled(ctx)

	var data []byte
	fromCache := false
	if allowCached && cacheOn {
		data, fromCache = s.cachedFeed(ctx)
	}

	if !fromCache {
		fetched, err := s.fetch(ctx)
		if err != nil {
			s.log().Error("Failed to fetch catalog feed", map[string]interface{}{
				"url":   s.opts.FeedURL,
				"error": err.Error(),
			})
			return nil, err
		}
		data = fetched
	}

	feed, err := s.parser.Parse(data)
	if err != nil && fromCache {
		s.log().Warn("Discarding unreadable cached catalog feed", map[string]interface{}{
			"url":   s.opts.FeedURL,
			"error": err.Error(),
		})
		_ = s.deps.Cache.Delete(ctx, s.cacheKey())
		return s.load(ctx, false)
	}
	if err != nil {
		s.log().Error("Failed to parse catalog feed", map[string]interface{}{
			"url":   s.opts.FeedURL,
			"error": err.Error(),
		})
		return nil, err
	}

	if cacheOn && !fromCache {
		if err := s.deps.Cache.Set(ctx, s.cacheKey(), data, s.opts.CacheTTL); err != nil {
			s.log().Warn("Failed to cache catalog feed", map[string]interface{}{
				"url":   s.opts.FeedURL,
				"error": err.Error(),
			})
		}
	}

	c := s.resolver.BuildCatalog(feed, s.now())

	s.mu.Lock()
	s.catalog = c
	s.mu.Unlock()

	s.log().Info("Catalog loaded", map[string]interface{}{
		"url":        s.opts.FeedURL,
		"feed_title": c.FeedTitle,
		"entries":    len(feed.Entries),
		"books":      c.Len(),
		"dropped":    c.Dropped,
		"from_cache": fromCache,
	})

	return c, nil
}

func (s *Service) feedCacheEnabled(ctx context.Context) bool {
	return s.deps.Cache != nil && s.opts.CacheTTL > 0 && featureflags.IsEnabled(ctx, featureflags.CacheEnabled)
}

func (s *Service) cacheKey() string {
	return feedCacheKeyPrefix + s.opts.FeedURL
}

func (s *Service) cachedFeed(ctx context.Context) ([]byte, bool) {
	data, err := s.deps.Cache.Get(ctx, s.cacheKey())
	if err != nil {
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			s.log().Warn("Failed to read cached catalog feed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, false
	}
	return data, len(data) > 0
}

func (s *Service) fetch(ctx context.Context) ([]byte, error) {
	if s.opts.FeedURL == "" {
		return nil, &coreerrors.ValidationError{Field: "feedURL", Message: "cannot be empty"}
	}
	if s.deps.HTTPClient == nil {
		return nil, errors.New("HTTP client not configured")
	}

	resp, err := s.deps.HTTPClient.Get(ctx, s.opts.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer resp.Body().Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, &coreerrors.ExternalAPIError{
			API:        "opds",
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("feed %s returned %s", s.opts.FeedURL, http.StatusText(resp.StatusCode())),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body(), maxFeedBytes))
	if err != nil {
		return nil, coreerrors.WrapError(err, "failed to read catalog feed")
	}
	return data, nil
}

func (s *Service) logDrop(e DropEvent) {
	s.log().Debug("Entry excluded from catalog", map[string]interface{}{
		"entry_id": e.EntryID,
		"index":    e.Index,
		"title":    e.Title,
		"reason":   string(e.Reason),
		"href":     e.Href,
	})
}

func (s *Service) log() interfaces.Logger {
	if s.deps.Logger == nil {
		return nopLogger{}
	}
	return s.deps.Logger
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
