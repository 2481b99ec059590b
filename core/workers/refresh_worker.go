// ABOUTME: Refresh worker periodically re-ingests the catalog feed in the background
// ABOUTME: Optionally warms the cover color cache after each successful refresh

package workers

import (
	"context"
	"sync"
	"time"

	"bookshelf-api/core/domain"
	"bookshelf-api/core/interfaces"
	"bookshelf-api/pkg/featureflags"
)

// Refresher rebuilds the catalog from its source
type Refresher interface {
	Refresh(ctx context.Context) (*domain.Catalog, error)
}

// ColorWarmer precomputes cover colors
type ColorWarmer interface {
	ExtractColorBatch(ctx context.Context, imageURLs []string) map[string]*domain.RGBColor
}

// RefreshConfig holds configuration for the refresh worker
type RefreshConfig struct {
	// Interval between refreshes
	Interval time.Duration

	// Timeout bounds a single refresh including cover warming
	Timeout time.Duration

	// Flags is consulted for cover_color_enabled. Nil disables warming.
	Flags featureflags.Manager
}

// DefaultRefreshConfig returns the default worker configuration
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Interval: time.Hour,
		Timeout:  2 * time.Minute,
	}
}

// RefreshStatus reports the outcome of the latest run
type RefreshStatus struct {
	Runs        int       `json:"runs"`
	Failures    int       `json:"failures"`
	LastRun     time.Time `json:"lastRun"`
	LastSuccess time.Time `json:"lastSuccess"`
	LastError   string    `json:"lastError,omitempty"`
	Books       int       `json:"books"`
}

// RefreshWorker manages the background refresh loop
type RefreshWorker struct {
	refresher Refresher
	warmer    ColorWarmer
	logger    interfaces.Logger
	config    RefreshConfig

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	status  RefreshStatus
}

// NewRefreshWorker creates a new refresh worker. warmer and logger may be nil.
func NewRefreshWorker(refresher Refresher, warmer ColorWarmer, logger interfaces.Logger, config RefreshConfig) *RefreshWorker {
	defaults := DefaultRefreshConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	if logger == nil {
		logger = nopLogger{}
	}

	return &RefreshWorker{
		refresher: refresher,
		warmer:    warmer,
		logger:    logger,
		config:    config,
	}
}

// Start runs one refresh immediately and then one per interval until Stop
func (w *RefreshWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return ErrWorkerRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	if w.config.Flags != nil {
		ctx = featureflags.WithManager(ctx, w.config.Flags)
	}
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.loop(ctx)

	return nil
}

// Stop stops the loop and waits for an in-flight refresh to finish
func (w *RefreshWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.cancel()
	w.running = false
	w.mu.Unlock()

	w.wg.Wait()
	return nil
}

// RunOnce performs a single refresh on the caller's goroutine
func (w *RefreshWorker) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	started := time.Now()
	catalog, err := w.refresher.Refresh(ctx)

	w.mu.Lock()
	w.status.Runs++
	w.status.LastRun = started
	if err != nil {
		w.status.Failures++
		w.status.LastError = err.Error()
	} else {
		w.status.LastSuccess = started
		w.status.LastError = ""
		w.status.Books = catalog.Len()
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("Scheduled catalog refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	w.logger.Info("Scheduled catalog refresh completed", map[string]interface{}{
		"books":    catalog.Len(),
		"dropped":  catalog.Dropped,
		"duration": time.Since(started).String(),
	})

	if w.warmer != nil && featureflags.IsEnabled(ctx, featureflags.CoverColorEnabled) {
		w.warmCovers(ctx, catalog)
	}

	return nil
}

// Status returns a copy of the latest run outcome
func (w *RefreshWorker) Status() RefreshStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// IsRunning reports whether the loop is active
func (w *RefreshWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *RefreshWorker) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	_ = w.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			_ = w.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *RefreshWorker) warmCovers(ctx context.Context, catalog *domain.Catalog) {
	urls := make([]string, 0, catalog.Len())
	for _, b := range catalog.Books {
		if b.CoverURL != "" {
			urls = append(urls, b.CoverURL)
		}
	}
	if len(urls) == 0 {
		return
	}

	colors := w.warmer.ExtractColorBatch(ctx, urls)

	w.logger.Debug("Warmed cover colors", map[string]interface{}{
		"covers":    len(urls),
		"extracted": len(colors),
	})
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

// Error definitions
var (
	ErrWorkerRunning = &WorkerError{Message: "refresh worker is already running"}
)

// WorkerError represents a worker-specific error
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}
