// ABOUTME: Progress service persists reading positions and reading history
// ABOUTME: Stores JSON documents in a cache backend and serves as the sorter's progress store

package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bookshelf-api/core/domain"
	coreerrors "bookshelf-api/core/errors"
	"bookshelf-api/core/interfaces"
)

const (
	// ProgressKey holds the bookId to ReadingProgress map
	ProgressKey = "bookshelf:progress"

	// HistoryKey holds the reading history, newest first
	HistoryKey = "bookshelf:history"

	// MaxHistoryEntries caps the reading history
	MaxHistoryEntries = 50
)

// Update carries the fields a reader reports on a location change
type Update struct {
	Location     string
	Progress     float64
	CurrentPage  int
	TotalPages   int
	ChapterTitle string
}

// Export is the portable form of all persisted reading data
type Export struct {
	Progress   map[string]domain.ReadingProgress `json:"progress"`
	History    []domain.HistoryEntry             `json:"history"`
	ExportDate time.Time                         `json:"exportDate"`
}

// Service implements interfaces.ProgressStore over an interfaces.Cache
type Service struct {
	deps interfaces.Dependencies
	now  func() time.Time

	// guards read-modify-write of the stored documents
	mu sync.Mutex
}

// NewService creates a progress service. deps.Cache is required.
func NewService(deps interfaces.Dependencies) *Service {
	return &Service{deps: deps, now: time.Now}
}

// NewServiceWithClock creates a progress service stamping records with now
func NewServiceWithClock(deps interfaces.Dependencies, now func() time.Time) *Service {
	return &Service{deps: deps, now: now}
}

// SaveProgress records the reader's position for bookID and stamps it as read now
func (s *Service) SaveProgress(ctx context.Context, bookID string, u Update) (*domain.ReadingProgress, error) {
	if strings.TrimSpace(bookID) == "" {
		return nil, &coreerrors.ValidationError{Field: "bookId", Message: "cannot be empty"}
	}
	if u.Progress < 0 || u.Progress > 1 {
		return nil, &coreerrors.ValidationError{Field: "progress", Message: "must be between 0 and 1"}
	}
	if u.CurrentPage < 0 || u.TotalPages < 0 {
		return nil, &coreerrors.ValidationError{Field: "pages", Message: "cannot be negative"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadProgress(ctx)
	if err != nil {
		return nil, err
	}

	record := domain.ReadingProgress{
		BookID:       bookID,
		Location:     u.Location,
		Progress:     u.Progress,
		LastRead:     s.now().UTC(),
		CurrentPage:  u.CurrentPage,
		TotalPages:   u.TotalPages,
		ChapterTitle: u.ChapterTitle,
	}
	all[bookID] = record

	if err := s.store(ctx, ProgressKey, all); err != nil {
		return nil, err
	}

	s.log().Debug("Saved reading progress", map[string]interface{}{
		"book_id":  bookID,
		"progress": record.Progress,
	})

	return &record, nil
}

// GetProgress returns the progress for bookID, or nil when none is recorded
func (s *Service) GetProgress(ctx context.Context, bookID string) (*domain.ReadingProgress, error) {
	all, err := s.GetAllProgress(ctx)
	if err != nil {
		return nil, err
	}

	p, ok := all[bookID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetAllProgress returns a snapshot of every recorded position
func (s *Service) GetAllProgress(ctx context.Context) (map[string]domain.ReadingProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadProgress(ctx)
}

// RemoveProgress forgets the position for bookID. Removing an absent book is not an error.
func (s *Service) RemoveProgress(ctx context.Context, bookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadProgress(ctx)
	if err != nil {
		return err
	}
	if _, ok := all[bookID]; !ok {
		return nil
	}

	delete(all, bookID)
	return s.store(ctx, ProgressKey, all)
}

// AddToHistory moves bookID to the front of the reading history
func (s *Service) AddToHistory(ctx context.Context, bookID, title, author string) (*domain.HistoryEntry, error) {
	if strings.TrimSpace(bookID) == "" {
		return nil, &coreerrors.ValidationError{Field: "bookId", Message: "cannot be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	entry := domain.HistoryEntry{
		BookID:     bookID,
		BookTitle:  title,
		BookAuthor: author,
		LastRead:   s.now().UTC(),
	}

	updated := make([]domain.HistoryEntry, 0, len(history)+1)
	updated = append(updated, entry)
	for _, h := range history {
		if h.BookID != bookID {
			updated = append(updated, h)
		}
	}
	if len(updated) > MaxHistoryEntries {
		updated = updated[:MaxHistoryEntries]
	}

	if err := s.store(ctx, HistoryKey, updated); err != nil {
		return nil, err
	}

	return &entry, nil
}

// GetHistory returns the reading history, newest first
func (s *Service) GetHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadHistory(ctx)
}

// Export returns all progress and history
func (s *Service) Export(ctx context.Context) (*Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadProgress(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	return &Export{Progress: all, History: history, ExportDate: s.now().UTC()}, nil
}

// Import replaces the sections present in data. A nil section leaves the
// stored one untouched.
func (s *Service) Import(ctx context.Context, data Export) error {
	for id, p := range data.Progress {
		if p.Progress < 0 || p.Progress > 1 {
			return &coreerrors.ValidationError{Field: "progress", Message: fmt.Sprintf("book %s: must be between 0 and 1", id)}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if data.Progress != nil {
		normalized := make(map[string]domain.ReadingProgress, len(data.Progress))
		for id, p := range data.Progress {
			p.BookID = id
			normalized[id] = p
		}
		if err := s.store(ctx, ProgressKey, normalized); err != nil {
			return err
		}
	}

	if data.History != nil {
		history := data.History
		if len(history) > MaxHistoryEntries {
			history = history[:MaxHistoryEntries]
		}
		if err := s.store(ctx, HistoryKey, history); err != nil {
			return err
		}
	}

	s.log().Info("Imported reading data", map[string]interface{}{
		"progress_entries": len(data.Progress),
		"history_entries":  len(data.History),
	})

	return nil
}

// ClearAll removes all progress and history
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deps.Cache.Delete(ctx, ProgressKey); err != nil {
		return err
	}
	return s.deps.Cache.Delete(ctx, HistoryKey)
}

func (s *Service) loadProgress(ctx context.Context) (map[string]domain.ReadingProgress, error) {
	data, err := s.read(ctx, ProgressKey)
	if err != nil || data == nil {
		return make(map[string]domain.ReadingProgress), err
	}

	var all map[string]domain.ReadingProgress
	if err := json.Unmarshal(data, &all); err != nil || all == nil {
		s.discard(ProgressKey, err)
		return make(map[string]domain.ReadingProgress), nil
	}
	return all, nil
}

func (s *Service) loadHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	data, err := s.read(ctx, HistoryKey)
	if err != nil || data == nil {
		return []domain.HistoryEntry{}, err
	}

	var history []domain.HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil || history == nil {
		s.discard(HistoryKey, err)
		return []domain.HistoryEntry{}, nil
	}
	return history, nil
}

// read returns nil data on a miss
func (s *Service) read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.deps.Cache.Get(ctx, key)
	if errors.Is(err, interfaces.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, coreerrors.WrapError(err, "failed to read "+key)
	}
	return data, nil
}

// discard logs a stored document that could not be decoded; it is treated as empty
func (s *Service) discard(key string, err error) {
	fields := map[string]interface{}{"key": key}
	if err != nil {
		fields["error"] = err.Error()
	}
	s.log().Warn("Discarding unreadable stored document", fields)
}

func (s *Service) store(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.deps.Cache.Set(ctx, key, data, 0); err != nil {
		return coreerrors.WrapError(err, "failed to write "+key)
	}
	return nil
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
