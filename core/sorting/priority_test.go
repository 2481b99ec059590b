package sorting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-api/core/domain"
)

func ids(books []domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func TestSortByPriority_RecencyDominatesProgress(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	books := []domain.Book{
		{ID: "A", Title: "A"},
		{ID: "B", Title: "B"},
	}
	progress := map[string]domain.ReadingProgress{
		"A": {BookID: "A", Progress: 0.9, LastRead: now.Add(-24 * time.Hour)},
		"B": {BookID: "B", Progress: 0.1, LastRead: now},
	}

	assert.Equal(t, []string{"B", "A"}, ids(SortByPriority(books, progress)))
}

func TestSortByPriority_ProgressBreaksRecencyTies(t *testing.T) {
	books := []domain.Book{
		{ID: "low", Title: "Alpha"},
		{ID: "none", Title: "Aardvark"},
		{ID: "high", Title: "Zeta"},
	}
	progress := map[string]domain.ReadingProgress{
		"low":  {Progress: 0.2},
		"high": {Progress: 0.8},
	}

	assert.Equal(t, []string{"high", "low", "none"}, ids(SortByPriority(books, progress)))
}

func TestSortByPriority_NumericAwareTitles(t *testing.T) {
	books := []domain.Book{
		{ID: "10", Title: "Book 10"},
		{ID: "2", Title: "Book 2"},
	}

	sorted := SortByPriority(books, nil)

	assert.Equal(t, []string{"2", "10"}, ids(sorted))
}

func TestSortByPriority_CaseAndAccentInsensitive(t *testing.T) {
	books := []domain.Book{
		{ID: "b", Title: "banana"},
		{ID: "A", Title: "Apple"},
		{ID: "e", Title: "Éclair"},
		{ID: "d", Title: "date"},
	}

	assert.Equal(t, []string{"A", "b", "d", "e"}, ids(SortByPriority(books, nil)))
}

func TestSortByPriority_MissingLastReadSortsLast(t *testing.T) {
	books := []domain.Book{
		{ID: "never", Title: "A"},
		{ID: "old", Title: "Z"},
	}
	progress := map[string]domain.ReadingProgress{
		"never": {Progress: 1.0},
		"old":   {LastRead: time.Unix(0, 0).Add(time.Second)},
	}

	assert.Equal(t, []string{"old", "never"}, ids(SortByPriority(books, progress)))
}

func TestSortByPriority_Idempotent(t *testing.T) {
	now := time.Now()
	books := []domain.Book{
		{ID: "1", Title: "Book 10"},
		{ID: "2", Title: "Book 2"},
		{ID: "3", Title: "book 2"},
		{ID: "4", Title: "Dune"},
		{ID: "5", Title: "Emma"},
	}
	progress := map[string]domain.ReadingProgress{
		"4": {Progress: 0.5, LastRead: now},
		"5": {Progress: 0.5},
	}

	once := SortByPriority(books, progress)
	twice := SortByPriority(once, progress)

	assert.Equal(t, once, twice)
}

func TestSortByPriority_DoesNotMutateInput(t *testing.T) {
	books := []domain.Book{
		{ID: "z", Title: "Zebra"},
		{ID: "a", Title: "Aardvark"},
	}

	_ = SortByPriority(books, nil)

	assert.Equal(t, "z", books[0].ID)
}

func TestStats(t *testing.T) {
	now := time.Now()
	books := []domain.Book{
		{ID: "1", Title: "Dune"},
		{ID: "2", Title: "Emma"},
		{ID: "3", Title: "Ulysses"},
	}
	progress := map[string]domain.ReadingProgress{
		"1":     {Progress: 0.456, LastRead: now.Add(-time.Hour)},
		"2":     {Progress: 0, LastRead: now},
		"other": {Progress: 1, LastRead: now.Add(time.Hour)},
	}

	stats := Stats(books, progress)

	assert.Equal(t, domain.SortingStats{
		WithProgress:    1,
		WithLastRead:    2,
		TotalBooks:      3,
		MostRecentRead:  "Emma",
		HighestProgress: 46,
	}, stats)
}

type stubStore struct {
	calls    int
	progress map[string]domain.ReadingProgress
	err      error
}

func (s *stubStore) GetProgress(ctx context.Context, bookID string) (*domain.ReadingProgress, error) {
	p, ok := s.progress[bookID]
	if !ok {
		return nil, s.err
	}
	return &p, s.err
}

func (s *stubStore) GetAllProgress(ctx context.Context) (map[string]domain.ReadingProgress, error) {
	s.calls++
	return s.progress, s.err
}

func TestPrioritySorter_ReadsProgressEveryCall(t *testing.T) {
	store := &stubStore{progress: map[string]domain.ReadingProgress{}}
	sorter := NewPrioritySorter(store, nil)
	books := []domain.Book{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	ctx := context.Background()

	require.Equal(t, []string{"a", "b"}, ids(sorter.Sort(ctx, books)))

	store.progress["b"] = domain.ReadingProgress{BookID: "b", LastRead: time.Now()}

	assert.Equal(t, []string{"b", "a"}, ids(sorter.Sort(ctx, books)))
	assert.Equal(t, 2, store.calls)
}

func TestPrioritySorter_StoreErrorFallsBackToTitles(t *testing.T) {
	var warned bool
	logger := &recordingLogger{warn: func(string) { warned = true }}
	store := &stubStore{err: errors.New("disk on fire")}
	sorter := NewPrioritySorter(store, logger)

	sorted := sorter.Sort(context.Background(), []domain.Book{{ID: "z", Title: "Zed"}, {ID: "a", Title: "Ant"}})

	assert.Equal(t, []string{"a", "z"}, ids(sorted))
	assert.True(t, warned)
}

type recordingLogger struct {
	warn func(msg string)
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {}
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  {}
func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	if l.warn != nil {
		l.warn(msg)
	}
}
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {}
