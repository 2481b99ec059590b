// ABOUTME: Priority sort orders books by recency, then reading progress, then title
// ABOUTME: Reads progress fresh on every call and never mutates its input

package sorting

import (
	"context"
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"bookshelf-api/core/domain"
	"bookshelf-api/core/interfaces"
)

// newTitleCollator returns a numeric, case and accent insensitive collator.
// Collators are not safe for concurrent use, so one is built per sort.
func newTitleCollator() *collate.Collator {
	return collate.New(language.Und, collate.Numeric, collate.Loose)
}

// SortByPriority returns a copy of books ordered by most recent lastRead,
// then highest progress, then title. Books without progress sort as never
// read with zero progress. Ties on all three keep their input order.
func SortByPriority(books []domain.Book, progress map[string]domain.ReadingProgress) []domain.Book {
	out := make([]domain.Book, len(books))
	copy(out, books)

	titles := newTitleCollator()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := progress[out[i].ID], progress[out[j].ID]

		if !a.LastRead.Equal(b.LastRead) {
			return a.LastRead.After(b.LastRead)
		}

		if a.Progress != b.Progress {
			return a.Progress > b.Progress
		}

		return titles.CompareString(out[i].Title, out[j].Title) < 0
	})

	return out
}

// Stats summarizes the progress data behind a priority sort
func Stats(books []domain.Book, progress map[string]domain.ReadingProgress) domain.SortingStats {
	stats := domain.SortingStats{TotalBooks: len(books)}

	var highest float64
	var mostRecent domain.ReadingProgress

	for _, book := range books {
		p, ok := progress[book.ID]
		if !ok {
			continue
		}

		if p.Progress > 0 {
			stats.WithProgress++
			highest = math.Max(highest, p.Progress)
		}

		if !p.LastRead.IsZero() {
			stats.WithLastRead++
			if p.LastRead.After(mostRecent.LastRead) {
				mostRecent = p
				stats.MostRecentRead = book.Title
			}
		}
	}

	stats.HighestProgress = int(math.Round(highest * 100))
	return stats
}

// PrioritySorter sorts against a live progress store
type PrioritySorter struct {
	store  interfaces.ProgressStore
	logger interfaces.Logger
}

// NewPrioritySorter creates a sorter reading from store
func NewPrioritySorter(store interfaces.ProgressStore, logger interfaces.Logger) *PrioritySorter {
	return &PrioritySorter{store: store, logger: logger}
}

// Sort orders books by priority using the progress recorded right now.
// If the store cannot be read the books are ordered by title alone.
func (s *PrioritySorter) Sort(ctx context.Context, books []domain.Book) []domain.Book {
	return SortByPriority(books, s.snapshot(ctx))
}

// Stats reports sorting statistics using the progress recorded right now
func (s *PrioritySorter) Stats(ctx context.Context, books []domain.Book) domain.SortingStats {
	return Stats(books, s.snapshot(ctx))
}

func (s *PrioritySorter) snapshot(ctx context.Context) map[string]domain.ReadingProgress {
	if s.store == nil {
		return nil
	}

	progress, err := s.store.GetAllProgress(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Failed to read reading progress, sorting by title only", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil
	}

	return progress
}
