// ABOUTME: Storage interfaces for persisting domain entities
// ABOUTME: Defines contracts for data persistence operations

package interfaces

import (
	"context"

	"bookshelf-api/core/domain"
)

// ProgressStore provides read access to reading progress.
// Ranking reads through it on every pass and never caches the result.
type ProgressStore interface {
	// GetProgress returns the progress of one book, or nil if none was recorded
	GetProgress(ctx context.Context, bookID string) (*domain.ReadingProgress, error)

	// GetAllProgress returns every recorded progress keyed by book id
	GetAllProgress(ctx context.Context) (map[string]domain.ReadingProgress, error)
}
