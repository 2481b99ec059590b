// ABOUTME: Reading progress domain models owned by the persistence layer
// ABOUTME: Consumed read-only by the ranking engine on every ranking pass

package domain

import "time"

// ReadingProgress is the last known reading position of a book
type ReadingProgress struct {
	BookID string `json:"bookId"`

	// Location is the reader's position marker (an EPUB CFI)
	Location string `json:"location"`

	// Progress is the fraction read, in [0,1]
	Progress float64 `json:"progress"`

	// LastRead is zero when the book has never been opened
	LastRead time.Time `json:"lastRead"`

	CurrentPage  int    `json:"currentPage,omitempty"`
	TotalPages   int    `json:"totalPages,omitempty"`
	ChapterTitle string `json:"chapterTitle,omitempty"`
}

// HistoryEntry records one book in the reading history
type HistoryEntry struct {
	BookID     string    `json:"bookId"`
	BookTitle  string    `json:"bookTitle"`
	BookAuthor string    `json:"bookAuthor"`
	LastRead   time.Time `json:"lastRead"`
}

// SortingStats summarizes how much progress data backs a priority sort
type SortingStats struct {
	WithProgress    int    `json:"withProgress"`
	WithLastRead    int    `json:"withLastRead"`
	TotalBooks      int    `json:"totalBooks"`
	MostRecentRead  string `json:"mostRecentRead,omitempty"`
	HighestProgress int    `json:"highestProgress"`
}
