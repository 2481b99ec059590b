// ABOUTME: Public types for the bookshelf library API
// ABOUTME: Provides user-friendly types that wrap internal domain models

package bookshelf

import (
	"time"

	"bookshelf-api/core/catalog"
	"bookshelf-api/core/domain"
)

// Book is a catalog entry with a download link
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
	DownloadURL   string   `json:"download_url"`
	PublishedDate string   `json:"published_date,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

// Progress is the last known reading position of a book
type Progress struct {
	BookID       string    `json:"book_id"`
	Location     string    `json:"location"`
	Progress     float64   `json:"progress"`
	LastRead     time.Time `json:"last_read"`
	CurrentPage  int       `json:"current_page,omitempty"`
	TotalPages   int       `json:"total_pages,omitempty"`
	ChapterTitle string    `json:"chapter_title,omitempty"`
}

// ProgressUpdate is what a reader reports when saving its position
type ProgressUpdate struct {
	Location     string
	Progress     float64
	CurrentPage  int
	TotalPages   int
	ChapterTitle string
}

// HistoryEntry records one book in the reading history
type HistoryEntry struct {
	BookID     string    `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	BookAuthor string    `json:"book_author"`
	LastRead   time.Time `json:"last_read"`
}

// CatalogInfo summarizes the loaded catalog
type CatalogInfo struct {
	FeedTitle string    `json:"feed_title"`
	Books     int       `json:"books"`
	Dropped   int       `json:"dropped"`
	FetchedAt time.Time `json:"fetched_at"`
}

func bookToPublic(b domain.Book) Book {
	return Book{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Description:   b.Description,
		CoverURL:      b.CoverURL,
		DownloadURL:   b.DownloadURL,
		PublishedDate: b.PublishedDate,
		Categories:    b.Categories,
	}
}

func booksToPublic(books []domain.Book) []Book {
	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = bookToPublic(b)
	}
	return out
}

func progressToPublic(p *domain.ReadingProgress) *Progress {
	if p == nil {
		return nil
	}
	return &Progress{
		BookID:       p.BookID,
		Location:     p.Location,
		Progress:     p.Progress,
		LastRead:     p.LastRead,
		CurrentPage:  p.CurrentPage,
		TotalPages:   p.TotalPages,
		ChapterTitle: p.ChapterTitle,
	}
}

func historyToPublic(entries []domain.HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntry{
			BookID:     e.BookID,
			BookTitle:  e.BookTitle,
			BookAuthor: e.BookAuthor,
			LastRead:   e.LastRead,
		}
	}
	return out
}

func catalogInfo(c *domain.Catalog) *CatalogInfo {
	return &CatalogInfo{
		FeedTitle: c.FeedTitle,
		Books:     c.Len(),
		Dropped:   c.Dropped,
		FetchedAt: c.FetchedAt,
	}
}

// applyPagination returns one 1-based page of books
func applyPagination(books []Book, page, perPage int) []Book {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = catalog.DefaultPerPage
	}
	start := (page - 1) * perPage
	if start >= len(books) {
		return []Book{}
	}
	return books[start:min(start+perPage, len(books))]
}
