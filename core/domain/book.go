// ABOUTME: Book domain model is the canonical, UI-ready catalog record
// ABOUTME: Catalog groups the books of one feed fetch keyed by unique id

package domain

import (
	"errors"
	"time"
)

// Book is a resolved catalog entry with exactly one usable download link
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description,omitempty"`
	CoverURL      string   `json:"coverUrl,omitempty"`
	DownloadURL   string   `json:"downloadUrl"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

// Validate checks the fields every emitted book must carry
func (b *Book) Validate() error {
	if b.ID == "" {
		return errors.New("book id cannot be empty")
	}

	if b.DownloadURL == "" {
		return errors.New("book download URL cannot be empty")
	}

	return nil
}

// Catalog is the set of books produced by one feed fetch.
// It is built once and replaced wholesale on refresh.
type Catalog struct {
	// Books holds the catalog in feed order
	Books []Book

	// FeedID and FeedTitle describe the source feed
	FeedID    string
	FeedTitle string

	// FetchedAt is when the feed was ingested
	FetchedAt time.Time

	// Dropped counts entries excluded during resolution
	Dropped int

	index map[string]int
}

// NewCatalog builds a catalog from books, keeping the first book for each id.
// It returns the ids that were discarded as duplicates.
func NewCatalog(books []Book) (*Catalog, []string) {
	c := &Catalog{
		Books: make([]Book, 0, len(books)),
		index: make(map[string]int, len(books)),
	}

	var duplicates []string
	for _, b := range books {
		if _, exists := c.index[b.ID]; exists {
			duplicates = append(duplicates, b.ID)
			continue
		}
		c.index[b.ID] = len(c.Books)
		c.Books = append(c.Books, b)
	}

	return c, duplicates
}

// Get returns the book with the given id
func (c *Catalog) Get(id string) (Book, bool) {
	if c == nil {
		return Book{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Book{}, false
	}
	return c.Books[i], true
}

// Len returns the number of books in the catalog
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Books)
}

// Snapshot returns a copy of the books so callers can reorder freely
func (c *Catalog) Snapshot() []Book {
	if c == nil {
		return []Book{}
	}
	out := make([]Book, len(c.Books))
	copy(out, c.Books)
	return out
}

// RGBColor represents an RGB color value
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}
