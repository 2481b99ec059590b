// ABOUTME: Response DTOs for catalog endpoints
// ABOUTME: Shapes books, pages, suggestions and cover colors for API consumers

package responses

import "time"

// BookResponse is a catalog book as served by the API
type BookResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description,omitempty"`
	CoverURL      string   `json:"coverUrl,omitempty"`
	DownloadURL   string   `json:"downloadUrl"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

// BooksPageResponse is one page of a ranked book listing
type BooksPageResponse struct {
	Books        []BookResponse `json:"books"`
	Query        string         `json:"query,omitempty"`
	Page         int            `json:"page"`
	ItemsPerPage int            `json:"itemsPerPage"`
	TotalItems   int            `json:"totalItems"`
	TotalPages   int            `json:"totalPages"`
}

// SuggestionsResponse lists completions for a partial query
type SuggestionsResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

// RefreshResponse summarizes a completed catalog refresh
type RefreshResponse struct {
	FeedTitle string    `json:"feedTitle"`
	Books     int       `json:"books"`
	Dropped   int       `json:"dropped"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// CoverColorResponse is the prominent color of a book cover
type CoverColorResponse struct {
	BookID   string `json:"bookId"`
	CoverURL string `json:"coverUrl"`
	R        uint8  `json:"r"`
	G        uint8  `json:"g"`
	B        uint8  `json:"b"`
	Hex      string `json:"hex"`
}
