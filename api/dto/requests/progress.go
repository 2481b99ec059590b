// ABOUTME: Request DTOs for reading progress and history endpoints
// ABOUTME: Huma validates ranges from the struct tags before handlers run

package requests

import (
	"time"

	"bookshelf-api/core/domain"
)

// SaveProgressRequest is the body of PUT /progress/{bookId}
type SaveProgressRequest struct {
	// Location is the reader position marker, usually an EPUB CFI
	Location string `json:"location,omitempty" maxLength:"2048" doc:"Reader position marker"`

	// Progress is the fraction read
	Progress float64 `json:"progress" minimum:"0" maximum:"1" doc:"Fraction read, 0 to 1"`

	CurrentPage  int    `json:"currentPage,omitempty" minimum:"0" doc:"Current page number"`
	TotalPages   int    `json:"totalPages,omitempty" minimum:"0" doc:"Total page count"`
	ChapterTitle string `json:"chapterTitle,omitempty" maxLength:"512" doc:"Title of the current chapter"`
}

// AddHistoryRequest is the body of POST /history
type AddHistoryRequest struct {
	BookID     string `json:"bookId" minLength:"1" doc:"Book identifier"`
	BookTitle  string `json:"bookTitle,omitempty" doc:"Book title at the time it was read"`
	BookAuthor string `json:"bookAuthor,omitempty" doc:"Book author at the time it was read"`
}

// ImportRequest is the body of POST /progress/import. A section left out
// keeps the stored one.
type ImportRequest struct {
	Progress map[string]domain.ReadingProgress `json:"progress,omitempty" doc:"Progress keyed by book id"`
	History  []domain.HistoryEntry             `json:"history,omitempty" doc:"Reading history, newest first"`

	// ExportDate is accepted so an export can be posted back as is
	ExportDate *time.Time `json:"exportDate,omitempty" doc:"Date of the export, ignored"`
}
