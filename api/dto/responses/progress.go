// ABOUTME: Response DTOs for reading progress and history endpoints
// ABOUTME: Wraps domain records so the JSON envelope stays stable

package responses

import (
	"time"

	"bookshelf-api/core/domain"
)

// AllProgressResponse lists every recorded progress keyed by book id
type AllProgressResponse struct {
	Progress map[string]domain.ReadingProgress `json:"progress"`
}

// HistoryResponse lists the reading history, newest first
type HistoryResponse struct {
	History []domain.HistoryEntry `json:"history"`
}

// ExportResponse is a full backup of progress and history
type ExportResponse struct {
	Progress   map[string]domain.ReadingProgress `json:"progress"`
	History    []domain.HistoryEntry             `json:"history"`
	ExportDate time.Time                         `json:"exportDate"`
}

// ImportResponse reports what an import replaced
type ImportResponse struct {
	ProgressEntries int `json:"progressEntries"`
	HistoryEntries  int `json:"historyEntries"`
}
