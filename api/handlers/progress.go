// ABOUTME: Progress handlers for the Huma API
// ABOUTME: Reading progress, reading history and their export and import

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"bookshelf-api/api/dto/requests"
	"bookshelf-api/api/dto/responses"
	"bookshelf-api/core/domain"
	"bookshelf-api/core/progress"
)

// ProgressService defines the methods needed from the progress service
type ProgressService interface {
	SaveProgress(ctx context.Context, bookID string, u progress.Update) (*domain.ReadingProgress, error)
	GetProgress(ctx context.Context, bookID string) (*domain.ReadingProgress, error)
	GetAllProgress(ctx context.Context) (map[string]domain.ReadingProgress, error)
	RemoveProgress(ctx context.Context, bookID string) error
	AddToHistory(ctx context.Context, bookID, title, author string) (*domain.HistoryEntry, error)
	GetHistory(ctx context.Context) ([]domain.HistoryEntry, error)
	Export(ctx context.Context) (*progress.Export, error)
	Import(ctx context.Context, data progress.Export) error
}

// ProgressHandler handles progress and history requests
type ProgressHandler struct {
	progress ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progress ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// RegisterRoutes registers progress and history routes
func (h *ProgressHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listProgress",
		Method:      http.MethodGet,
		Path:        "/progress",
		Summary:     "List reading progress",
		Tags:        []string{"Progress"},
	}, h.ListProgress)

	huma.Register(api, huma.Operation{
		OperationID: "exportProgress",
		Method:      http.MethodGet,
		Path:        "/progress/export",
		Summary:     "Export progress and history",
		Tags:        []string{"Progress"},
	}, h.ExportProgress)

	huma.Register(api, huma.Operation{
		OperationID: "importProgress",
		Method:      http.MethodPost,
		Path:        "/progress/import",
		Summary:     "Import progress and history",
		Description: "Replaces the sections present in the body",
		Tags:        []string{"Progress"},
	}, h.ImportProgress)

	huma.Register(api, huma.Operation{
		OperationID: "getProgress",
		Method:      http.MethodGet,
		Path:        "/progress/{bookId}",
		Summary:     "Get the reading progress of a book",
		Tags:        []string{"Progress"},
	}, h.GetProgress)

	huma.Register(api, huma.Operation{
		OperationID: "saveProgress",
		Method:      http.MethodPut,
		Path:        "/progress/{bookId}",
		Summary:     "Save the reading progress of a book",
		Tags:        []string{"Progress"},
	}, h.SaveProgress)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteProgress",
		Method:        http.MethodDelete,
		Path:          "/progress/{bookId}",
		Summary:       "Forget the reading progress of a book",
		DefaultStatus: http.StatusNoContent,
		Tags:          []string{"Progress"},
	}, h.DeleteProgress)

	huma.Register(api, huma.Operation{
		OperationID: "getHistory",
		Method:      http.MethodGet,
		Path:        "/history",
		Summary:     "Reading history, newest first",
		Tags:        []string{"Progress"},
	}, h.GetHistory)

	huma.Register(api, huma.Operation{
		OperationID:   "addHistory",
		Method:        http.MethodPost,
		Path:          "/history",
		Summary:       "Record a book in the reading history",
		DefaultStatus: http.StatusCreated,
		Tags:          []string{"Progress"},
	}, h.AddHistory)
}

// ListProgressOutput defines the output for the ListProgress operation
type ListProgressOutput struct {
	Body responses.AllProgressResponse
}

// ListProgress handles GET /progress
func (h *ProgressHandler) ListProgress(ctx context.Context, input *struct{}) (*ListProgressOutput, error) {
	all, err := h.progress.GetAllProgress(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	if all == nil {
		all = map[string]domain.ReadingProgress{}
	}

	return &ListProgressOutput{Body: responses.AllProgressResponse{Progress: all}}, nil
}

// BookProgressInput identifies a book in the path
type BookProgressInput struct {
	BookID string `path:"bookId" minLength:"1" doc:"Book identifier"`
}

// ProgressOutput carries a single progress record
type ProgressOutput struct {
	Body domain.ReadingProgress
}

// GetProgress handles GET /progress/{bookId}
func (h *ProgressHandler) GetProgress(ctx context.Context, input *BookProgressInput) (*ProgressOutput, error) {
	p, err := h.progress.GetProgress(ctx, input.BookID)
	if err != nil {
		return nil, toHumaError(err)
	}
	if p == nil {
		return nil, huma.Error404NotFound("no progress recorded for book " + input.BookID)
	}

	return &ProgressOutput{Body: *p}, nil
}

// SaveProgressInput defines the input for the SaveProgress operation
type SaveProgressInput struct {
	BookID string `path:"bookId" minLength:"1" doc:"Book identifier"`
	Body   requests.SaveProgressRequest
}

// SaveProgress handles PUT /progress/{bookId}
func (h *ProgressHandler) SaveProgress(ctx context.Context, input *SaveProgressInput) (*ProgressOutput, error) {
	p, err := h.progress.SaveProgress(ctx, input.BookID, progress.Update{
		Location:     input.Body.Location,
		Progress:     input.Body.Progress,
		CurrentPage:  input.Body.CurrentPage,
		TotalPages:   input.Body.TotalPages,
		ChapterTitle: input.Body.ChapterTitle,
	})
	if err != nil {
		return nil, toHumaError(err)
	}

	return &ProgressOutput{Body: *p}, nil
}

// DeleteProgress handles DELETE /progress/{bookId}
func (h *ProgressHandler) DeleteProgress(ctx context.Context, input *BookProgressInput) (*struct{}, error) {
	if err := h.progress.RemoveProgress(ctx, input.BookID); err != nil {
		return nil, toHumaError(err)
	}
	return nil, nil
}

// HistoryOutput defines the output for the GetHistory operation
type HistoryOutput struct {
	Body responses.HistoryResponse
}

// GetHistory handles GET /history
func (h *ProgressHandler) GetHistory(ctx context.Context, input *struct{}) (*HistoryOutput, error) {
	history, err := h.progress.GetHistory(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	if history == nil {
		history = []domain.HistoryEntry{}
	}

	return &HistoryOutput{Body: responses.HistoryResponse{History: history}}, nil
}

// AddHistoryInput defines the input for the AddHistory operation
type AddHistoryInput struct {
	Body requests.AddHistoryRequest
}

// AddHistoryOutput defines the output for the AddHistory operation
type AddHistoryOutput struct {
	Body domain.HistoryEntry
}

// AddHistory handles POST /history
func (h *ProgressHandler) AddHistory(ctx context.Context, input *AddHistoryInput) (*AddHistoryOutput, error) {
	entry, err := h.progress.AddToHistory(ctx, input.Body.BookID, input.Body.BookTitle, input.Body.BookAuthor)
	if err != nil {
		return nil, toHumaError(err)
	}

	return &AddHistoryOutput{Body: *entry}, nil
}

// ExportOutput defines the output for the ExportProgress operation
type ExportOutput struct {
	Body responses.ExportResponse
}

// ExportProgress handles GET /progress/export
func (h *ProgressHandler) ExportProgress(ctx context.Context, input *struct{}) (*ExportOutput, error) {
	data, err := h.progress.Export(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}

	body := responses.ExportResponse{
		Progress:   data.Progress,
		History:    data.History,
		ExportDate: data.ExportDate,
	}
	if body.Progress == nil {
		body.Progress = map[string]domain.ReadingProgress{}
	}
	if body.History == nil {
		body.History = []domain.HistoryEntry{}
	}

	return &ExportOutput{Body: body}, nil
}

// ImportInput defines the input for the ImportProgress operation
type ImportInput struct {
	Body requests.ImportRequest
}

// ImportOutput defines the output for the ImportProgress operation
type ImportOutput struct {
	Body responses.ImportResponse
}

// ImportProgress handles POST /progress/import
func (h *ProgressHandler) ImportProgress(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	err := h.progress.Import(ctx, progress.Export{
		Progress: input.Body.Progress,
		History:  input.Body.History,
	})
	if err != nil {
		return nil, toHumaError(err)
	}

	return &ImportOutput{
		Body: responses.ImportResponse{
			ProgressEntries: len(input.Body.Progress),
			HistoryEntries:  len(input.Body.History),
		},
	}, nil
}
