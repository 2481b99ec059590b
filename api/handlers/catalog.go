// ABOUTME: Catalog handlers for the Huma API
// ABOUTME: Serves ranked book listings, lookups, suggestions, refresh and stats

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"bookshelf-api/api/dto/mappers"
	"bookshelf-api/api/dto/responses"
	"bookshelf-api/core/catalog"
	"bookshelf-api/core/domain"
	"bookshelf-api/core/interfaces"
	"bookshelf-api/core/workers"
	"bookshelf-api/pkg/featureflags"
)

// CatalogService defines the methods needed from the catalog service
type CatalogService interface {
	Books(ctx context.Context, query string) ([]domain.Book, error)
	Book(ctx context.Context, id string) (*domain.Book, error)
	Suggestions(ctx context.Context, query string, limit int) ([]string, error)
	Refresh(ctx context.Context) (*domain.Catalog, error)
	Stats(ctx context.Context) (*catalog.Stats, error)
}

// RefreshStatusProvider reports on background refreshes
type RefreshStatusProvider interface {
	Status() workers.RefreshStatus
}

// CatalogHandler handles catalog-related HTTP requests
type CatalogHandler struct {
	catalog CatalogService
	colors  interfaces.CoverColorService
	worker  RefreshStatusProvider
}

// NewCatalogHandler creates a new catalog handler. colors and worker may be nil.
func NewCatalogHandler(catalog CatalogService, colors interfaces.CoverColorService, worker RefreshStatusProvider) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		colors:  colors,
		worker:  worker,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/books",
		Summary:     "List books",
		Description: "Returns the catalog ordered by reading priority, or by relevance when a query is given",
		Tags:        []string{"Catalog"},
	}, h.ListBooks)

	huma.Register(api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/books/{id}",
		Summary:     "Get a book",
		Tags:        []string{"Catalog"},
	}, h.GetBook)

	huma.Register(api, huma.Operation{
		OperationID: "getCoverColor",
		Method:      http.MethodGet,
		Path:        "/books/{id}/cover-color",
		Summary:     "Get the prominent cover color of a book",
		Tags:        []string{"Catalog"},
	}, h.GetCoverColor)

	huma.Register(api, huma.Operation{
		OperationID: "getSuggestions",
		Method:      http.MethodGet,
		Path:        "/suggestions",
		Summary:     "Search suggestions",
		Description: "Completions drawn from titles, authors and their words",
		Tags:        []string{"Catalog"},
	}, h.GetSuggestions)

	huma.Register(api, huma.Operation{
		OperationID: "refreshCatalog",
		Method:      http.MethodPost,
		Path:        "/catalog/refresh",
		Summary:     "Refresh the catalog",
		Description: "Fetches the feed from its source and replaces the catalog",
		Tags:        []string{"Catalog"},
	}, h.RefreshCatalog)

	huma.Register(api, huma.Operation{
		OperationID: "getCatalogStats",
		Method:      http.MethodGet,
		Path:        "/catalog/stats",
		Summary:     "Catalog statistics",
		Tags:        []string{"Catalog"},
	}, h.GetStats)
}

// ListBooksInput defines the input for the ListBooks operation
type ListBooksInput struct {
	Query        string `query:"q" maxLength:"256" doc:"Search query"`
	Page         int    `query:"page" minimum:"1" default:"1" doc:"Page number (1-based)"`
	ItemsPerPage int    `query:"items_per_page" minimum:"1" maximum:"100" default:"20" doc:"Number of books per page"`
}

// ListBooksOutput defines the output for the ListBooks operation
type ListBooksOutput struct {
	Body responses.BooksPageResponse
}

// ListBooks handles GET /books
func (h *CatalogHandler) ListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	books, err := h.catalog.Books(ctx, input.Query)
	if err != nil {
		return nil, toHumaError(err)
	}

	page := catalog.Paginate(books, input.Page, input.ItemsPerPage)

	return &ListBooksOutput{
		Body: responses.BooksPageResponse{
			Books:        mappers.ToBookResponses(page),
			Query:        input.Query,
			Page:         input.Page,
			ItemsPerPage: input.ItemsPerPage,
			TotalItems:   len(books),
			TotalPages:   catalog.TotalPages(len(books), input.ItemsPerPage),
		},
	}, nil
}

// BookIDInput identifies a book in the path
type BookIDInput struct {
	ID string `path:"id" minLength:"1" doc:"Book identifier"`
}

// GetBookOutput defines the output for the GetBook operation
type GetBookOutput struct {
	Body responses.BookResponse
}

// GetBook handles GET /books/{id}
func (h *CatalogHandler) GetBook(ctx context.Context, input *BookIDInput) (*GetBookOutput, error) {
	book, err := h.catalog.Book(ctx, input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}

	return &GetBookOutput{Body: *mappers.ToBookResponse(book)}, nil
}

// GetCoverColorOutput defines the output for the GetCoverColor operation
type GetCoverColorOutput struct {
	Body responses.CoverColorResponse
}

// GetCoverColor handles GET /books/{id}/cover-color
func (h *CatalogHandler) GetCoverColor(ctx context.Context, input *BookIDInput) (*GetCoverColorOutput, error) {
	if h.colors == nil || !featureflags.IsEnabled(ctx, featureflags.CoverColorEnabled) {
		return nil, huma.Error404NotFound("cover colors are disabled")
	}

	book, err := h.catalog.Book(ctx, input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	if book.CoverURL == "" {
		return nil, huma.Error404NotFound("book has no cover")
	}

	color, err := h.colors.ExtractColor(ctx, book.CoverURL)
	if err != nil {
		return nil, toHumaError(err)
	}

	return &GetCoverColorOutput{Body: *mappers.ToCoverColorResponse(book, color)}, nil
}

// GetSuggestionsInput defines the input for the GetSuggestions operation
type GetSuggestionsInput struct {
	Query string `query:"q" maxLength:"256" doc:"Partial query, at least two characters"`
	Max   int    `query:"max" minimum:"1" maximum:"50" default:"5" doc:"Maximum number of suggestions"`
}

// GetSuggestionsOutput defines the output for the GetSuggestions operation
type GetSuggestionsOutput struct {
	Body responses.SuggestionsResponse
}

// GetSuggestions handles GET /suggestions
func (h *CatalogHandler) GetSuggestions(ctx context.Context, input *GetSuggestionsInput) (*GetSuggestionsOutput, error) {
	suggestions, err := h.catalog.Suggestions(ctx, input.Query, input.Max)
	if err != nil {
		return nil, toHumaError(err)
	}

	return &GetSuggestionsOutput{
		Body: responses.SuggestionsResponse{Query: input.Query, Suggestions: suggestions},
	}, nil
}

// RefreshCatalogOutput defines the output for the RefreshCatalog operation
type RefreshCatalogOutput struct {
	Body responses.RefreshResponse
}

// RefreshCatalog handles POST /catalog/refresh
func (h *CatalogHandler) RefreshCatalog(ctx context.Context, input *struct{}) (*RefreshCatalogOutput, error) {
	c, err := h.catalog.Refresh(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}

	return &RefreshCatalogOutput{
		Body: responses.RefreshResponse{
			FeedTitle: c.FeedTitle,
			Books:     c.Len(),
			Dropped:   c.Dropped,
			FetchedAt: c.FetchedAt,
		},
	}, nil
}

// StatsBody combines catalog statistics with the background refresh status
type StatsBody struct {
	catalog.Stats
	Refresh *workers.RefreshStatus `json:"refresh,omitempty"`
}

// GetStatsOutput defines the output for the GetStats operation
type GetStatsOutput struct {
	Body StatsBody
}

// GetStats handles GET /catalog/stats
func (h *CatalogHandler) GetStats(ctx context.Context, input *struct{}) (*GetStatsOutput, error) {
	stats, err := h.catalog.Stats(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}

	body := StatsBody{Stats: *stats}
	if h.worker != nil {
		status := h.worker.Status()
		body.Refresh = &status
	}

	return &GetStatsOutput{Body: body}, nil
}
