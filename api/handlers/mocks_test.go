package handlers

import (
	"context"

	"bookshelf-api/core/catalog"
	"bookshelf-api/core/domain"
	"bookshelf-api/core/progress"
	"bookshelf-api/core/workers"
)

type mockCatalogService struct {
	booksFunc       func(ctx context.Context, query string) ([]domain.Book, error)
	bookFunc        func(ctx context.Context, id string) (*domain.Book, error)
	suggestionsFunc func(ctx context.Context, query string, limit int) ([]string, error)
	refreshFunc     func(ctx context.Context) (*domain.Catalog, error)
	statsFunc       func(ctx context.Context) (*catalog.Stats, error)
}

func (m *mockCatalogService) Books(ctx context.Context, query string) ([]domain.Book, error) {
	if m.booksFunc != nil {
		return m.booksFunc(ctx, query)
	}
	return []domain.Book{}, nil
}

func (m *mockCatalogService) Book(ctx context.Context, id string) (*domain.Book, error) {
	if m.bookFunc != nil {
		return m.bookFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCatalogService) Suggestions(ctx context.Context, query string, limit int) ([]string, error) {
	if m.suggestionsFunc != nil {
		return m.suggestionsFunc(ctx, query, limit)
	}
	return []string{}, nil
}

func (m *mockCatalogService) Refresh(ctx context.Context) (*domain.Catalog, error) {
	if m.refreshFunc != nil {
		return m.refreshFunc(ctx)
	}
	return nil, nil
}

func (m *mockCatalogService) Stats(ctx context.Context) (*catalog.Stats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx)
	}
	return &catalog.Stats{}, nil
}

type mockColorService struct {
	extractFunc func(ctx context.Context, imageURL string) (*domain.RGBColor, error)
}

func (m *mockColorService) ExtractColor(ctx context.Context, imageURL string) (*domain.RGBColor, error) {
	if m.extractFunc != nil {
		return m.extractFunc(ctx, imageURL)
	}
	return &domain.RGBColor{R: 128, G: 128, B: 128}, nil
}

func (m *mockColorService) GetCachedColor(ctx context.Context, imageURL string) (*domain.RGBColor, error) {
	return nil, nil
}

type stubWorker struct {
	status workers.RefreshStatus
}

func (s stubWorker) Status() workers.RefreshStatus { return s.status }

type mockProgressService struct {
	saveFunc    func(ctx context.Context, bookID string, u progress.Update) (*domain.ReadingProgress, error)
	getFunc     func(ctx context.Context, bookID string) (*domain.ReadingProgress, error)
	allFunc     func(ctx context.Context) (map[string]domain.ReadingProgress, error)
	removeFunc  func(ctx context.Context, bookID string) error
	addFunc     func(ctx context.Context, bookID, title, author string) (*domain.HistoryEntry, error)
	historyFunc func(ctx context.Context) ([]domain.HistoryEntry, error)
	exportFunc  func(ctx context.Context) (*progress.Export, error)
	importFunc  func(ctx context.Context, data progress.Export) error
}

func (m *mockProgressService) SaveProgress(ctx context.Context, bookID string, u progress.Update) (*domain.ReadingProgress, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, bookID, u)
	}
	return &domain.ReadingProgress{BookID: bookID, Progress: u.Progress}, nil
}

func (m *mockProgressService) GetProgress(ctx context.Context, bookID string) (*domain.ReadingProgress, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, bookID)
	}
	return nil, nil
}

func (m *mockProgressService) GetAllProgress(ctx context.Context) (map[string]domain.ReadingProgress, error) {
	if m.allFunc != nil {
		return m.allFunc(ctx)
	}
	return nil, nil
}

func (m *mockProgressService) RemoveProgress(ctx context.Context, bookID string) error {
	if m.removeFunc != nil {
		return m.removeFunc(ctx, bookID)
	}
	return nil
}

func (m *mockProgressService) AddToHistory(ctx context.Context, bookID, title, author string) (*domain.HistoryEntry, error) {
	if m.addFunc != nil {
		return m.addFunc(ctx, bookID, title, author)
	}
	return &domain.HistoryEntry{BookID: bookID, BookTitle: title, BookAuthor: author}, nil
}

func (m *mockProgressService) GetHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	if m.historyFunc != nil {
		return m.historyFunc(ctx)
	}
	return nil, nil
}

func (m *mockProgressService) Export(ctx context.Context) (*progress.Export, error) {
	if m.exportFunc != nil {
		return m.exportFunc(ctx)
	}
	return &progress.Export{}, nil
}

func (m *mockProgressService) Import(ctx context.Context, data progress.Export) error {
	if m.importFunc != nil {
		return m.importFunc(ctx, data)
	}
	return nil
}
