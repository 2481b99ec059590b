// ABOUTME: Mappers for converting between domain models and API DTOs
// ABOUTME: Keeps the catalog domain free of transport concerns

package mappers

import (
	"fmt"

	"bookshelf-api/api/dto/responses"
	"bookshelf-api/core/domain"
)

// ToBookResponse converts a domain Book to its API form
func ToBookResponse(book *domain.Book) *responses.BookResponse {
	if book == nil {
		return nil
	}

	return &responses.BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		CoverURL:      book.CoverURL,
		DownloadURL:   book.DownloadURL,
		PublishedDate: book.PublishedDate,
		Categories:    book.Categories,
	}
}

// ToBookResponses converts a book list, never returning nil
func ToBookResponses(books []domain.Book) []responses.BookResponse {
	out := make([]responses.BookResponse, 0, len(books))
	for i := range books {
		out = append(out, *ToBookResponse(&books[i]))
	}
	return out
}

// ToCoverColorResponse converts a color for the given book
func ToCoverColorResponse(book *domain.Book, color *domain.RGBColor) *responses.CoverColorResponse {
	if book == nil || color == nil {
		return nil
	}

	return &responses.CoverColorResponse{
		BookID:   book.ID,
		CoverURL: book.CoverURL,
		R:        color.R,
		G:        color.G,
		B:        color.B,
		Hex:      fmt.Sprintf("#%02x%02x%02x", color.R, color.G, color.B),
	}
}
