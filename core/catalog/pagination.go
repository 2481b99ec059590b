// ABOUTME: Pagination utilities for catalog listings
// ABOUTME: Slices ranked book lists into pages for API responses

package catalog

import "bookshelf-api/core/domain"

// DefaultPerPage is used when a caller asks for a non-positive page size
const DefaultPerPage = 20

// Paginate returns one page of books. Pages are 1-based.
func Paginate(books []domain.Book, page, perPage int) []domain.Book {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	start := (page - 1) * perPage
	if start >= len(books) {
		return []domain.Book{}
	}

	end := min(start+perPage, len(books))
	return books[start:end]
}

// TotalPages returns how many pages total items fill
func TotalPages(total, perPage int) int {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return (total + perPage - 1) / perPage
}
