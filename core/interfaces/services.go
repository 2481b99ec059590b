// ABOUTME: Service interfaces for the core business logic
// ABOUTME: Defines contracts for services used throughout the application

package interfaces

import (
	"context"

	"bookshelf-api/core/domain"
)

// URLResolver rewrites feed hrefs into URLs the client can fetch
type URLResolver interface {
	// Resolve returns the fetchable form of href. Empty input yields empty output.
	Resolve(href string) string
}

// CoverColorService extracts a dominant color from book cover images
type CoverColorService interface {
	ExtractColor(ctx context.Context, imageURL string) (*domain.RGBColor, error)
	GetCachedColor(ctx context.Context, imageURL string) (*domain.RGBColor, error)
}
