package interfaces

import (
	"context"
	"io"
)

// HTTPClient fetches remote resources. The catalog reads its OPDS feed and
// the cover color service its images through it, so tests can swap in fakes.
type HTTPClient interface {
	// Get fetches url. A non-2xx status is not an error; callers inspect StatusCode.
	Get(ctx context.Context, url string) (Response, error)

	// Post sends body to url
	Post(ctx context.Context, url string, body io.Reader) (Response, error)
}

// Response is a received HTTP response. Callers must close Body.
type Response interface {
	StatusCode() int
	Body() io.ReadCloser

	// Header looks up a header case-insensitively, returning "" when absent
	Header(key string) string
}
