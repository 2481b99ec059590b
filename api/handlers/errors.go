// ABOUTME: Error handling utilities for API handlers
// ABOUTME: Converts domain errors to appropriate HTTP responses

package handlers

import (
	stderrors "errors"

	"github.com/danielgtaylor/huma/v2"

	"bookshelf-api/core/catalog"
	"bookshelf-api/core/errors"
)

const catalogUnavailable = "catalog unavailable"

// toHumaError converts domain errors to appropriate Huma HTTP errors
func toHumaError(err error) error {
	if err == nil {
		return nil
	}

	if errors.IsNotFound(err) {
		return huma.Error404NotFound(err.Error())
	}

	if errors.IsValidation(err) {
		return huma.Error400BadRequest(err.Error())
	}

	// The feed server answered with something that is not an OPDS catalog
	if errors.IsFeedParse(err) {
		return huma.Error503ServiceUnavailable(catalogUnavailable, err)
	}

	if stderrors.Is(err, catalog.ErrSourceUnavailable) {
		return huma.Error503ServiceUnavailable(catalogUnavailable, err)
	}

	var apiErr *errors.ExternalAPIError
	if stderrors.As(err, &apiErr) {
		switch {
		case apiErr.API == "opds":
			return huma.Error503ServiceUnavailable(catalogUnavailable, err)
		case apiErr.StatusCode >= 500:
			return huma.Error503ServiceUnavailable("External service error", err)
		case apiErr.StatusCode == 429:
			return huma.Error429TooManyRequests("Rate limited by external service")
		case apiErr.StatusCode >= 400:
			return huma.Error400BadRequest("External service request error", err)
		default:
			return huma.Error500InternalServerError("Unexpected external service response", err)
		}
	}

	return huma.Error500InternalServerError("Internal server error", err)
}
