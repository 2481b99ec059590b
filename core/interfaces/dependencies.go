// ABOUTME: Dependencies bundle the external collaborators every core service is built from
// ABOUTME: Services treat a nil Logger as silent and fail on use when Cache or HTTPClient is missing

package interfaces

// Dependencies holds the external collaborators of the catalog, progress and cover color services
type Dependencies struct {
	// Cache stores raw feeds, reading progress and cover colors
	Cache Cache

	// HTTPClient fetches the OPDS feed and cover images
	HTTPClient HTTPClient

	// Logger may be nil
	Logger Logger
}
