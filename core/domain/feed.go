// ABOUTME: Feed domain model represents a parsed OPDS/Atom catalog feed
// ABOUTME: Holds feed metadata, navigation links and the raw entries prior to resolution

package domain

import (
	"strings"
	"time"
)

// Link relations and media types used by OPDS catalogs
const (
	// RelAcquisition marks a link as a downloadable asset
	RelAcquisition = "http://opds-spec.org/acquisition"

	// RelImage marks a link as a full-size cover image
	RelImage = "http://opds-spec.org/image"

	// RelThumbnail marks a link as a cover thumbnail
	RelThumbnail = "http://opds-spec.org/image/thumbnail"

	// MediaTypeEPUB is the only e-book format the reader can open
	MediaTypeEPUB = "application/epub+zip"
)

// Feed represents a parsed OPDS feed
type Feed struct {
	// ID is the feed-level identifier, empty when the feed has none
	ID string

	// Title is the human-readable title of the feed
	Title string

	// Updated is the raw updated stamp of the feed
	Updated string

	// UpdatedParsed is Updated as a time, nil when it could not be parsed
	UpdatedParsed *time.Time

	// Links are the top-level navigation links
	Links []FeedLink

	// Entries contains the catalog items in document order
	Entries []ParsedEntry
}

// FeedLink is one navigable or acquirable resource attached to a feed or entry
type FeedLink struct {
	Href  string `json:"href"`
	Type  string `json:"type"`
	Rel   string `json:"rel"`
	Title string `json:"title,omitempty"`
}

// IsAcquisition reports whether the link relation marks a downloadable asset.
// Sub-relations such as ".../acquisition/open-access" count as well.
func (l FeedLink) IsAcquisition() bool {
	return l.Rel == RelAcquisition || strings.HasPrefix(l.Rel, RelAcquisition+"/")
}

// Category is a subject classification attached to an entry
type Category struct {
	Term  string `json:"term"`
	Label string `json:"label,omitempty"`
}

// Name returns the label, falling back to the term
func (c Category) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Term
}

// ParsedEntry is one catalog item as found in the source feed, pre-resolution
type ParsedEntry struct {
	// Index is the ordinal position of the entry in the document
	Index int

	// ID is taken verbatim from the feed, or synthesized as "entry-<index>"
	ID string

	// SyntheticID is true when ID was synthesized from Index
	SyntheticID bool

	Title   string
	Author  string
	Summary string

	// Published and Updated keep the raw stamps; the Parsed variants are nil
	// when the stamp is absent or unparseable
	Published       string
	PublishedParsed *time.Time
	Updated         string
	UpdatedParsed   *time.Time

	Categories []Category
	Links      []FeedLink
}
