// ABOUTME: Resolver turns parsed OPDS entries into canonical Book records
// ABOUTME: Picks the download link with an ordered rule list and drops unusable entries

package catalog

import (
	"strings"
	"time"

	"bookshelf-api/core/domain"
	"bookshelf-api/core/interfaces"
)

// DropReason explains why an entry produced no Book
type DropReason string

const (
	// DropNoAcquisition means the entry has no acquisition link at all
	DropNoAcquisition DropReason = "no_acquisition_link"

	// DropIncompatibleFormat means the only acquirable asset is a denylisted format
	DropIncompatibleFormat DropReason = "incompatible_format"

	// DropDuplicateID means an earlier entry already claimed the id
	DropDuplicateID DropReason = "duplicate_id"
)

// DropEvent describes one entry excluded from the catalog
type DropEvent struct {
	EntryID string
	Index   int
	Title   string
	Reason  DropReason
	Href    string
}

// DropFunc receives diagnostics for excluded entries
type DropFunc func(DropEvent)

// mediaTypeMobi is the legacy Kindle format the reader cannot open
const mediaTypeMobi = "application/x-mobipocket-ebook"

// linkRule is one step of the download link heuristic
type linkRule struct {
	name  string
	match func(domain.FeedLink) bool
}

// downloadRules are evaluated in order; the first rule with a matching link wins
var downloadRules = []linkRule{
	{
		name:  "epub media type",
		match: func(l domain.FeedLink) bool { return l.Type == domain.MediaTypeEPUB },
	},
	{
		name:  "acquisition in epub folder",
		match: func(l domain.FeedLink) bool { return l.IsAcquisition() && strings.Contains(l.Href, "/epub/") },
	},
	{
		name:  "acquisition not denylisted",
		match: func(l domain.FeedLink) bool { return l.IsAcquisition() && !isDenylisted(l) },
	},
	{
		name:  "any acquisition",
		match: func(l domain.FeedLink) bool { return l.IsAcquisition() },
	},
}

// isDenylisted reports whether the link points at a format the reader cannot open
func isDenylisted(l domain.FeedLink) bool {
	return strings.Contains(l.Href, "/mobi/") ||
		strings.Contains(strings.ToLower(l.Href), ".mobi") ||
		l.Type == mediaTypeMobi
}

// isCover reports whether the link is usable as cover art
func isCover(l domain.FeedLink) bool {
	return strings.HasPrefix(l.Type, "image/") ||
		l.Rel == domain.RelImage ||
		l.Rel == domain.RelThumbnail ||
		strings.Contains(l.Href, "cover")
}

// SelectDownloadLink applies the download rules to links and returns the winner
// with the name of the rule that matched. Links without an href never match.
// ok is false when no rule matches.
func SelectDownloadLink(links []domain.FeedLink) (link domain.FeedLink, rule string, ok bool) {
	for _, r := range downloadRules {
		for _, l := range links {
			if l.Href != "" && r.match(l) {
				return l, r.name, true
			}
		}
	}
	return domain.FeedLink{}, "", false
}

// SelectCoverLink returns the first link usable as a cover
func SelectCoverLink(links []domain.FeedLink) (domain.FeedLink, bool) {
	for _, l := range links {
		if isCover(l) {
			return l, true
		}
	}
	return domain.FeedLink{}, false
}

// Resolver converts parsed entries into books
type Resolver struct {
	urls   interfaces.URLResolver
	onDrop DropFunc
}

// NewResolver creates a resolver. A nil urls leaves hrefs untouched and a nil
// onDrop discards drop diagnostics.
func NewResolver(urls interfaces.URLResolver, onDrop DropFunc) *Resolver {
	return &Resolver{urls: urls, onDrop: onDrop}
}

// Resolve converts one entry into a Book, or returns nil when the entry has
// no link the reader can open. It never fails.
func (r *Resolver) Resolve(entry domain.ParsedEntry) *domain.Book {
	download, _, ok := SelectDownloadLink(entry.Links)
	if !ok {
		r.drop(entry, DropNoAcquisition, "")
		return nil
	}

	if isDenylisted(download) {
		r.drop(entry, DropIncompatibleFormat, download.Href)
		return nil
	}

	book := &domain.Book{
		ID:            entry.ID,
		Title:         entry.Title,
		Author:        entry.Author,
		Description:   entry.Summary,
		DownloadURL:   r.resolve(download.Href),
		PublishedDate: entry.Published,
	}

	if cover, ok := SelectCoverLink(entry.Links); ok {
		book.CoverURL = r.resolve(cover.Href)
	}

	if len(entry.Categories) > 0 {
		categories := make([]string, 0, len(entry.Categories))
		for _, c := range entry.Categories {
			if name := c.Name(); name != "" {
				categories = append(categories, name)
			}
		}
		if len(categories) > 0 {
			book.Categories = categories
		}
	}

	return book
}

// BuildCatalog resolves every entry of feed into a catalog. Entries that yield no
// Book or repeat an earlier id are reported through the drop callback.
func (r *Resolver) BuildCatalog(feed *domain.Feed, fetchedAt time.Time) *domain.Catalog {
	if feed == nil {
		catalog, _ := domain.NewCatalog(nil)
		catalog.FetchedAt = fetchedAt
		return catalog
	}

	books := make([]domain.Book, 0, len(feed.Entries))
	seen := make(map[string]struct{}, len(feed.Entries))
	dropped := 0

	for _, entry := range feed.Entries {
		book := r.Resolve(entry)
		if book == nil {
			dropped++
			continue
		}
		if _, dup := seen[book.ID]; dup {
			r.drop(entry, DropDuplicateID, "")
			dropped++
			continue
		}
		seen[book.ID] = struct{}{}
		books = append(books, *book)
	}

	catalog, _ := domain.NewCatalog(books)
	catalog.FeedID = feed.ID
	catalog.FeedTitle = feed.Title
	catalog.FetchedAt = fetchedAt
	catalog.Dropped = dropped

	return catalog
}

func (r *Resolver) resolve(href string) string {
	if r.urls == nil || href == "" {
		return href
	}
	return r.urls.Resolve(href)
}

func (r *Resolver) drop(entry domain.ParsedEntry, reason DropReason, href string) {
	if r.onDrop == nil {
		return
	}
	r.onDrop(DropEvent{
		EntryID: entry.ID,
		Index:   entry.Index,
		Title:   entry.Title,
		Reason:  reason,
		Href:    href,
	})
}
