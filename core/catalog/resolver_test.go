package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-api/core/domain"
	"bookshelf-api/core/opds"
)

func acquisition(href, mediaType string) domain.FeedLink {
	return domain.FeedLink{Href: href, Type: mediaType, Rel: domain.RelAcquisition}
}

func TestResolve_DuneScenario(t *testing.T) {
	feed, err := opds.ParseString(`<feed xmlns="http://www.w3.org/2005/Atom">
		<entry>
			<id>dune</id>
			<title>Dune</title>
			<author><name>Frank Herbert</name></author>
			<link rel="http://opds-spec.org/acquisition" type="application/epub+zip" href="/epub/1"/>
			<link rel="http://opds-spec.org/acquisition" type="application/x-mobipocket-ebook" href="/mobi/1"/>
		</entry>
	</feed>`)
	require.NoError(t, err)

	catalog := NewResolver(nil, nil).BuildCatalog(feed, time.Now())

	require.Equal(t, 1, catalog.Len())
	book := catalog.Books[0]
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "Frank Herbert", book.Author)
	assert.True(t, strings.HasSuffix(book.DownloadURL, "/epub/1"))
}

func TestResolve_PriorityOrderLaw(t *testing.T) {
	// The denylisted link comes first in document order and still loses
	entry := domain.ParsedEntry{
		ID: "1",
		Links: []domain.FeedLink{
			acquisition("/mobi/1", "application/x-mobipocket-ebook"),
			acquisition("/download/1", domain.MediaTypeEPUB),
		},
	}

	book := NewResolver(nil, nil).Resolve(entry)

	require.NotNil(t, book)
	assert.Equal(t, "/download/1", book.DownloadURL)
}

func TestResolve_EmptyHrefDoesNotShadowUsableLink(t *testing.T) {
	entry := domain.ParsedEntry{
		ID: "1",
		Links: []domain.FeedLink{
			{Type: domain.MediaTypeEPUB, Rel: "alternate"},
			acquisition("/epub/2", domain.MediaTypeEPUB),
		},
	}

	book := NewResolver(nil, nil).Resolve(entry)

	require.NotNil(t, book)
	assert.Equal(t, "/epub/2", book.DownloadURL)
}

func TestResolve_OnlyEmptyHrefDropped(t *testing.T) {
	var reasons []DropReason
	resolver := NewResolver(nil, func(ev DropEvent) {
		reasons = append(reasons, ev.Reason)
	})

	book := resolver.Resolve(domain.ParsedEntry{ID: "1", Links: []domain.FeedLink{acquisition("", domain.MediaTypeEPUB)}})

	assert.Nil(t, book)
	assert.Equal(t, []DropReason{DropNoAcquisition}, reasons)
}

func TestResolve_OnlyDenylistedLink(t *testing.T) {
	tests := []struct {
		name string
		link domain.FeedLink
	}{
		{"mobi folder", acquisition("/mobi/1", "")},
		{"mobi extension", acquisition("/download/book.MOBI", "application/octet-stream")},
		{"mobi media type", acquisition("/download/1", "application/x-mobipocket-ebook")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []DropEvent
			resolver := NewResolver(nil, func(e DropEvent) { events = append(events, e) })

			book := resolver.Resolve(domain.ParsedEntry{ID: "x", Links: []domain.FeedLink{tt.link}})

			assert.Nil(t, book)
			require.Len(t, events, 1)
			assert.Equal(t, DropIncompatibleFormat, events[0].Reason)
			assert.Equal(t, tt.link.Href, events[0].Href)
		})
	}
}

func TestSelectDownloadLink_Rules(t *testing.T) {
	tests := []struct {
		name     string
		links    []domain.FeedLink
		wantHref string
		wantRule string
	}{
		{
			name: "epub type beats everything",
			links: []domain.FeedLink{
				acquisition("/epub/2", "application/pdf"),
				{Href: "/files/2", Type: domain.MediaTypeEPUB, Rel: "alternate"},
			},
			wantHref: "/files/2",
			wantRule: "epub media type",
		},
		{
			name: "epub folder beats generic acquisition",
			links: []domain.FeedLink{
				acquisition("/pdf/3", "application/pdf"),
				acquisition("/epub/3", "application/octet-stream"),
			},
			wantHref: "/epub/3",
			wantRule: "acquisition in epub folder",
		},
		{
			name: "non-denylisted acquisition beats mobi",
			links: []domain.FeedLink{
				acquisition("/mobi/4", ""),
				acquisition("/pdf/4", "application/pdf"),
			},
			wantHref: "/pdf/4",
			wantRule: "acquisition not denylisted",
		},
		{
			name: "acquisition sub relation counts",
			links: []domain.FeedLink{
				{Href: "/free/5", Rel: domain.RelAcquisition + "/open-access"},
			},
			wantHref: "/free/5",
			wantRule: "acquisition not denylisted",
		},
		{
			name:     "last resort fallback",
			links:    []domain.FeedLink{acquisition("/mobi/6", "")},
			wantHref: "/mobi/6",
			wantRule: "any acquisition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, rule, ok := SelectDownloadLink(tt.links)
			require.True(t, ok)
			assert.Equal(t, tt.wantHref, link.Href)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

func TestSelectDownloadLink_NoAcquisition(t *testing.T) {
	_, _, ok := SelectDownloadLink([]domain.FeedLink{
		{Href: "/cover.jpg", Type: "image/jpeg", Rel: domain.RelImage},
		{Href: "/alternate", Rel: "alternate"},
	})
	assert.False(t, ok)
}

func TestResolve_NoAcquisitionDropped(t *testing.T) {
	var events []DropEvent
	resolver := NewResolver(nil, func(e DropEvent) { events = append(events, e) })

	book := resolver.Resolve(domain.ParsedEntry{ID: "lonely", Index: 3, Title: "No Links"})

	assert.Nil(t, book)
	require.Len(t, events, 1)
	assert.Equal(t, DropEvent{EntryID: "lonely", Index: 3, Title: "No Links", Reason: DropNoAcquisition}, events[0])
}

func TestSelectCoverLink(t *testing.T) {
	tests := []struct {
		name     string
		links    []domain.FeedLink
		wantHref string
		wantOK   bool
	}{
		{"image media type", []domain.FeedLink{{Href: "/a.png", Type: "image/png"}}, "/a.png", true},
		{"image rel", []domain.FeedLink{{Href: "/a", Rel: domain.RelImage}}, "/a", true},
		{"thumbnail rel", []domain.FeedLink{{Href: "/t", Rel: domain.RelThumbnail}}, "/t", true},
		{"cover in href", []domain.FeedLink{{Href: "/covers/1", Rel: "related"}}, "/covers/1", true},
		{"first match wins", []domain.FeedLink{
			{Href: "/epub/1", Type: domain.MediaTypeEPUB, Rel: domain.RelAcquisition},
			{Href: "/thumb.jpg", Type: "image/jpeg", Rel: domain.RelThumbnail},
			{Href: "/full.jpg", Type: "image/jpeg", Rel: domain.RelImage},
		}, "/thumb.jpg", true},
		{"none", []domain.FeedLink{{Href: "/epub/1", Rel: domain.RelAcquisition}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, ok := SelectCoverLink(tt.links)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantHref, link.Href)
		})
	}
}

type prefixResolver struct {
	prefix string
	calls  []string
}

func (p *prefixResolver) Resolve(href string) string {
	p.calls = append(p.calls, href)
	return p.prefix + href
}

func TestResolve_URLsNormalizedAfterSelection(t *testing.T) {
	urls := &prefixResolver{prefix: "https://proxy.example/?url=https://books.example"}
	entry := domain.ParsedEntry{
		ID:      "1",
		Title:   "Dune",
		Author:  "Frank Herbert",
		Summary: "Spice.",
		Links: []domain.FeedLink{
			acquisition("/epub/1", "application/octet-stream"),
			{Href: "/covers/1.jpg", Type: "image/jpeg", Rel: domain.RelImage},
		},
		Published: "1965-08-01",
	}

	book := NewResolver(urls, nil).Resolve(entry)

	require.NotNil(t, book)
	assert.Equal(t, "https://proxy.example/?url=https://books.example/epub/1", book.DownloadURL)
	assert.Equal(t, "https://proxy.example/?url=https://books.example/covers/1.jpg", book.CoverURL)
	assert.Equal(t, []string{"/epub/1", "/covers/1.jpg"}, urls.calls)
	assert.Equal(t, "Spice.", book.Description)
	assert.Equal(t, "1965-08-01", book.PublishedDate)
}

func TestResolve_Categories(t *testing.T) {
	withCategories := domain.ParsedEntry{
		ID:    "1",
		Links: []domain.FeedLink{acquisition("/epub/1", domain.MediaTypeEPUB)},
		Categories: []domain.Category{
			{Term: "sf", Label: "Science Fiction"},
			{Term: "classic"},
			{},
		},
	}
	without := domain.ParsedEntry{
		ID:         "2",
		Links:      []domain.FeedLink{acquisition("/epub/2", domain.MediaTypeEPUB)},
		Categories: []domain.Category{},
	}

	resolver := NewResolver(nil, nil)

	book := resolver.Resolve(withCategories)
	require.NotNil(t, book)
	assert.Equal(t, []string{"Science Fiction", "classic"}, book.Categories)

	book = resolver.Resolve(without)
	require.NotNil(t, book)
	assert.Nil(t, book.Categories)
}

func TestBuildCatalog_DropsAndDuplicates(t *testing.T) {
	feed := &domain.Feed{
		ID:    "urn:feed",
		Title: "Library",
		Entries: []domain.ParsedEntry{
			{Index: 0, ID: "a", Title: "First", Links: []domain.FeedLink{acquisition("/epub/a", domain.MediaTypeEPUB)}},
			{Index: 1, ID: "b", Title: "Mobi Only", Links: []domain.FeedLink{acquisition("/mobi/b", "")}},
			{Index: 2, ID: "a", Title: "Second", Links: []domain.FeedLink{acquisition("/epub/a2", domain.MediaTypeEPUB)}},
			{Index: 3, ID: "c", Title: "Third", Links: []domain.FeedLink{acquisition("/epub/c", domain.MediaTypeEPUB)}},
		},
	}

	var reasons []DropReason
	fetchedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	catalog := NewResolver(nil, func(e DropEvent) { reasons = append(reasons, e.Reason) }).BuildCatalog(feed, fetchedAt)

	require.Equal(t, 2, catalog.Len())
	assert.Equal(t, "First", catalog.Books[0].Title)
	assert.Equal(t, "Third", catalog.Books[1].Title)
	assert.Equal(t, 2, catalog.Dropped)
	assert.Equal(t, []DropReason{DropIncompatibleFormat, DropDuplicateID}, reasons)
	assert.Equal(t, "urn:feed", catalog.FeedID)
	assert.Equal(t, "Library", catalog.FeedTitle)
	assert.Equal(t, fetchedAt, catalog.FetchedAt)

	book, ok := catalog.Get("a")
	require.True(t, ok)
	assert.Equal(t, "/epub/a", book.DownloadURL)
}

func TestBuildCatalog_EmptyFeed(t *testing.T) {
	feed, err := opds.ParseString(`<feed><title>Nothing</title></feed>`)
	require.NoError(t, err)

	catalog := NewResolver(nil, nil).BuildCatalog(feed, time.Now())

	assert.Equal(t, 0, catalog.Len())
	assert.NotNil(t, catalog.Books)
}

func TestBuildCatalog_EveryBookHasUsableDownload(t *testing.T) {
	feed := &domain.Feed{Entries: []domain.ParsedEntry{
		{ID: "1", Links: []domain.FeedLink{acquisition("/mobi/1", ""), acquisition("/x/1.mobi", "")}},
		{ID: "2", Links: []domain.FeedLink{acquisition("/pdf/2", "application/pdf")}},
		{ID: "3", Links: []domain.FeedLink{{Href: "/epub/3", Rel: "alternate"}}},
		{ID: "4", Links: []domain.FeedLink{acquisition("", domain.MediaTypeEPUB)}},
	}}

	catalog := NewResolver(nil, nil).BuildCatalog(feed, time.Now())

	require.Equal(t, 1, catalog.Len())
	for _, book := range catalog.Books {
		assert.NoError(t, book.Validate())
		assert.False(t, isDenylisted(domain.FeedLink{Href: book.DownloadURL}))
	}
}
