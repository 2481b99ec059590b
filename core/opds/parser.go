// ABOUTME: OPDS parser turns an Atom acquisition feed into a typed Feed structure
// ABOUTME: Walks the document with a pull parser and never drops entries

package opds

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"bookshelf-api/core/domain"
	coreerrors "bookshelf-api/core/errors"
	htmlutil "bookshelf-api/pkg/utils/html"
	timeutil "bookshelf-api/pkg/utils/time"

	"github.com/mmcdole/gofeed"
	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"
)

// AtomNamespace is the namespace of Atom elements
const AtomNamespace = "http://www.w3.org/2005/Atom"

// Defaults applied when a feed omits a field
const (
	DefaultFeedTitle   = "OPDS Feed"
	DefaultEntryTitle  = "Unknown Title"
	DefaultEntryAuthor = "Unknown Author"
)

// Parser parses OPDS feeds
type Parser struct {
	now func() time.Time
}

// NewParser creates a parser using the wall clock for the missing-updated default
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// NewParserWithClock creates a parser with an injected clock
func NewParserWithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Parse parses raw feed bytes with a default parser
func Parse(data []byte) (*domain.Feed, error) {
	return NewParser().Parse(data)
}

// ParseString parses feed text with a default parser
func ParseString(xmlText string) (*domain.Feed, error) {
	return NewParser().Parse([]byte(xmlText))
}

// Parse parses an OPDS document. It fails with a *errors.FeedParseError of kind
// MalformedXML when the input is not well-formed, or InvalidRoot when the
// document element is not <feed>.
func (p *Parser) Parse(data []byte) (*domain.Feed, error) {
	xp := xpp.NewXMLPullParser(bytes.NewReader(data), true, charset.NewReaderLabel)

	if err := findRoot(xp); err != nil {
		return nil, malformed(err)
	}

	if xp.Name != "feed" {
		root := xp.Name
		if err := drain(xp); err != nil {
			return nil, malformed(err)
		}
		return nil, &coreerrors.FeedParseError{
			Kind:     coreerrors.InvalidRoot,
			Root:     root,
			Detected: detectFeedType(data),
		}
	}

	feed, err := p.parseFeed(xp, xp.Space)
	if err != nil {
		return nil, malformed(err)
	}

	if err := drain(xp); err != nil {
		return nil, malformed(err)
	}

	return feed, nil
}

// parseFeed reads the children of the root element. ns is the root's
// namespace; children in it are read the same as Atom ones.
func (p *Parser) parseFeed(xp *xpp.XMLPullParser, ns string) (*domain.Feed, error) {
	feed := &domain.Feed{
		Links:   []domain.FeedLink{},
		Entries: []domain.ParsedEntry{},
	}

	err := eachChild(xp, ns, func(name string) error {
		switch name {
		case "id":
			text, err := readText(xp)
			feed.ID = strings.TrimSpace(text)
			return err
		case "title":
			text, err := readText(xp)
			feed.Title = strings.TrimSpace(text)
			return err
		case "updated":
			text, err := readText(xp)
			feed.Updated = strings.TrimSpace(text)
			return err
		case "link":
			feed.Links = append(feed.Links, readLink(xp))
			return xp.Skip()
		case "entry":
			entry, err := parseEntry(xp, ns, len(feed.Entries))
			if err != nil {
				return err
			}
			feed.Entries = append(feed.Entries, entry)
			return nil
		default:
			return xp.Skip()
		}
	})
	if err != nil {
		return nil, err
	}

	if feed.Title == "" {
		feed.Title = DefaultFeedTitle
	}
	if feed.Updated == "" {
		feed.Updated = p.now().UTC().Format(time.RFC3339)
	}
	feed.UpdatedParsed = timeutil.ParseOptional(feed.Updated)

	return feed, nil
}

func parseEntry(xp *xpp.XMLPullParser, ns string, index int) (domain.ParsedEntry, error) {
	entry := domain.ParsedEntry{
		Index:      index,
		Categories: []domain.Category{},
		Links:      []domain.FeedLink{},
	}

	var summary, content string
	var haveSummary, haveAuthor bool

	err := eachChild(xp, ns, func(name string) error {
		var err error
		switch name {
		case "id":
			var text string
			text, err = readText(xp)
			entry.ID = strings.TrimSpace(text)
		case "title":
			var text string
			text, err = readText(xp)
			entry.Title = strings.TrimSpace(text)
		case "author":
			if !haveAuthor {
				haveAuthor = true
				entry.Author, err = readAuthor(xp, ns)
			} else {
				err = xp.Skip()
			}
		case "summary":
			if !haveSummary {
				haveSummary = true
				summary, err = readContent(xp)
			} else {
				err = xp.Skip()
			}
		case "content":
			if content == "" {
				content, err = readContent(xp)
			} else {
				err = xp.Skip()
			}
		case "published":
			var text string
			text, err = readText(xp)
			entry.Published = strings.TrimSpace(text)
		case "updated":
			var text string
			text, err = readText(xp)
			entry.Updated = strings.TrimSpace(text)
		case "category":
			entry.Categories = append(entry.Categories, domain.Category{
				Term:  strings.TrimSpace(xp.Attribute("term")),
				Label: strings.TrimSpace(xp.Attribute("label")),
			})
			err = xp.Skip()
		case "link":
			entry.Links = append(entry.Links, readLink(xp))
			err = xp.Skip()
		default:
			err = xp.Skip()
		}
		return err
	})
	if err != nil {
		return entry, err
	}

	if entry.ID == "" {
		entry.ID = fmt.Sprintf("entry-%d", index)
		entry.SyntheticID = true
	}
	if entry.Title == "" {
		entry.Title = DefaultEntryTitle
	}
	if entry.Author == "" {
		entry.Author = DefaultEntryAuthor
	}

	entry.Summary = summary
	if !haveSummary || summary == "" {
		entry.Summary = content
	}

	entry.PublishedParsed = timeutil.ParseOptional(entry.Published)
	entry.UpdatedParsed = timeutil.ParseOptional(entry.Updated)

	return entry, nil
}

// readAuthor prefers a nested <name>, falling back to the element's raw text
// only when no <name> is present
func readAuthor(xp *xpp.XMLPullParser, ns string) (string, error) {
	var name string
	var haveName bool
	var raw strings.Builder

	depth := 1
	for depth > 0 {
		event, err := xp.Next()
		if err != nil {
			return "", err
		}

		switch event {
		case xpp.StartTag:
			if depth == 1 && xp.Name == "name" && inNamespace(xp.Space, ns) && !haveName {
				text, err := readText(xp)
				if err != nil {
					return "", err
				}
				haveName = true
				name = strings.TrimSpace(text)
				raw.WriteString(text)
				continue
			}
			depth++
		case xpp.EndTag:
			depth--
		case xpp.Text:
			raw.WriteString(xp.Text)
		case xpp.EndDocument:
			return "", io.ErrUnexpectedEOF
		}
	}

	if haveName {
		return name, nil
	}
	return strings.TrimSpace(raw.String()), nil
}

// readContent reads a text construct, stripping markup from type="html"
func readContent(xp *xpp.XMLPullParser) (string, error) {
	contentType := strings.ToLower(xp.Attribute("type"))

	text, err := readText(xp)
	if err != nil {
		return "", err
	}

	switch contentType {
	case "html", "text/html", "xhtml":
		return htmlutil.StripHTML(text), nil
	default:
		return strings.TrimSpace(text), nil
	}
}

func readLink(xp *xpp.XMLPullParser) domain.FeedLink {
	return domain.FeedLink{
		Href:  strings.TrimSpace(xp.Attribute("href")),
		Type:  strings.TrimSpace(xp.Attribute("type")),
		Rel:   strings.TrimSpace(xp.Attribute("rel")),
		Title: xp.Attribute("title"),
	}
}

// eachChild calls fn for every child element of the current element that is
// in ns or Atom. fn must consume the child through its end tag. Foreign
// elements are skipped.
func eachChild(xp *xpp.XMLPullParser, ns string, fn func(name string) error) error {
	for {
		event, err := xp.Next()
		if err != nil {
			return err
		}

		switch event {
		case xpp.StartTag:
			if !inNamespace(xp.Space, ns) {
				if err := xp.Skip(); err != nil {
					return err
				}
				continue
			}
			if err := fn(xp.Name); err != nil {
				return err
			}
		case xpp.EndTag:
			return nil
		case xpp.EndDocument:
			return io.ErrUnexpectedEOF
		}
	}
}

// readText returns the concatenated text of the current element and its descendants
func readText(xp *xpp.XMLPullParser) (string, error) {
	var sb strings.Builder

	depth := 1
	for depth > 0 {
		event, err := xp.Next()
		if err != nil {
			return "", err
		}

		switch event {
		case xpp.StartTag:
			depth++
		case xpp.EndTag:
			depth--
		case xpp.Text:
			sb.WriteString(xp.Text)
		case xpp.EndDocument:
			return "", io.ErrUnexpectedEOF
		}
	}

	return sb.String(), nil
}

func findRoot(xp *xpp.XMLPullParser) error {
	for {
		event, err := xp.Next()
		if err != nil {
			return err
		}

		switch event {
		case xpp.StartTag:
			return nil
		case xpp.EndDocument:
			return errors.New("document has no root element")
		}
	}
}

// drain reads to the end of the document so trailing garbage is reported
func drain(xp *xpp.XMLPullParser) error {
	for {
		event, err := xp.Next()
		if err != nil {
			return err
		}
		if event == xpp.EndDocument {
			return nil
		}
	}
}

func inNamespace(space, ns string) bool {
	return space == "" || space == ns || space == AtomNamespace
}

func detectFeedType(data []byte) string {
	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeAtom:
		return "atom"
	case gofeed.FeedTypeRSS:
		return "rss"
	case gofeed.FeedTypeJSON:
		return "json"
	default:
		return "unknown"
	}
}

func malformed(err error) error {
	return &coreerrors.FeedParseError{Kind: coreerrors.MalformedXML, Err: err}
}
