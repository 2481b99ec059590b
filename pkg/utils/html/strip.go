// ABOUTME: HTML utilities for stripping tags and decoding entities
// ABOUTME: Turns html-typed feed summaries into plain display text

package html

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML returns the text content of an HTML fragment with whitespace collapsed.
// Script and style elements are dropped entirely.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseWhitespace(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseWhitespace(fragment)
	}

	doc.Find("script, style").Remove()
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
