// ABOUTME: Fuzzy relevance scoring for catalog search
// ABOUTME: Combines exact, prefix, substring, word-set and edit-distance signals

package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"bookshelf-api/core/domain"
)

// Score weights. Fuzzy weights multiply a similarity in (threshold, 1].
const (
	weightExact        = 100.0
	weightPrefix       = 80.0
	weightTitleSubstr  = 60.0
	weightAuthorSubstr = 50.0
	weightDescSubstr   = 20.0
	weightTitleWords   = 40.0
	weightAuthorWords  = 30.0
	weightDescWords    = 10.0
	weightTitleFuzzy   = 25.0
	weightAuthorFuzzy  = 20.0
	weightTitlePhrase  = 15.0
	weightAuthorPhrase = 12.0
	shortTitleBonus    = 5.0

	wordThreshold   = 0.75
	phraseThreshold = 0.6
	shortTitleRunes = 50
)

// Levenshtein returns the single-character edit distance between a and b,
// counted in runes
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two rows of the DP table are enough
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Similarity normalizes the edit distance of the lowercased inputs to [0,1].
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)

	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}

	return float64(maxLen-Levenshtein(a, b)) / float64(maxLen)
}

// containsAllWords reports whether text contains every whitespace-separated
// word of query. Both must already be lowercased.
func containsAllWords(text string, queryWords []string) bool {
	for _, w := range queryWords {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}

// Score computes the relevance of book for query. The query is trimmed and
// matching is case-insensitive. An empty query scores 0.
func Score(book domain.Book, query string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	title := strings.ToLower(book.Title)
	author := strings.ToLower(book.Author)
	desc := strings.ToLower(book.Description)

	var score float64

	if title == q || author == q {
		score += weightExact
	}
	if strings.HasPrefix(title, q) || strings.HasPrefix(author, q) {
		score += weightPrefix
	}

	if strings.Contains(title, q) {
		score += weightTitleSubstr
	}
	if strings.Contains(author, q) {
		score += weightAuthorSubstr
	}
	if strings.Contains(desc, q) {
		score += weightDescSubstr
	}

	queryWords := strings.Fields(q)
	if containsAllWords(title, queryWords) {
		score += weightTitleWords
	}
	if containsAllWords(author, queryWords) {
		score += weightAuthorWords
	}
	if containsAllWords(desc, queryWords) {
		score += weightDescWords
	}

	titleWords := strings.Fields(title)
	authorWords := strings.Fields(author)
	for _, qw := range queryWords {
		if utf8.RuneCountInString(qw) <= 1 {
			continue
		}
		for _, tw := range titleWords {
			if sim := Similarity(tw, qw); sim > wordThreshold {
				score += sim * weightTitleFuzzy
			}
		}
		for _, aw := range authorWords {
			if sim := Similarity(aw, qw); sim > wordThreshold {
				score += sim * weightAuthorFuzzy
			}
		}
	}

	if sim := Similarity(title, q); sim > phraseThreshold {
		score += sim * weightTitlePhrase
	}
	if sim := Similarity(author, q); sim > phraseThreshold {
		score += sim * weightAuthorPhrase
	}

	if score > 0 && utf8.RuneCountInString(book.Title) < shortTitleRunes {
		score += shortTitleBonus
	}

	return score
}

// Result pairs a book with its relevance score
type Result struct {
	Book  domain.Book `json:"book"`
	Score float64     `json:"score"`
}

// Rank scores every book and returns those with a positive score, highest
// first. Equal scores keep catalog order.
func Rank(books []domain.Book, query string) []Result {
	results := make([]Result, 0, len(books))
	for _, b := range books {
		if s := Score(b, query); s > 0 {
			results = append(results, Result{Book: b, Score: s})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// Search returns the books relevant to query in descending score order.
// A blank query returns books unchanged.
func Search(books []domain.Book, query string) []domain.Book {
	if strings.TrimSpace(query) == "" {
		return books
	}

	results := Rank(books, query)
	out := make([]domain.Book, len(results))
	for i, r := range results {
		out[i] = r.Book
	}
	return out
}

// SimpleSearch filters books whose title, author or description contains the
// query, keeping catalog order. A blank query returns books unchanged.
func SimpleSearch(books []domain.Book, query string) []domain.Book {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return books
	}

	out := make([]domain.Book, 0)
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.Description), q) {
			out = append(out, b)
		}
	}
	return out
}

// DefaultMaxSuggestions is used when a caller asks for a non-positive count
const DefaultMaxSuggestions = 5

// Suggestions returns completions for a partial query drawn from titles,
// authors and their words. The first max distinct candidates found are
// returned shortest first. Queries under two characters yield nothing.
func Suggestions(books []domain.Book, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < 2 {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultMaxSuggestions
	}

	seen := make(map[string]struct{})
	var found []string
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		found = append(found, s)
	}

	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), q) {
			add(b.Title)
		}
		if strings.Contains(strings.ToLower(b.Author), q) {
			add(b.Author)
		}

		words := append(strings.Fields(b.Title), strings.Fields(b.Author)...)
		for _, w := range words {
			if strings.HasPrefix(strings.ToLower(w), q) {
				add(w)
			}
		}
	}

	if len(found) > limit {
		found = found[:limit]
	}

	sort.SliceStable(found, func(i, j int) bool {
		return utf8.RuneCountInString(found[i]) < utf8.RuneCountInString(found[j])
	})

	if found == nil {
		return []string{}
	}
	return found
}
