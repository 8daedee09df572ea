package library

import (
	"strings"
	"unicode"
)

// Item is a named library entity: an artist, album or playlist.
type Item struct {
	ID   string
	Name string
}

// normalize strips all whitespace and lowercases s.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteString(strings.ToLower(string(r)))
	}
	return b.String()
}

// matchScore ranks an already normalized candidate against a normalized
// query: 3 for equality, 2 for containment in either direction, 0
// otherwise. A prefix is also a containment, so the prefix case never
// yields 1 in practice.
func matchScore(query, candidate string) int {
	switch {
	case candidate == query:
		return 3
	case strings.Contains(candidate, query) || strings.Contains(query, candidate):
		return 2
	case strings.HasPrefix(candidate, query):
		return 1
	default:
		return 0
	}
}

// BestMatch returns the highest scoring item for query. Ties go to the
// earliest item. ok is false when the query is blank or nothing scores.
func BestMatch(query string, items []Item) (Item, bool) {
	q := normalize(query)
	if q == "" {
		return Item{}, false
	}

	var best Item
	bestScore := 0
	for _, item := range items {
		if score := matchScore(q, normalize(item.Name)); score > bestScore {
			best, bestScore = item, score
		}
	}
	return best, bestScore > 0
}
