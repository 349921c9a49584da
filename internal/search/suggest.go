package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// keywordSource adapts the index keywords to fuzzy.Source. Build fills it
// once; Suggest only reads it.
type keywordSource struct {
	terms []string
}

func (k keywordSource) String(i int) string { return k.terms[i] }
func (k keywordSource) Len() int { return len(k.terms) }

// Suggest returns up to limit keywords that fuzzy-match the query, best
// first. It is only consulted when Match found nothing, so it never changes
// what the overlay selects.
func Suggest(query string, ix *Index, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || ix == nil || limit <= 0 {
		return nil
	}

	matches := fuzzy.FindFrom(q, ix.terms)
	out := make([]string, 0, limit)
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
