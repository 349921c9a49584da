package search

import "strings"

// Match returns every record whose lowercased title, description or any
// keyword contains the trimmed, lowercased query. Results keep index order.
// A blank query matches nothing.
func Match(query string, ix *Index) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || ix == nil {
		return nil
	}
	var out []Record
	for i := range ix.records {
		if ix.records[i].matches(q) {
			out = append(out, ix.records[i])
		}
	}
	return out
}
