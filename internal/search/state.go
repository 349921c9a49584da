package search

import "fmt"

// DefaultDisplayLimit is how many results the overlay shows at once.
const DefaultDisplayLimit = 10

// QueryState is the overlay's transient state. Results are recomputed on
// every query change and the selection resets to the first row.
type QueryState struct {
	index    *Index
	query    string
	results  []Record
	selected int
}

// NewQueryState binds a fresh state to an index.
func NewQueryState(ix *Index) *QueryState {
	return &QueryState{index: ix}
}

// SetIndex swaps the index and resets the state.
func (s *QueryState) SetIndex(ix *Index) {
	s.index = ix
	s.Reset()
}

// Index returns the bound index.
func (s *QueryState) Index() *Index { return s.index }

// Reset clears the query, results and selection.
func (s *QueryState) Reset() {
	s.query = ""
	s.results = nil
	s.selected = 0
}

// SetQuery updates the query text and recomputes results.
func (s *QueryState) SetQuery(q string) {
	s.query = q
	s.results = Match(q, s.index)
	s.selected = 0
}

func (s *QueryState) Query() string { return s.query }
func (s *QueryState) Results() []Record { return s.results }
func (s *QueryState) Len() int { return len(s.results) }
func (s *QueryState) SelectedIndex() int { return s.selected }

// MoveDown advances the selection, stopping at the last result.
func (s *QueryState) MoveDown() {
	if s.selected < len(s.results)-1 {
		s.selected++
	}
}

// MoveUp moves the selection back, stopping at the first result.
func (s *QueryState) MoveUp() {
	if s.selected > 0 {
		s.selected--
	}
}

// Selected returns the selected record, or false when there are no results.
// A selection outside the results is a programming error and panics.
func (s *QueryState) Selected() (Record, bool) {
	if len(s.results) == 0 {
		return Record{}, false
	}
	if s.selected < 0 || s.selected >= len(s.results) {
		panic(fmt.Sprintf("search: selection %d out of range [0,%d)", s.selected, len(s.results)))
	}
	return s.results[s.selected], true
}

// Window is the slice of results the overlay draws.
type Window struct {
	Items    []Record
	Offset   int // index of Items[0] within the full results
	Selected int // selection relative to Items
	More     int // results not shown
}

// Window returns at most limit results, scrolled so the selection stays
// visible. Results past the window are counted in More.
func (s *QueryState) Window(limit int) Window {
	if limit <= 0 {
		limit = DefaultDisplayLimit
	}
	n := len(s.results)
	if n <= limit {
		return Window{Items: s.results, Selected: s.selected}
	}
	offset := 0
	if s.selected >= limit {
		offset = s.selected - limit + 1
	}
	return Window{
		Items:    s.results[offset : offset+limit],
		Offset:   offset,
		Selected: s.selected - offset,
		More:     n - limit,
	}
}
