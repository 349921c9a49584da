package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/folio-sh/folio/internal/keys"
	"github.com/folio-sh/folio/internal/search"
)

// SearchOverlay is the command palette. The Dispatcher owns the open/closed
// state and the selection; the overlay owns the text input and drawing.
type SearchOverlay struct {
	input       textinput.Model
	query       *search.QueryState
	dispatcher  *keys.Dispatcher
	limit       int
	suggestions bool
	width       int
	height      int
	onResult    func(keys.Result)
}

// OverlayOption configures a SearchOverlay.
type OverlayOption func(*SearchOverlay)

// WithDisplayLimit caps the visible rows (default 10).
func WithDisplayLimit(n int) OverlayOption {
	return func(s *SearchOverlay) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithSuggestions toggles the "did you mean" line.
func WithSuggestions(on bool) OverlayOption {
	return func(s *SearchOverlay) { s.suggestions = on }
}

// WithResultHook is called after every key the dispatcher handled.
func WithResultHook(fn func(keys.Result)) OverlayOption {
	return func(s *SearchOverlay) { s.onResult = fn }
}

// NewSearchOverlay creates the overlay over ix. focus guards the open key
// and nav receives the selected record's route.
func NewSearchOverlay(ix *search.Index, km keys.KeyMap, focus keys.FocusContext, nav keys.Navigator, opts ...OverlayOption) *SearchOverlay {
	ti := textinput.New()
	ti.Placeholder = "Search pages, sections, projects..."
	ti.Prompt = "› "
	ti.CharLimit = 100
	ti.Width = 50

	s := &SearchOverlay{
		input:       ti,
		query:       search.NewQueryState(ix),
		limit:       search.DefaultDisplayLimit,
		suggestions: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dispatcher = keys.NewDispatcher(s.query, focus, nav,
		keys.WithKeyMap(km),
		keys.WithObserver(s.observe))
	return s
}

// observe keeps the text input in step with the dispatcher's state.
func (s *SearchOverlay) observe(res keys.Result) {
	switch res.Action {
	case keys.ActionOpened:
		s.input.Reset()
		s.input.Focus()
	case keys.ActionClosed, keys.ActionSelected:
		s.input.Reset()
		s.input.Blur()
	}
	if s.onResult != nil {
		s.onResult(res)
	}
}

// Attach subscribes the overlay to the host key bus.
func (s *SearchOverlay) Attach(bus *keys.Bus) { s.dispatcher.Attach(bus) }

// Detach unsubscribes and closes the overlay.
func (s *SearchOverlay) Detach() {
	s.dispatcher.Detach()
	s.input.Reset()
	s.input.Blur()
}

func (s *SearchOverlay) IsOpen() bool { return s.dispatcher.IsOpen() }

// Open shows the overlay without a key press (used by the CLI entry point).
func (s *SearchOverlay) Open() {
	s.dispatcher.Open()
	s.observe(keys.Result{Handled: true, Action: keys.ActionOpened})
}

// Close hides the overlay and clears the query.
func (s *SearchOverlay) Close() {
	if !s.dispatcher.IsOpen() {
		return
	}
	s.dispatcher.Close()
	s.observe(keys.Result{Handled: true, Action: keys.ActionClosed})
}

// SetIndex swaps in a rebuilt index. An open overlay is closed first so a
// selection never points into the old results.
func (s *SearchOverlay) SetIndex(ix *search.Index) {
	s.Close()
	s.query.SetIndex(ix)
}

// Query exposes the query state (tests and the status line).
func (s *SearchOverlay) Query() *search.QueryState { return s.query }

func (s *SearchOverlay) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Update feeds keys the dispatcher did not consume into the text input and
// re-runs the matcher when the text changed.
func (s *SearchOverlay) Update(msg tea.Msg) tea.Cmd {
	if !s.IsOpen() {
		return nil
	}
	var cmd tea.Cmd
	before := s.input.Value()
	s.input, cmd = s.input.Update(msg)
	if v := s.input.Value(); v != before {
		s.dispatcher.SetQuery(v)
	}
	return cmd
}

func (s *SearchOverlay) overlayWidth() int {
	w := 64
	if s.width > 0 && s.width < w+6 {
		w = max(30, s.width-6)
	}
	return w
}

// View renders the overlay box, or "" when closed.
func (s *SearchOverlay) View() string {
	if !s.IsOpen() {
		return ""
	}
	width := s.overlayWidth()
	pal := CurrentPalette()
	s.input.Width = width - 8

	var b strings.Builder
	b.WriteString(OverlayTitle.Render("Search"))
	b.WriteString("\n\n")
	b.WriteString(SearchBoxStyle.Width(width - 4).Render(s.input.View()))
	b.WriteString("\n\n")

	switch {
	case strings.TrimSpace(s.query.Query()) == "":
		b.WriteString(DimStyle.Render("Type to search pages, sections and projects."))
	case s.query.Len() == 0:
		b.WriteString(DimStyle.Render(fmt.Sprintf("No results for %q", s.query.Query())))
		if s.suggestions {
			if sugg := search.Suggest(s.query.Query(), s.query.Index(), 3); len(sugg) > 0 {
				b.WriteString("\n")
				b.WriteString(DimStyle.Render("Did you mean: " + strings.Join(sugg, ", ") + "?"))
			}
		}
	default:
		win := s.query.Window(s.limit)
		for i, rec := range win.Items {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(s.renderRow(rec, i == win.Selected, width-4, pal))
		}
		if win.More > 0 {
			b.WriteString("\n")
			b.WriteString(DimStyle.Render(fmt.Sprintf("  %d more", win.More)))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(DimStyle.Render("[↑↓] navigate  [enter] open  [esc] close"))

	return OverlayStyle.Width(width).Render(b.String())
}

func (s *SearchOverlay) renderRow(rec search.Record, selected bool, width int, pal Palette) string {
	desc := describeKind(rec.Kind)
	route := runewidth.Truncate(rec.TargetRoute, 22, "…")
	titleWidth := max(8, width-runewidth.StringWidth(route)-6)
	title := runewidth.FillRight(runewidth.Truncate(rec.Title, titleWidth, "…"), titleWidth)

	if selected {
		return ResultActive.Width(width).Render(desc.Icon + " " + title + "  " + route)
	}
	icon := lipgloss.NewStyle().Foreground(desc.Color(pal)).Render(desc.Icon)
	return ResultStyle.Width(width).Render(icon + " " + title + "  " + DimStyle.Render(route))
}
