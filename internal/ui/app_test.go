package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-sh/folio/internal/catalog"
	"github.com/folio-sh/folio/internal/contact"
	"github.com/folio-sh/folio/internal/portfolio"
	"github.com/folio-sh/folio/internal/search"
)

type trackedEvent struct{ kind, a, b, c string }

type fakeTracker struct{ events []trackedEvent }

func (f *fakeTracker) TrackPageView(route, title string) {
	f.events = append(f.events, trackedEvent{"page_view", route, title, ""})
}

func (f *fakeTracker) TrackEvent(category, action, label string) {
	f.events = append(f.events, trackedEvent{"event", category, action, label})
}

func (f *fakeTracker) TrackOutbound(url string) {
	f.events = append(f.events, trackedEvent{"outbound", url, "", ""})
}

func (f *fakeTracker) TrackSocial(platform, action, url string) {
	f.events = append(f.events, trackedEvent{"social", platform, action, url})
}

func (f *fakeTracker) TrackKeystroke(string) {}

func (f *fakeTracker) has(kind, a, b, c string) bool {
	for _, e := range f.events {
		if e == (trackedEvent{kind, a, b, c}) {
			return true
		}
	}
	return false
}

type fakeSubmitter struct {
	err error
	got []contact.Message
}

func (f *fakeSubmitter) Submit(ctx context.Context, m contact.Message) (*contact.Receipt, error) {
	f.got = append(f.got, m)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &contact.Receipt{ID: "r-1"}, nil
}

type testApp struct {
	*App
	tracker *fakeTracker
	copied  []string
	catalog *catalog.Catalog
}

func newTestApp(t *testing.T, mutate func(*Options)) *testApp {
	t.Helper()
	c, err := catalog.New(portfolio.Default())
	require.NoError(t, err)

	ta := &testApp{tracker: &fakeTracker{}, catalog: c}
	opts := Options{
		Catalog:     c,
		Tracker:     ta.tracker,
		Suggestions: true,
		Theme:       "dark",
		Copy: func(text string) (string, error) {
			ta.copied = append(ta.copied, text)
			return "fake", nil
		},
	}
	if mutate != nil {
		mutate(&opts)
	}
	ta.App = NewApp(opts)
	ta.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	t.Cleanup(func() {
		ta.Close()
		InitTheme(string(ThemeDark))
	})
	return ta
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends keys one at a time and returns the last command.
func (ta *testApp) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = ta.Update(keyMsg(k))
	}
	return cmd
}

func (ta *testApp) typeText(s string) {
	for _, r := range s {
		ta.Update(keyMsg(string(r)))
	}
}

func TestSearchOpenTypeSelect(t *testing.T) {
	ta := newTestApp(t, nil)
	require.Equal(t, "/", ta.Location())

	ta.press("/")
	require.True(t, ta.Overlay().IsOpen())
	assert.True(t, ta.tracker.has("event", "Keyboard Shortcut", "Search", "/"))

	ta.typeText("git")
	q := ta.Overlay().Query()
	assert.Equal(t, "git", q.Query())
	require.NotZero(t, q.Len())
	assert.Equal(t, "projects", q.Results()[0].ID)
	assert.Contains(t, ta.View(), "Projects")

	ta.press("enter")
	assert.False(t, ta.Overlay().IsOpen())
	assert.Equal(t, "/projects", ta.Location())
	assert.Empty(t, q.Query(), "state resets on close")
	assert.True(t, ta.tracker.has("event", "Search", "Result Selected", "Projects"))
	assert.True(t, ta.tracker.has("page_view", "/projects", "Projects", ""))
}

func TestSearchSelectSection(t *testing.T) {
	ta := newTestApp(t, func(o *Options) { o.InitialRoute = "/contact" })
	ta.Update(tea.WindowSizeMsg{Width: 100, Height: 10})

	ta.press("/")
	ta.typeText("scraping")
	q := ta.Overlay().Query()
	require.Equal(t, 1, q.Len())
	require.Equal(t, search.KindProject, q.Results()[0].Kind)

	ta.press("enter")
	assert.Equal(t, "/projects#official-site-link-scraping", ta.Location())
	assert.Greater(t, ta.viewport.YOffset, 0, "viewport scrolls to the anchor")
}

func TestSearchMoveAndClamp(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.press("/")
	ta.typeText("a")
	q := ta.Overlay().Query()
	require.Greater(t, q.Len(), 3)

	ta.press("up")
	assert.Equal(t, 0, q.SelectedIndex())
	ta.press("down", "down")
	assert.Equal(t, 2, q.SelectedIndex())
	for i := 0; i < q.Len()+5; i++ {
		ta.press("down")
	}
	assert.Equal(t, q.Len()-1, q.SelectedIndex())
}

func TestSearchEnterWithoutResultsStaysOpen(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.press("/")
	ta.typeText("xyz")
	ta.press("enter")
	assert.True(t, ta.Overlay().IsOpen())
	assert.Equal(t, "/", ta.Location())
	assert.Contains(t, ta.View(), "No results")

	ta.press("esc")
	assert.False(t, ta.Overlay().IsOpen())
	assert.Equal(t, "/", ta.Location())
}

func TestSearchSuggestionsOnEmptyResults(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.press("/")
	ta.typeText("projcts")
	assert.Zero(t, ta.Overlay().Query().Len())
	assert.Contains(t, ta.View(), "Did you mean")
}

func TestOpenKeyIgnoredWhileTyping(t *testing.T) {
	ta := newTestApp(t, func(o *Options) { o.InitialRoute = "/contact" })

	ta.press("tab")
	require.True(t, ta.form.Focused())

	ta.press("/")
	assert.False(t, ta.Overlay().IsOpen())
	assert.Equal(t, "/", ta.form.Values().Name)

	// esc leaves the form, after which the open key works again
	ta.press("esc")
	assert.False(t, ta.form.Active())
	ta.press("/")
	assert.True(t, ta.Overlay().IsOpen())
}

func TestCustomOpenKey(t *testing.T) {
	ta := newTestApp(t, func(o *Options) { o.OpenKey = "ctrl+k" })
	ta.press("/")
	assert.False(t, ta.Overlay().IsOpen())
	ta.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	assert.True(t, ta.Overlay().IsOpen())
}

func TestNavigateUnknownRoute(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.NavigateTo("/blog")
	title, notFound := ta.Page()
	assert.True(t, notFound)
	assert.Equal(t, "Not found", title)
	assert.Contains(t, ta.View(), "404")
	assert.True(t, ta.tracker.has("page_view", "/blog", "Not found", ""))
}

func TestNumberKeysNavigate(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.press("4")
	assert.Equal(t, "/projects", ta.Location())
	ta.press("5")
	assert.Equal(t, "/contact", ta.Location())

	// only five pages are in the header; 6 is unbound and privacy stays
	// reachable by route
	ta.press("6")
	assert.Equal(t, "/contact", ta.Location())
	ta.NavigateTo("/privacy")
	assert.Equal(t, "/privacy", ta.Location())
	ta.press("1")
	assert.Equal(t, "/", ta.Location())
}

func TestHelpOverlay(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.press("?")
	require.True(t, ta.help.IsVisible())
	assert.Contains(t, ta.View(), "KEYBOARD SHORTCUTS")

	// keys go to the dialog, not the router
	ta.press("4")
	assert.False(t, ta.help.IsVisible())
	assert.Equal(t, "/", ta.Location())
}

func TestQuit(t *testing.T) {
	ta := newTestApp(t, nil)
	cmd := ta.press("q")
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestThemeToggle(t *testing.T) {
	ta := newTestApp(t, nil)
	require.Equal(t, ThemeDark, CurrentTheme())
	ta.press("t")
	assert.Equal(t, ThemeLight, CurrentTheme())
	assert.True(t, ta.tracker.has("event", "Theme", "Toggle", "light"))
	ta.press("t")
	assert.Equal(t, ThemeDark, CurrentTheme())
}

func TestSystemThemeStopsAfterToggle(t *testing.T) {
	ta := newTestApp(t, func(o *Options) { o.FollowSystemTheme = true })
	ta.Update(osThemeMsg{theme: ThemeLight})
	assert.Equal(t, ThemeLight, CurrentTheme())

	ta.press("t")
	assert.Equal(t, ThemeDark, CurrentTheme())
	ta.Update(osThemeMsg{theme: ThemeLight})
	assert.Equal(t, ThemeDark, CurrentTheme(), "manual choice wins over the OS")
}

func TestCopyEmailAndLink(t *testing.T) {
	ta := newTestApp(t, nil)

	cmd := ta.press("c")
	require.NotNil(t, cmd)
	ta.Update(cmd())
	assert.Equal(t, []string{"learnsolo462@gmail.com"}, ta.copied)
	assert.True(t, ta.tracker.has("event", "Contact", "Copy Email", ""))
	assert.Contains(t, ta.View(), "Copied email")

	// o only works on the projects page
	ta.press("o")
	assert.Len(t, ta.copied, 1)

	// a short viewport leaves only the first card in the top third
	ta.press("4")
	ta.Update(tea.WindowSizeMsg{Width: 100, Height: 8})
	cmd = ta.press("o")
	require.NotNil(t, cmd)
	ta.Update(cmd())
	assert.Equal(t, "https://github.com/Vansh462", ta.copied[1])
	assert.True(t, ta.tracker.has("outbound", "https://github.com/Vansh462", "", ""))
}

func TestCopySocialCyclesProfiles(t *testing.T) {
	ta := newTestApp(t, nil)
	socials := portfolio.Default().Personal.Contact.Socials
	require.Len(t, socials, 3)

	for i := 0; i < len(socials)+1; i++ {
		cmd := ta.press("s")
		require.NotNil(t, cmd)
		ta.Update(cmd())
	}
	assert.Equal(t, []string{socials[0].URL, socials[1].URL, socials[2].URL, socials[0].URL}, ta.copied)
	assert.True(t, ta.tracker.has("social", "LinkedIn", "Copy", socials[0].URL))
	assert.True(t, ta.tracker.has("social", "Twitter", "Copy", socials[2].URL))
	assert.False(t, ta.tracker.has("outbound", socials[0].URL, "", ""))
	assert.Contains(t, ta.View(), "Copied LinkedIn profile")
}

func TestCopySocialWithoutProfiles(t *testing.T) {
	ta := newTestApp(t, nil)
	d := portfolio.Default()
	d.Personal.Contact.Socials = nil
	snap, err := ta.catalog.Replace(d)
	require.NoError(t, err)
	ta.Update(snapshotMsg{snap: snap})

	ta.press("s")
	assert.Empty(t, ta.copied)
	assert.Contains(t, ta.View(), "No social profiles")
}

func TestCopyFailureShowsError(t *testing.T) {
	ta := newTestApp(t, func(o *Options) {
		o.Copy = func(string) (string, error) { return "", errors.New("no clipboard") }
	})
	cmd := ta.press("c")
	ta.Update(cmd())
	assert.Contains(t, ta.View(), "Copy failed")
	assert.False(t, ta.tracker.has("event", "Contact", "Copy Email", ""))
}

func TestContactSubmitSuccess(t *testing.T) {
	sub := &fakeSubmitter{}
	ta := newTestApp(t, func(o *Options) {
		o.Contact = sub
		o.InitialRoute = "/contact"
	})
	ta.press("tab")
	ta.form.SetValues(contact.Message{
		Name: "Ada", Email: "ada@example.com", Subject: "Hello", Message: "Would love to chat about a role.",
	})

	cmd := ta.press("ctrl+s")
	require.NotNil(t, cmd)
	assert.True(t, ta.form.Sending())
	assert.Nil(t, ta.press("ctrl+s"), "second submit ignored while sending")

	ta.Update(cmd())
	require.Len(t, sub.got, 1)
	assert.False(t, ta.form.Sending())
	assert.NotEmpty(t, ta.form.Banner())
	assert.Empty(t, ta.form.Values().Name, "form clears on success")
	assert.Contains(t, ta.form.View(), "Thank you")

	ta.Update(bannerExpiredMsg{seq: ta.form.bannerSeq - 1})
	assert.NotEmpty(t, ta.form.Banner(), "stale timer ignored")
	ta.Update(bannerExpiredMsg{seq: ta.form.bannerSeq})
	assert.Empty(t, ta.form.Banner())
}

func TestContactSubmitValidationAndRelayErrors(t *testing.T) {
	sub := &fakeSubmitter{}
	ta := newTestApp(t, func(o *Options) {
		o.Contact = sub
		o.InitialRoute = "/contact"
	})
	ta.press("tab")
	ta.form.SetValues(contact.Message{Name: "Ada", Email: "nope", Subject: "Hi", Message: "short"})

	ta.Update(ta.press("ctrl+s")())
	assert.Equal(t, "must be a valid email address", ta.form.FieldError("email"))
	assert.NotEmpty(t, ta.form.FieldError("message"))
	assert.Equal(t, "nope", ta.form.Values().Email, "values kept on failure")

	sub.err = &contact.RelayError{Status: 400, Message: "Form not found"}
	ta.form.SetValues(contact.Message{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "A long enough message."})
	ta.Update(ta.press("ctrl+s")())
	assert.Equal(t, "Form not found", ta.form.Error())
	assert.Empty(t, ta.form.FieldError("email"))
}

func TestContactWithoutSubmitter(t *testing.T) {
	ta := newTestApp(t, func(o *Options) { o.InitialRoute = "/contact" })
	ta.press("tab")
	assert.Nil(t, ta.press("ctrl+s"))
	assert.Contains(t, ta.form.Error(), "not configured")
}

func TestLeavingContactBlursForm(t *testing.T) {
	ta := newTestApp(t, func(o *Options) { o.InitialRoute = "/contact" })
	ta.press("tab")
	require.True(t, ta.form.Active())
	ta.NavigateTo("/")
	assert.False(t, ta.form.Active())
}

func TestCatalogSwapClosesOverlay(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.Init()
	require.Equal(t, 1, ta.catalog.Subscribers())

	ta.press("/")
	ta.typeText("a")
	require.True(t, ta.Overlay().IsOpen())

	d := portfolio.Default()
	d.Projects = d.Projects[:1]
	snap, err := ta.catalog.Replace(d)
	require.NoError(t, err)

	ta.Update(snapshotMsg{snap: snap})
	assert.False(t, ta.Overlay().IsOpen())
	assert.Same(t, snap.Index, ta.Overlay().Query().Index())
	assert.Contains(t, ta.View(), "reloaded")

	ta.Close()
	assert.Zero(t, ta.catalog.Subscribers())
}

func TestPrefetchAdjacentRoutes(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.cache.Purge()
	ta.NavigateTo("/about")

	cmd := ta.prefetch()
	require.NotNil(t, cmd)
	for _, msg := range execCmd(cmd) {
		ta.Update(msg)
	}

	for _, path := range []string{"/", "/experience"} {
		k := renderKey{Path: path, Width: ta.viewport.Width, Theme: CurrentTheme(), Version: ta.snap.Version}
		assert.True(t, ta.cache.Has(k), path)
	}
	assert.Nil(t, ta.prefetch(), "nothing left to prefetch")
}

func TestPrefetchDropsStaleRenders(t *testing.T) {
	ta := newTestApp(t, nil)
	k := renderKey{Path: "/about", Width: ta.viewport.Width, Theme: CurrentTheme(), Version: ta.snap.Version + 1}
	ta.Update(prefetchedMsg{key: k, page: renderedPage{Title: "About"}})
	assert.False(t, ta.cache.Has(k))
}

func TestHeaderListsVisiblePages(t *testing.T) {
	ta := newTestApp(t, nil)
	header := ta.headerView()
	assert.Contains(t, header, "Vansh Oberoi")
	assert.Contains(t, header, "4 Projects")
	assert.NotContains(t, header, "Privacy")
}

func TestRenderPages(t *testing.T) {
	d := portfolio.Default()
	pal := PaletteFor(ThemeDark)

	home := renderPage(d, "/", 90, pal)
	assert.Contains(t, home.Anchors, "skills-ai")
	assert.Contains(t, home.Body, "Featured projects")

	about := renderPage(d, "/about", 90, pal)
	assert.Contains(t, about.Anchors, "guru-nanak-dev-university")
	assert.Contains(t, about.Anchors, "ecell-design-team-head")

	exp := renderPage(d, "/experience", 90, pal)
	assert.Contains(t, exp.Anchors, "easemymed-ai-engineer")

	projects := renderPage(d, "/projects", 90, pal)
	assert.Less(t, projects.Anchors["bombay-house-price-prediction"], projects.Anchors["official-site-link-scraping"])

	contactPage := renderPage(d, "/contact", 90, pal)
	assert.Contains(t, contactPage.Body, "learnsolo462@gmail.com")

	missing := renderPage(d, "/nope", 90, pal)
	assert.True(t, missing.NotFound)
}

func TestSectionAnchorsMatchIndexRoutes(t *testing.T) {
	d := portfolio.Default()
	ix, err := search.Build(d)
	require.NoError(t, err)

	pal := PaletteFor(ThemeDark)
	for _, rec := range ix.Records() {
		loc := parseRoute(rec.TargetRoute)
		if loc.Anchor == "" {
			continue
		}
		page := renderPage(d, loc.Path, 90, pal)
		_, ok := page.Anchors[loc.Anchor]
		assert.True(t, ok, "%s -> %s", rec.ID, rec.TargetRoute)
	}
}

func TestOverlayRowsAndMore(t *testing.T) {
	ta := newTestApp(t, func(o *Options) { o.MaxResults = 3 })
	ta.press("/")
	ta.typeText("a")
	q := ta.Overlay().Query()
	require.Greater(t, q.Len(), 3)

	view := ta.View()
	assert.Contains(t, view, strings.TrimSpace(q.Results()[0].Title))
	assert.Contains(t, view, "more")
}

// execCmd runs cmd and any batch it expands to. Only use it on commands
// that do not block (no ticks, no channel listeners).
func execCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, execCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}
