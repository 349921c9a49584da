package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/folio-sh/folio/internal/catalog"
	"github.com/folio-sh/folio/internal/clipboard"
	"github.com/folio-sh/folio/internal/keys"
	"github.com/folio-sh/folio/internal/logging"
	"github.com/folio-sh/folio/internal/search"
)

var uiLog = logging.ForComponent(logging.CompUI)

const statusDuration = 3 * time.Second

// Tracker receives UI analytics. *analytics.Tracker satisfies it.
type Tracker interface {
	TrackPageView(route, title string)
	TrackEvent(category, action, label string)
	TrackOutbound(url string)
	TrackSocial(platform, action, url string)
	TrackKeystroke(scope string)
}

type nopTracker struct{}

func (nopTracker) TrackPageView(string, string) {}
func (nopTracker) TrackEvent(string, string, string) {}
func (nopTracker) TrackOutbound(string) {}
func (nopTracker) TrackSocial(string, string, string) {}
func (nopTracker) TrackKeystroke(string) {}

// Options wires the app to its collaborators. Catalog is required.
type Options struct {
	Catalog        *catalog.Catalog
	Contact        ContactSubmitter
	ContactTimeout time.Duration
	Tracker        Tracker

	OpenKey     string
	MaxResults  int
	Suggestions bool

	// Theme is the starting theme ("dark" or "light"). FollowSystemTheme
	// keeps it in step with the OS until the visitor toggles it.
	Theme             string
	FollowSystemTheme bool
	InitialRoute      string

	// Copy replaces the system clipboard (tests).
	Copy func(text string) (method string, err error)
}

type snapshotMsg struct{ snap *catalog.Snapshot }

type prefetchedMsg struct {
	key  renderKey
	page renderedPage
}

type copiedMsg struct {
	what     string
	url      string
	platform string // set for social profiles
	method   string
	err      error
}

type statusExpiredMsg struct{ seq int }

// App is the root Bubble Tea model: header, routed page, footer, and the
// search and help overlays on top.
type App struct {
	opts    Options
	tracker Tracker
	keys    keys.KeyMap
	bus     *keys.Bus

	overlay *SearchOverlay
	help    *HelpOverlay
	form    *ContactForm

	viewport viewport.Model
	cache    *renderCache
	snap     *catalog.Snapshot
	routes   routeTable
	loc      location
	page     renderedPage

	width, height int

	status    string
	statusErr bool
	statusSeq int

	nextSocial int // profile the next CopySocial press copies

	themeFollowsOS bool
	themeWatcher   *ThemeWatcher

	snapshots <-chan *catalog.Snapshot
	cancelSub func()

	ctx    context.Context
	cancel context.CancelFunc

	pending []tea.Cmd
}

// NewApp builds the model and navigates to the initial route.
func NewApp(opts Options) *App {
	if opts.Catalog == nil {
		panic("ui: Options.Catalog is required")
	}
	if opts.Tracker == nil {
		opts.Tracker = nopTracker{}
	}
	if opts.Copy == nil {
		opts.Copy = func(text string) (string, error) {
			res, err := clipboard.Copy(text)
			if err != nil {
				return "", err
			}
			return res.Method, nil
		}
	}

	a := &App{
		opts:     opts,
		tracker:  opts.Tracker,
		keys:     keys.DefaultKeyMap(opts.OpenKey),
		bus:      keys.NewBus(),
		cache:    newRenderCache(renderCacheTTL),
		snap:     opts.Catalog.Current(),
		viewport: viewport.New(80, 20),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.routes = newRouteTable(a.snap.Data)

	a.overlay = NewSearchOverlay(a.snap.Index, a.keys,
		keys.FocusFunc(a.editableFocused),
		keys.NavigatorFunc(a.NavigateTo),
		WithDisplayLimit(opts.MaxResults),
		WithSuggestions(opts.Suggestions),
		WithResultHook(a.onOverlayResult))
	a.overlay.Attach(a.bus)
	a.help = NewHelpOverlay(a.keys)
	a.form = NewContactForm(opts.Contact, a.keys, opts.ContactTimeout)

	InitTheme(opts.Theme)
	a.themeFollowsOS = opts.FollowSystemTheme

	route := opts.InitialRoute
	if route == "" {
		route = "/"
	}
	a.NavigateTo(route)
	return a
}

// Init starts the catalog subscription and, for theme = "system", the OS
// appearance watcher.
func (a *App) Init() tea.Cmd {
	a.snapshots, a.cancelSub = a.opts.Catalog.Subscribe()
	cmds := append(a.drain(), listenSnapshots(a.snapshots))
	if a.themeFollowsOS {
		a.themeWatcher = NewThemeWatcher(a.ctx)
		cmds = append(cmds, a.themeWatcher.Listen())
	}
	return tea.Batch(cmds...)
}

// Close releases the subscription, watcher and key bus listener.
func (a *App) Close() {
	if a.cancelSub != nil {
		a.cancelSub()
	}
	a.themeWatcher.Close()
	a.overlay.Detach()
	a.cancel()
}

func listenSnapshots(ch <-chan *catalog.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg{snap: snap}
	}
}

// editableFocused backs the dispatcher's focus guard.
func (a *App) editableFocused() bool {
	return a.loc.Path == a.contactRoute() && a.form.Focused()
}

func (a *App) contactRoute() string {
	if p, ok := a.snap.Data.Page("contact"); ok {
		return p.Route
	}
	return "/contact"
}

func (a *App) projectsRoute() string {
	if p, ok := a.snap.Data.Page("projects"); ok {
		return p.Route
	}
	return "/projects"
}

// NavigateTo shows route. Unknown routes show the not-found page. It is
// the navigator handed to the search dispatcher.
func (a *App) NavigateTo(route string) {
	loc := parseRoute(route)
	if loc.Path != a.contactRoute() {
		a.form.Blur()
	}
	a.loc = loc
	a.renderCurrent()

	if line, ok := a.page.Anchors[loc.Anchor]; ok && loc.Anchor != "" {
		a.viewport.SetYOffset(line)
	} else {
		a.viewport.GotoTop()
	}

	title := a.page.Title
	a.tracker.TrackPageView(loc.Path, title)
	uiLog.Debug("navigated", slog.String("route", loc.String()), slog.Bool("not_found", a.page.NotFound))
	a.pending = append(a.pending, a.prefetch())
}

// Location returns the current route including any anchor.
func (a *App) Location() string { return a.loc.String() }

// Page reports the current page title and whether it is the not-found page.
func (a *App) Page() (title string, notFound bool) { return a.page.Title, a.page.NotFound }

// Overlay exposes the search overlay (CLI and tests).
func (a *App) Overlay() *SearchOverlay { return a.overlay }

func (a *App) renderCurrent() {
	k := renderKey{Path: a.loc.Path, Width: a.viewport.Width, Theme: CurrentTheme(), Version: a.snap.Version}
	page, ok := a.cache.Get(k)
	if !ok {
		page = renderPage(a.snap.Data, k.Path, k.Width, CurrentPalette())
		a.cache.Put(k, page)
	}
	a.page = page
	a.refreshContent()
}

func (a *App) refreshContent() {
	body := a.page.Body
	if a.loc.Path == a.contactRoute() && !a.page.NotFound {
		body += "\n\n" + a.form.View()
	}
	a.viewport.SetContent(body)
}

// prefetch renders the current page's neighbours off the UI loop.
func (a *App) prefetch() tea.Cmd {
	var cmds []tea.Cmd
	snap, width, pal := a.snap, a.viewport.Width, CurrentPalette()
	for _, path := range a.routes.adjacent(a.loc.Path) {
		k := renderKey{Path: path, Width: width, Theme: pal.Theme, Version: snap.Version}
		if a.cache.Has(k) {
			continue
		}
		cmds = append(cmds, func() tea.Msg {
			return prefetchedMsg{key: k, page: renderPage(snap.Data, k.Path, k.Width, pal)}
		})
	}
	return tea.Batch(cmds...)
}

func (a *App) drain() []tea.Cmd {
	cmds := a.pending
	a.pending = nil
	return cmds
}

func (a *App) onOverlayResult(res keys.Result) {
	switch res.Action {
	case keys.ActionOpened:
		if res.Trigger != "" {
			a.tracker.TrackEvent("Keyboard Shortcut", "Search", res.Trigger)
		}
	case keys.ActionSelected:
		a.tracker.TrackEvent("Search", "Result Selected", res.Record.Title)
	case keys.ActionMoved:
		a.tracker.TrackKeystroke(string(keys.ScopeOverlay))
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		cmds = append(cmds, a.prefetch())

	case tea.KeyMsg:
		cmds = append(cmds, a.handleKey(msg))

	case snapshotMsg:
		a.applySnapshot(msg.snap)
		cmds = append(cmds, listenSnapshots(a.snapshots))

	case prefetchedMsg:
		// drop renders made for a stale dataset, size or theme
		if msg.key.Version == a.snap.Version && msg.key.Width == a.viewport.Width && msg.key.Theme == CurrentTheme() {
			a.cache.Put(msg.key, msg.page)
		}

	case contactSubmittedMsg:
		if msg.err != nil {
			uiLog.Warn("contact_submit_failed", slog.String("error", msg.err.Error()))
		}
		cmds = append(cmds, a.form.handleSubmitted(msg))
		a.refreshContent()

	case bannerExpiredMsg:
		a.form.handleBannerExpired(msg)
		a.refreshContent()

	case copiedMsg:
		cmds = append(cmds, a.handleCopied(msg))

	case statusExpiredMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}

	case osThemeMsg:
		if a.themeFollowsOS {
			a.setTheme(msg.theme)
		}
		cmds = append(cmds, a.themeWatcher.Listen())
	}

	cmds = append(cmds, a.drain()...)
	return a, tea.Batch(cmds...)
}

func (a *App) resize(w, h int) {
	a.width, a.height = w, h
	a.viewport.Width = max(20, w-2)
	a.viewport.Height = max(3, h-2)
	a.overlay.SetSize(w, h)
	a.help.SetSize(w, h)
	a.form.SetWidth(a.viewport.Width)

	offset := a.viewport.YOffset
	a.renderCurrent()
	a.viewport.SetYOffset(offset)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return a.quit()
	}
	if a.help.IsVisible() {
		return a.help.Update(msg)
	}
	if a.bus.Publish(keys.FromKeyMsg(msg)) {
		return nil
	}
	if a.overlay.IsOpen() {
		return a.overlay.Update(msg)
	}
	if a.form.Active() && a.loc.Path == a.contactRoute() {
		cmd := a.form.Update(msg)
		a.refreshContent()
		return cmd
	}
	return a.handleGlobalKey(msg)
}

func (a *App) handleGlobalKey(msg tea.KeyMsg) tea.Cmd {
	a.tracker.TrackKeystroke(string(keys.ScopeGlobal))
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()

	case key.Matches(msg, a.keys.Help):
		a.help.Show()
		return nil

	case key.Matches(msg, a.keys.Theme):
		a.themeFollowsOS = false
		a.setTheme(CurrentTheme().Other())
		a.tracker.TrackEvent("Theme", "Toggle", string(CurrentTheme()))
		return nil

	case key.Matches(msg, a.keys.CopyEmail):
		email := a.snap.Data.Personal.Contact.Email
		if email == "" {
			return a.setStatus("No email address to copy.", true)
		}
		return a.copyCmd("email", email)

	case key.Matches(msg, a.keys.CopyLink):
		link, ok := a.currentProjectLink()
		if !ok {
			return a.setStatus("Scroll to a project with a link, then press o.", true)
		}
		return a.copyCmd("link", link)

	case key.Matches(msg, a.keys.CopySocial):
		socials := a.snap.Data.Personal.Contact.Socials
		if len(socials) == 0 {
			return a.setStatus("No social profiles to copy.", true)
		}
		s := socials[a.nextSocial%len(socials)]
		a.nextSocial = (a.nextSocial + 1) % len(socials)
		copyFn := a.opts.Copy
		return func() tea.Msg {
			method, err := copyFn(s.URL)
			return copiedMsg{what: s.Platform + " profile", url: s.URL, platform: s.Platform, method: method, err: err}
		}

	case key.Matches(msg, a.keys.NextItem):
		a.viewport.ScrollDown(1)
		return nil

	case key.Matches(msg, a.keys.PrevItem):
		a.viewport.ScrollUp(1)
		return nil
	}

	if i := a.keys.PageFor(msg); i >= 0 {
		if p, ok := a.routes.at(i); ok {
			a.NavigateTo(p.Route)
		}
		return nil
	}

	if a.loc.Path == a.contactRoute() && (msg.Type == tea.KeyTab || msg.Type == tea.KeyEnter) {
		cmd := a.form.Focus()
		a.refreshContent()
		return cmd
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return cmd
}

func (a *App) quit() tea.Cmd {
	uiLog.Info("quit", slog.String("route", a.loc.String()))
	return tea.Quit
}

func (a *App) setTheme(t Theme) {
	if t == CurrentTheme() {
		return
	}
	InitTheme(string(t))
	offset := a.viewport.YOffset
	a.renderCurrent()
	a.viewport.SetYOffset(offset)
	a.pending = append(a.pending, a.prefetch())
}

// applySnapshot swaps in a rebuilt dataset and index. The overlay closes
// first so its selection never refers to the old index.
func (a *App) applySnapshot(snap *catalog.Snapshot) {
	if snap == nil || snap == a.snap {
		return
	}
	a.overlay.SetIndex(snap.Index)
	a.snap = snap
	a.routes = newRouteTable(snap.Data)
	a.nextSocial = 0
	a.cache.Purge()

	offset := a.viewport.YOffset
	a.renderCurrent()
	a.viewport.SetYOffset(offset)
	uiLog.Info("catalog_swapped", slog.Uint64("version", snap.Version), slog.Int("records", snap.Index.Len()))
	a.pending = append(a.pending, a.setStatus("Portfolio data reloaded.", false), a.prefetch())
}

// currentProjectLink returns the link of the project card nearest the top
// of the projects page viewport.
func (a *App) currentProjectLink() (string, bool) {
	if a.loc.Path != a.projectsRoute() {
		return "", false
	}
	limit := a.viewport.YOffset + max(2, a.viewport.Height/3)
	var current string
	found := false
	bestLine := -1
	anchors := search.AnchorsFor(a.snap.Data).Projects
	for i, pr := range a.snap.Data.Projects {
		line, ok := a.page.Anchors[anchors[i]]
		if !ok || line > limit || line <= bestLine {
			continue
		}
		current, bestLine, found = projectLink(pr), line, true
	}
	return current, found && current != ""
}

func (a *App) copyCmd(what, text string) tea.Cmd {
	copyFn := a.opts.Copy
	return func() tea.Msg {
		method, err := copyFn(text)
		return copiedMsg{what: what, url: text, method: method, err: err}
	}
}

func (a *App) handleCopied(msg copiedMsg) tea.Cmd {
	if msg.err != nil {
		uiLog.Warn("copy_failed", slog.String("what", msg.what), slog.String("error", msg.err.Error()))
		return a.setStatus("Copy failed: "+msg.err.Error(), true)
	}
	switch {
	case msg.platform != "":
		a.tracker.TrackSocial(msg.platform, "Copy", msg.url)
	case msg.what == "link":
		a.tracker.TrackOutbound(msg.url)
	case msg.what == "email":
		a.tracker.TrackEvent("Contact", "Copy Email", "")
	}
	return a.setStatus(fmt.Sprintf("Copied %s (%s).", msg.what, msg.method), false)
}

func (a *App) setStatus(text string, isErr bool) tea.Cmd {
	a.status, a.statusErr = text, isErr
	a.statusSeq++
	seq := a.statusSeq
	return tea.Tick(statusDuration, func(time.Time) tea.Msg { return statusExpiredMsg{seq: seq} })
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}
	if a.help.IsVisible() {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.help.View())
	}
	if a.overlay.IsOpen() {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.overlay.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		a.headerView(),
		lipgloss.NewStyle().PaddingLeft(1).Render(a.viewport.View()),
		a.footerView())
}

func (a *App) headerView() string {
	parts := []string{BrandStyle.Render(a.snap.Data.Personal.Name)}
	for i, p := range a.routes.pages {
		if p.Hidden {
			continue
		}
		label := fmt.Sprintf("%d %s", i+1, p.Title)
		if p.Route == a.loc.Path {
			parts = append(parts, NavActiveStyle.Render(label))
		} else {
			parts = append(parts, NavItemStyle.Render(label))
		}
	}
	return HeaderStyle.Width(a.width).MaxHeight(1).Render(strings.Join(parts, " "))
}

func (a *App) footerView() string {
	var left string
	switch {
	case a.status != "" && a.statusErr:
		left = ErrorStyle.Render(a.status)
	case a.status != "":
		left = SuccessStyle.Render(a.status)
	default:
		var hints []string
		for _, b := range a.keys.ShortHelp() {
			h := b.Help()
			hints = append(hints, FooterKeyStyle.Render(h.Key)+" "+h.Desc)
		}
		left = strings.Join(hints, "  ")
	}
	right := DimStyle.Render(a.loc.String())
	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	return FooterStyle.MaxHeight(1).Render(left + strings.Repeat(" ", gap) + right)
}
