// Package analytics records page views and interaction events locally.
// Nothing leaves the machine; `folio stats` and /api/stats read the summary.
package analytics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/folio-sh/folio/internal/config"
	"github.com/folio-sh/folio/internal/logging"
	"github.com/folio-sh/folio/internal/statedb"
)

var analyticsLog = logging.ForComponent(logging.CompAnalytics)

// Event kinds as stored.
const (
	KindPageView       = "page_view"
	KindEvent          = "event"
	KindFormSubmission = "form_submission"
	KindOutbound       = "outbound"
	KindSocial         = "social"
)

// Flags switch individual kinds of tracking.
type Flags struct {
	Enabled            bool
	PageViews          bool
	Events             bool
	OutboundLinks      bool
	FormSubmissions    bool
	SocialInteractions bool
}

// AllOn enables everything.
func AllOn() Flags {
	return Flags{true, true, true, true, true, true}
}

// FlagsFromSettings converts the config switches; unset means on.
func FlagsFromSettings(s config.AnalyticsSettings) Flags {
	on := func(b *bool) bool { return b == nil || *b }
	return Flags{
		Enabled:            on(s.Enabled),
		PageViews:          on(s.PageViews),
		Events:             on(s.Events),
		OutboundLinks:      on(s.OutboundLinks),
		FormSubmissions:    on(s.FormSubmissions),
		SocialInteractions: on(s.SocialInteractions),
	}
}

// Store persists events.
type Store interface {
	InsertEvent(e *statedb.EventRow) (int64, error)
}

const queueSize = 256

// Tracker queues events and writes them from a single goroutine so the UI
// loop never waits on the database. A nil *Tracker is valid and drops
// everything.
type Tracker struct {
	store   Store
	flags   Flags
	session string

	queue chan statedb.EventRow
	done  chan struct{}

	mu     sync.Mutex
	closed bool
	stats  Counters
}

// Counters reports what the tracker did with events since it started.
type Counters struct {
	Queued   int64
	Written  int64
	Dropped  int64
	Failures int64
}

// NewTracker starts the writer goroutine. Call Close to flush and stop it.
func NewTracker(store Store, flags Flags) *Tracker {
	t := &Tracker{
		store:   store,
		flags:   flags,
		session: uuid.NewString(),
		queue:   make(chan statedb.EventRow, queueSize),
		done:    make(chan struct{}),
	}
	go t.run()
	return t
}

// SessionID identifies this process in stored events.
func (t *Tracker) SessionID() string {
	if t == nil {
		return ""
	}
	return t.session
}

// Flags returns the active switches.
func (t *Tracker) Flags() Flags {
	if t == nil {
		return Flags{}
	}
	return t.flags
}

func (t *Tracker) run() {
	defer close(t.done)
	for ev := range t.queue {
		if t.store == nil {
			continue
		}
		if _, err := t.store.InsertEvent(&ev); err != nil {
			t.count(func(c *Counters) { c.Failures++ })
			analyticsLog.Warn("event_write_failed",
				slog.String("kind", ev.Kind),
				slog.String("error", err.Error()))
			continue
		}
		t.count(func(c *Counters) { c.Written++ })
	}
}

func (t *Tracker) count(fn func(*Counters)) {
	t.mu.Lock()
	fn(&t.stats)
	t.mu.Unlock()
}

// Counters returns a snapshot of the tracker's counters.
func (t *Tracker) Counters() Counters {
	if t == nil {
		return Counters{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *Tracker) enqueue(ev statedb.EventRow) {
	ev.SessionID = t.session
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	select {
	case t.queue <- ev:
		t.stats.Queued++
	default:
		t.stats.Dropped++
		logging.Aggregate(logging.CompAnalytics, "event_dropped", slog.String("kind", ev.Kind))
	}
}

// Close stops accepting events, writes what is queued and waits for the
// writer to exit. Safe to call twice.
func (t *Tracker) Close() {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()
	<-t.done
}

// TrackPageView records a navigation to route.
func (t *Tracker) TrackPageView(route, title string) {
	if t == nil || !t.flags.Enabled || !t.flags.PageViews {
		return
	}
	t.enqueue(statedb.EventRow{Kind: KindPageView, Route: route, Label: title})
	analyticsLog.Debug("page_view", slog.String("route", route))
}

// TrackEvent records a generic interaction.
func (t *Tracker) TrackEvent(category, action, label string) {
	if t == nil || !t.flags.Enabled || !t.flags.Events {
		return
	}
	t.enqueue(statedb.EventRow{Kind: KindEvent, Category: category, Action: action, Label: label})
}

// TrackFormSubmission records a form outcome.
func (t *Tracker) TrackFormSubmission(form string, success bool) {
	if t == nil || !t.flags.Enabled || !t.flags.FormSubmissions {
		return
	}
	action := "Submission Success"
	if !success {
		action = "Submission Failed"
	}
	t.enqueue(statedb.EventRow{Kind: KindFormSubmission, Category: "Form", Action: action, Label: form})
}

// TrackOutbound records a link leaving the portfolio.
func (t *Tracker) TrackOutbound(url string) {
	if t == nil || !t.flags.Enabled || !t.flags.OutboundLinks {
		return
	}
	t.enqueue(statedb.EventRow{Kind: KindOutbound, Category: "Outbound Link", Action: "Copy", Label: url})
}

// TrackSocial records an interaction with a social profile.
func (t *Tracker) TrackSocial(platform, action, url string) {
	if t == nil || !t.flags.Enabled || !t.flags.SocialInteractions {
		return
	}
	t.enqueue(statedb.EventRow{Kind: KindSocial, Category: platform, Action: action, Label: url})
}

// TrackKeystroke counts a key press without storing it.
func (t *Tracker) TrackKeystroke(scope string) {
	if t == nil || !t.flags.Enabled || !t.flags.Events {
		return
	}
	logging.Aggregate(logging.CompAnalytics, "keystroke", slog.String("scope", scope))
}
