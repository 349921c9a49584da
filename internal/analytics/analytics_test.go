package analytics

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/folio-sh/folio/internal/config"
	"github.com/folio-sh/folio/internal/statedb"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memStore struct {
	mu     sync.Mutex
	events []statedb.EventRow
	err    error
}

func (m *memStore) InsertEvent(e *statedb.EventRow) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.events = append(m.events, *e)
	return int64(len(m.events)), nil
}

func (m *memStore) all() []statedb.EventRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]statedb.EventRow(nil), m.events...)
}

func TestTrackerWritesEvents(t *testing.T) {
	store := &memStore{}
	tr := NewTracker(store, AllOn())

	tr.TrackPageView("/projects", "Projects")
	tr.TrackEvent("Search", "Result Selected", "Projects")
	tr.TrackEvent("Keyboard Shortcut", "Search", "/")
	tr.TrackFormSubmission("contact", true)
	tr.TrackFormSubmission("contact", false)
	tr.TrackOutbound("https://github.com/Vansh462")
	tr.TrackSocial("LinkedIn", "Copy", "https://linkedin.com/in/x")
	tr.Close()

	got := store.all()
	require.Len(t, got, 7)

	assert.Equal(t, KindPageView, got[0].Kind)
	assert.Equal(t, "/projects", got[0].Route)
	assert.Equal(t, "Result Selected", got[1].Action)
	assert.Equal(t, "/", got[2].Label)
	assert.Equal(t, "Submission Success", got[3].Action)
	assert.Equal(t, "Submission Failed", got[4].Action)
	assert.Equal(t, KindOutbound, got[5].Kind)
	assert.Equal(t, KindSocial, got[6].Kind)

	for _, e := range got {
		assert.Equal(t, tr.SessionID(), e.SessionID)
		assert.False(t, e.CreatedAt.IsZero())
	}
	c := tr.Counters()
	assert.Equal(t, int64(7), c.Queued)
	assert.Equal(t, int64(7), c.Written)
}

func TestTrackerFlags(t *testing.T) {
	off := false
	flags := FlagsFromSettings(config.AnalyticsSettings{PageViews: &off, OutboundLinks: &off})
	assert.True(t, flags.Enabled)
	assert.False(t, flags.PageViews)
	assert.True(t, flags.Events)

	store := &memStore{}
	tr := NewTracker(store, flags)
	tr.TrackPageView("/", "Home")
	tr.TrackOutbound("https://example.com")
	tr.TrackEvent("Search", "Result Selected", "Home")
	tr.Close()

	got := store.all()
	require.Len(t, got, 1)
	assert.Equal(t, KindEvent, got[0].Kind)
}

func TestTrackerDisabled(t *testing.T) {
	off := false
	store := &memStore{}
	tr := NewTracker(store, FlagsFromSettings(config.AnalyticsSettings{Enabled: &off}))
	tr.TrackPageView("/", "Home")
	tr.TrackEvent("a", "b", "c")
	tr.TrackKeystroke("global")
	tr.Close()
	assert.Empty(t, store.all())
}

func TestTrackerStoreFailure(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	tr := NewTracker(store, AllOn())
	tr.TrackEvent("a", "b", "c")
	tr.Close()

	c := tr.Counters()
	assert.Equal(t, int64(1), c.Failures)
	assert.Zero(t, c.Written)
}

func TestTrackerCloseTwiceAndAfterClose(t *testing.T) {
	store := &memStore{}
	tr := NewTracker(store, AllOn())
	tr.Close()
	tr.Close()
	tr.TrackEvent("late", "event", "")
	assert.Empty(t, store.all())
}

func TestNilTracker(t *testing.T) {
	var tr *Tracker
	assert.NotPanics(t, func() {
		tr.TrackPageView("/", "Home")
		tr.TrackEvent("a", "b", "c")
		tr.TrackFormSubmission("contact", true)
		tr.TrackOutbound("x")
		tr.TrackSocial("x", "y", "z")
		tr.TrackKeystroke("global")
		tr.Close()
	})
	assert.Empty(t, tr.SessionID())
	assert.Equal(t, Counters{}, tr.Counters())
}

func TestSummarize(t *testing.T) {
	db, err := statedb.OpenAndMigrate(filepath.Join(t.TempDir(), statedb.FileName))
	require.NoError(t, err)
	defer db.Close()

	tr := NewTracker(db, AllOn())
	tr.TrackPageView("/", "Home")
	tr.TrackPageView("/about", "About")
	tr.TrackPageView("/about", "About")
	tr.TrackEvent("Search", "Result Selected", "About")
	tr.TrackFormSubmission("contact", true)
	tr.TrackFormSubmission("contact", false)
	tr.TrackFormSubmission("contact", false)
	tr.TrackOutbound("https://github.com/Vansh462")
	tr.Close()

	s, err := Summarize(db, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 8, s.Total)
	require.Len(t, s.PageViews, 2)
	assert.Equal(t, "/about", s.PageViews[0].Label)
	assert.Equal(t, 2, s.PageViews[0].Count)
	assert.Len(t, s.Events, 1)
	assert.Equal(t, FormStats{Success: 1, Failed: 2}, s.Forms)
	assert.Len(t, s.Outbound, 1)
	assert.Empty(t, s.Social)
}
