package keys

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"

	"github.com/folio-sh/folio/internal/logging"
	"github.com/folio-sh/folio/internal/search"
)

var keysLog = logging.ForComponent(logging.CompKeys)

// State of the overlay.
type State int

const (
	Idle State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "idle"
}

// Action is what a handled key did.
type Action int

const (
	ActionNone Action = iota
	ActionOpened
	ActionClosed
	ActionMoved
	ActionSelected
)

var actionNames = map[Action]string{
	ActionNone:     "none",
	ActionOpened:   "opened",
	ActionClosed:   "closed",
	ActionMoved:    "moved",
	ActionSelected: "selected",
}

func (a Action) String() string { return actionNames[a] }

// Result describes the outcome of one key event.
type Result struct {
	Handled bool
	Action  Action
	// Record is set for ActionSelected.
	Record search.Record
	// Trigger is the key that caused the action.
	Trigger string
}

// Dispatcher is the overlay state machine. It is driven from a single event
// loop and is not safe for concurrent use.
type Dispatcher struct {
	state    State
	query    *search.QueryState
	focus    FocusContext
	nav      Navigator
	keys     KeyMap
	observer func(Result)

	detach func()
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithKeyMap overrides the default bindings.
func WithKeyMap(km KeyMap) Option {
	return func(d *Dispatcher) { d.keys = km }
}

// WithObserver is called after every handled event.
func WithObserver(fn func(Result)) Option {
	return func(d *Dispatcher) { d.observer = fn }
}

// NewDispatcher wires the state machine to its query state and host
// capabilities. All three are required.
func NewDispatcher(q *search.QueryState, focus FocusContext, nav Navigator, opts ...Option) *Dispatcher {
	if q == nil || focus == nil || nav == nil {
		panic("keys: NewDispatcher requires query state, focus context and navigator")
	}
	d := &Dispatcher{
		query: q,
		focus: focus,
		nav:   nav,
		keys:  DefaultKeyMap(DefaultOpenKey),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Attach subscribes the dispatcher to bus. Attaching twice is a no-op.
func (d *Dispatcher) Attach(bus *Bus) {
	if d.detach != nil {
		return
	}
	d.detach = bus.Subscribe(func(ev Event) bool {
		return d.HandleKey(ev).Handled
	})
	keysLog.Debug("dispatcher_attached", slog.Int("listeners", bus.Len()))
}

// Detach removes the bus subscription and closes the overlay.
func (d *Dispatcher) Detach() {
	if d.detach == nil {
		return
	}
	d.detach()
	d.detach = nil
	d.Close()
	keysLog.Debug("dispatcher_detached")
}

// Attached reports whether the dispatcher holds a bus subscription.
func (d *Dispatcher) Attached() bool { return d.detach != nil }

func (d *Dispatcher) State() State { return d.state }
func (d *Dispatcher) IsOpen() bool { return d.state == Open }

// Query exposes the overlay's query state for rendering.
func (d *Dispatcher) Query() *search.QueryState { return d.query }

// Open shows the overlay with a cleared query.
func (d *Dispatcher) Open() {
	d.query.Reset()
	d.state = Open
}

// Close hides the overlay and clears the query.
func (d *Dispatcher) Close() {
	d.query.Reset()
	d.state = Idle
}

// SetQuery forwards the overlay's input text to the matcher.
func (d *Dispatcher) SetQuery(text string) {
	if d.state != Open {
		return
	}
	d.query.SetQuery(text)
}

// HandleKey runs one event through the state machine.
func (d *Dispatcher) HandleKey(ev Event) Result {
	var res Result
	if d.state == Idle {
		res = d.handleIdle(ev)
	} else {
		res = d.handleOpen(ev)
	}
	if res.Handled {
		res.Trigger = ev.String()
		if d.observer != nil {
			d.observer(res)
		}
	}
	return res
}

func (d *Dispatcher) handleIdle(ev Event) Result {
	if ev.Paste || !key.Matches(ev, d.keys.OpenSearch) {
		return Result{}
	}
	if d.focus.EditableFocused() {
		// typing into a field; let the key through
		return Result{}
	}
	d.Open()
	keysLog.Debug("overlay_opened", slog.String("key", ev.String()))
	return Result{Handled: true, Action: ActionOpened}
}

func (d *Dispatcher) handleOpen(ev Event) Result {
	switch {
	case key.Matches(ev, d.keys.Down):
		d.query.MoveDown()
		logging.Aggregate(logging.CompKeys, "selection_moved")
		return Result{Handled: true, Action: ActionMoved}

	case key.Matches(ev, d.keys.Up):
		d.query.MoveUp()
		logging.Aggregate(logging.CompKeys, "selection_moved")
		return Result{Handled: true, Action: ActionMoved}

	case key.Matches(ev, d.keys.Select):
		rec, ok := d.query.Selected()
		if !ok {
			return Result{Handled: true, Action: ActionNone}
		}
		d.nav.NavigateTo(rec.TargetRoute)
		d.Close()
		keysLog.Info("result_selected",
			slog.String("id", rec.ID),
			slog.String("route", rec.TargetRoute))
		return Result{Handled: true, Action: ActionSelected, Record: rec}

	case key.Matches(ev, d.keys.Close):
		d.Close()
		return Result{Handled: true, Action: ActionClosed}
	}
	return Result{}
}
