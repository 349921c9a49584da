// Package keys turns raw key presses into search overlay actions. The host
// feeds events through a Bus; the Dispatcher subscribes while the overlay
// region is mounted and consults an injected FocusContext before stealing
// the open key from an editable control.
package keys

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Event is one key press as delivered by the host. Key uses the same names
// as bubbletea ("/", "up", "enter", "esc", "ctrl+c", ...).
type Event struct {
	Key   string
	Alt   bool
	Paste bool
}

// String lets Event be matched with key.Matches.
func (e Event) String() string {
	if e.Alt && !strings.HasPrefix(e.Key, "alt+") {
		return "alt+" + e.Key
	}
	return e.Key
}

// FromKeyMsg converts a bubbletea key message.
func FromKeyMsg(msg tea.KeyMsg) Event {
	k := tea.Key(msg)
	ev := Event{Alt: k.Alt, Paste: k.Paste}
	if k.Type == tea.KeyRunes {
		ev.Key = string(k.Runes)
	} else {
		ev.Key = strings.TrimPrefix(k.String(), "alt+")
	}
	return ev
}

// FocusContext reports whether an editable control (text input, textarea,
// select) currently has focus.
type FocusContext interface {
	EditableFocused() bool
}

// FocusFunc adapts a plain function to FocusContext.
type FocusFunc func() bool

func (f FocusFunc) EditableFocused() bool { return f() }

// Navigator is the host routing capability.
type Navigator interface {
	NavigateTo(route string)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) NavigateTo(route string) { f(route) }
