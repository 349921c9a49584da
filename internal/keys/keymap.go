package keys

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
)

// Scope groups bindings that are live at the same time.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeOverlay Scope = "overlay"
	ScopeContact Scope = "contact"
)

// KeyMap holds every binding the app reacts to. Global bindings are
// ignored while an editable control has focus.
type KeyMap struct {
	OpenSearch key.Binding
	Help       key.Binding
	Quit       key.Binding
	Theme      key.Binding
	CopyEmail  key.Binding
	CopyLink   key.Binding
	CopySocial key.Binding
	NextItem   key.Binding
	PrevItem   key.Binding
	Pages      []key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Close  key.Binding

	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Leave     key.Binding
}

// DefaultOpenKey opens the search overlay.
const DefaultOpenKey = "/"

// PageCount is how many number keys jump to pages.
const PageCount = 6

// DefaultKeyMap returns the bindings with openKey as the search trigger.
func DefaultKeyMap(openKey string) KeyMap {
	if openKey == "" {
		openKey = DefaultOpenKey
	}
	km := KeyMap{
		OpenSearch: key.NewBinding(key.WithKeys(openKey), key.WithHelp(openKey, "search")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "shortcuts")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle theme")),
		CopyEmail:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy email")),
		CopyLink:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "copy project link")),
		CopySocial: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "copy next social profile")),
		NextItem:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "scroll")),
		PrevItem:   key.NewBinding(key.WithKeys("k", "up")),

		Up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑/↓", "navigate")),
		Down:   key.NewBinding(key.WithKeys("down", "ctrl+n")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),

		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab")),
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "send")),
		Leave:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "leave form")),
	}
	for i := 1; i <= PageCount; i++ {
		k := fmt.Sprint(i)
		km.Pages = append(km.Pages, key.NewBinding(key.WithKeys(k), key.WithHelp(k, "go to page")))
	}
	return km
}

// PageFor returns the zero-based page slot bound to k, or -1.
func (km KeyMap) PageFor(k fmt.Stringer) int {
	for i, b := range km.Pages {
		if key.Matches(k, b) {
			return i
		}
	}
	return -1
}

// Shortcut is one row in the help dialog.
type Shortcut struct {
	Scope Scope
	Keys  string
	Desc  string
}

// Shortcuts lists the bindings shown in the help dialog, grouped by scope.
func (km KeyMap) Shortcuts() []Shortcut {
	row := func(s Scope, b key.Binding) Shortcut {
		h := b.Help()
		return Shortcut{Scope: s, Keys: h.Key, Desc: h.Desc}
	}
	return []Shortcut{
		row(ScopeGlobal, km.OpenSearch),
		row(ScopeGlobal, km.Help),
		{Scope: ScopeGlobal, Keys: fmt.Sprintf("1-%d", PageCount), Desc: "go to page"},
		row(ScopeGlobal, km.Theme),
		row(ScopeGlobal, km.NextItem),
		row(ScopeGlobal, km.CopyEmail),
		row(ScopeGlobal, km.CopyLink),
		row(ScopeGlobal, km.CopySocial),
		row(ScopeGlobal, km.Quit),
		row(ScopeOverlay, km.Up),
		row(ScopeOverlay, km.Select),
		row(ScopeOverlay, km.Close),
		row(ScopeContact, km.NextField),
		row(ScopeContact, km.Submit),
		row(ScopeContact, km.Leave),
	}
}

// ShortHelp implements help.KeyMap.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.OpenSearch, km.Help, km.Theme, km.Quit}
}

// FullHelp implements help.KeyMap.
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.OpenSearch, km.Help, km.Theme, km.Quit},
		{km.Up, km.Select, km.Close},
		{km.NextField, km.Submit, km.Leave},
	}
}
