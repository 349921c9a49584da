package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/folio-sh/folio/internal/keys"
)

// Version is shown in the help dialog footer. Set by cmd/folio.
var Version = "dev"

var scopeTitles = map[keys.Scope]string{
	keys.ScopeGlobal:  "ANYWHERE",
	keys.ScopeOverlay: "SEARCH",
	keys.ScopeContact: "CONTACT FORM",
}

// HelpOverlay shows keyboard shortcuts in a modal
type HelpOverlay struct {
	shortcuts    []keys.Shortcut
	visible      bool
	width        int
	height       int
	scrollOffset int
}

// NewHelpOverlay lists the shortcuts of km.
func NewHelpOverlay(km keys.KeyMap) *HelpOverlay {
	return &HelpOverlay{shortcuts: km.Shortcuts()}
}

func (h *HelpOverlay) Show() {
	h.visible = true
	h.scrollOffset = 0
}

func (h *HelpOverlay) Hide() { h.visible = false }

func (h *HelpOverlay) IsVisible() bool { return h.visible }

func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// Update scrolls on j/k; any other key closes the dialog.
func (h *HelpOverlay) Update(msg tea.Msg) tea.Cmd {
	if !h.visible {
		return nil
	}
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch k.String() {
	case "j", "down":
		h.scrollOffset = min(h.scrollOffset+1, h.maxScroll())
	case "k", "up":
		h.scrollOffset = max(h.scrollOffset-1, 0)
	case "g":
		h.scrollOffset = 0
	case "G":
		h.scrollOffset = h.maxScroll()
	default:
		h.Hide()
	}
	return nil
}

func (h *HelpOverlay) availableHeight() int {
	return max(10, h.height-8)
}

func (h *HelpOverlay) maxScroll() int {
	return max(0, len(h.lines(CurrentPalette(), 14))-h.availableHeight())
}

func (h *HelpOverlay) lines(pal Palette, keyWidth int) []string {
	sectionStyle := lipgloss.NewStyle().Foreground(pal.Cyan).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(pal.Purple).Width(keyWidth)
	descStyle := lipgloss.NewStyle().Foreground(pal.Text)

	out := []string{OverlayTitle.Render("KEYBOARD SHORTCUTS"), ""}
	var scope keys.Scope
	for i, sc := range h.shortcuts {
		if sc.Scope != scope {
			if i > 0 {
				out = append(out, "")
			}
			scope = sc.Scope
			out = append(out, sectionStyle.Render(scopeTitles[scope]))
		}
		out = append(out, "  "+keyStyle.Render(sc.Keys)+descStyle.Render(sc.Desc))
	}
	return out
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	if !h.visible {
		return ""
	}
	pal := CurrentPalette()

	dialogWidth := 48
	if h.width > 0 && h.width < dialogWidth+10 {
		dialogWidth = max(35, h.width-10)
	}
	keyWidth := 14
	if dialogWidth < 45 {
		keyWidth = 10
	}

	lines := h.lines(pal, keyWidth)
	lines = append(lines, "",
		lipgloss.NewStyle().Foreground(pal.Border).Render(strings.Repeat("─", max(20, dialogWidth-8))),
		DimStyle.Italic(true).Render("folio v"+Version))

	avail := h.availableHeight()
	offset := min(h.scrollOffset, max(0, len(lines)-avail))
	end := min(len(lines), offset+avail)
	scrolling := len(lines) > avail

	var content strings.Builder
	if scrolling && offset > 0 {
		content.WriteString(lipgloss.NewStyle().Foreground(pal.Yellow).Render("▲ more above"))
		content.WriteString("\n")
	}
	content.WriteString(strings.Join(lines[offset:end], "\n"))
	if end < len(lines) {
		content.WriteString("\n")
		content.WriteString(lipgloss.NewStyle().Foreground(pal.Yellow).Render("▼ more below"))
	}

	content.WriteString("\n\n")
	if scrolling {
		content.WriteString(DimStyle.Italic(true).Render("j/k scroll • any other key to close"))
	} else {
		content.WriteString(DimStyle.Italic(true).Render("Press any key to close"))
	}

	return OverlayStyle.BorderForeground(pal.Purple).Width(dialogWidth).Render(content.String())
}
