package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Other returns the opposite theme.
func (t Theme) Other() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Palette is one theme's colors. Page renderers take a Palette by value so
// they can run off the UI loop without touching the package globals.
type Palette struct {
	Theme                               Theme
	Bg, Surface, Border, Text, TextDim  lipgloss.Color
	Accent, Purple, Cyan, Green, Yellow lipgloss.Color
	Orange, Red, Comment                lipgloss.Color
}

// Dark Theme - Tokyo Night
var darkPalette = Palette{
	Theme:   ThemeDark,
	Bg:      lipgloss.Color("#1a1b26"),
	Surface: lipgloss.Color("#24283b"),
	Border:  lipgloss.Color("#414868"),
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Purple:  lipgloss.Color("#bb9af7"),
	Cyan:    lipgloss.Color("#7dcfff"),
	Green:   lipgloss.Color("#9ece6a"),
	Yellow:  lipgloss.Color("#e0af68"),
	Orange:  lipgloss.Color("#ff9e64"),
	Red:     lipgloss.Color("#f7768e"),
	Comment: lipgloss.Color("#787fa0"),
}

// Light Theme - Tokyo Night Light variant
var lightPalette = Palette{
	Theme:   ThemeLight,
	Bg:      lipgloss.Color("#d5d6db"),
	Surface: lipgloss.Color("#e9e9ec"),
	Border:  lipgloss.Color("#9699a3"),
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Purple:  lipgloss.Color("#7847bd"),
	Cyan:    lipgloss.Color("#166775"),
	Green:   lipgloss.Color("#485e30"),
	Yellow:  lipgloss.Color("#8f5e15"),
	Orange:  lipgloss.Color("#965027"),
	Red:     lipgloss.Color("#8c4351"),
	Comment: lipgloss.Color("#6a6d7c"),
}

// PaletteFor returns the colors for theme; anything but light is dark.
func PaletteFor(theme Theme) Palette {
	if theme == ThemeLight {
		return lightPalette
	}
	return darkPalette
}

// themeMu protects the active palette and chrome styles during live theme
// switches (the OS theme watcher delivers on its own goroutine).
var (
	themeMu sync.RWMutex
	active  = darkPalette
)

// InitTheme sets the active palette by name and rebuilds the chrome styles.
// Must be called before any UI rendering.
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()
	active = PaletteFor(Theme(theme))
	initStyles(active)
}

// CurrentTheme returns the active theme.
func CurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return active.Theme
}

// CurrentPalette returns a copy of the active palette.
func CurrentPalette() Palette {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return active
}

func init() {
	InitTheme(string(ThemeDark))
}

// Chrome styles: header, navigation, footer, dialogs. Page bodies build
// their own styles from a Palette.
var (
	HeaderStyle      lipgloss.Style
	BrandStyle       lipgloss.Style
	NavItemStyle     lipgloss.Style
	NavActiveStyle   lipgloss.Style
	FooterStyle      lipgloss.Style
	FooterKeyStyle   lipgloss.Style
	DimStyle         lipgloss.Style
	ErrorStyle       lipgloss.Style
	SuccessStyle     lipgloss.Style
	OverlayStyle     lipgloss.Style
	OverlayTitle     lipgloss.Style
	SearchBoxStyle   lipgloss.Style
	ResultStyle      lipgloss.Style
	ResultActive     lipgloss.Style
	FieldLabelStyle  lipgloss.Style
	FieldActiveLabel lipgloss.Style
	ButtonStyle      lipgloss.Style
	ButtonActive     lipgloss.Style
)

func initStyles(p Palette) {
	HeaderStyle = lipgloss.NewStyle().
		Background(p.Surface).
		Foreground(p.Text).
		Padding(0, 1)

	BrandStyle = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	NavItemStyle = lipgloss.NewStyle().
		Foreground(p.TextDim).
		Padding(0, 1)

	NavActiveStyle = lipgloss.NewStyle().
		Foreground(p.Bg).
		Background(p.Accent).
		Bold(true).
		Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
		Foreground(p.Comment).
		Padding(0, 1)

	FooterKeyStyle = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	DimStyle = lipgloss.NewStyle().
		Foreground(p.Comment)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(p.Red).
		Bold(true)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(p.Green).
		Bold(true)

	OverlayStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(1, 2)

	OverlayTitle = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	SearchBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(0, 1).
		Foreground(p.Text)

	ResultStyle = lipgloss.NewStyle().
		Padding(0, 1)

	ResultActive = lipgloss.NewStyle().
		Padding(0, 1).
		Background(p.Accent).
		Foreground(p.Bg)

	FieldLabelStyle = lipgloss.NewStyle().
		Foreground(p.TextDim)

	FieldActiveLabel = lipgloss.NewStyle().
		Foreground(p.Purple).
		Bold(true)

	ButtonStyle = lipgloss.NewStyle().
		Foreground(p.Accent).
		Background(p.Border).
		Padding(0, 2)

	ButtonActive = lipgloss.NewStyle().
		Foreground(p.Bg).
		Background(p.Accent).
		Padding(0, 2).
		Bold(true)
}
