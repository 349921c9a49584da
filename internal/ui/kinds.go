package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/folio-sh/folio/internal/search"
)

// kindDescriptor is how a record kind is drawn in the overlay.
type kindDescriptor struct {
	Icon  string
	Label string
	color func(Palette) lipgloss.Color
}

var kindTable = map[search.Kind]kindDescriptor{
	search.KindPage:    {Icon: "◧", Label: "page", color: func(p Palette) lipgloss.Color { return p.Accent }},
	search.KindSection: {Icon: "§", Label: "section", color: func(p Palette) lipgloss.Color { return p.Purple }},
	search.KindProject: {Icon: "◆", Label: "project", color: func(p Palette) lipgloss.Color { return p.Green }},
}

var unknownKind = kindDescriptor{Icon: "·", Label: "item", color: func(p Palette) lipgloss.Color { return p.Comment }}

// describeKind never fails; unknown kinds get a neutral descriptor.
func describeKind(k search.Kind) kindDescriptor {
	if d, ok := kindTable[k]; ok {
		return d
	}
	return unknownKind
}

// Color resolves the descriptor against a palette.
func (d kindDescriptor) Color(p Palette) lipgloss.Color { return d.color(p) }
