// Package search builds the in-memory command index and filters it against
// a live query.
package search

import (
	"fmt"
	"strings"
)

// Kind tags what a record points at.
type Kind string

const (
	KindPage    Kind = "page"
	KindSection Kind = "section"
	KindProject Kind = "project"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPage, KindSection, KindProject:
		return true
	}
	return false
}

// Record is one searchable entry.
type Record struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TargetRoute string   `json:"targetRoute"`
	Keywords    []string `json:"keywords"`

	// lowered title and description, filled by the builder
	titleLC string
	descLC  string
}

func (r *Record) prepare() {
	r.titleLC = strings.ToLower(r.Title)
	r.descLC = strings.ToLower(r.Description)
}

// matches expects q to be lowercased and non-empty.
func (r *Record) matches(q string) bool {
	if strings.Contains(r.titleLC, q) || strings.Contains(r.descLC, q) {
		return true
	}
	for _, kw := range r.Keywords {
		if strings.Contains(kw, q) {
			return true
		}
	}
	return false
}

func (r Record) String() string {
	return fmt.Sprintf("%s:%s(%s)", r.Kind, r.ID, r.TargetRoute)
}
