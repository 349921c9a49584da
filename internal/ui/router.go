package ui

import (
	"strings"

	"github.com/folio-sh/folio/internal/portfolio"
)

// location is a parsed route: "/projects#bombay" -> {"/projects", "bombay"}.
type location struct {
	Path   string
	Anchor string
}

func parseRoute(route string) location {
	route = strings.TrimSpace(route)
	if route == "" {
		return location{Path: "/"}
	}
	path, anchor, _ := strings.Cut(route, "#")
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return location{Path: path, Anchor: anchor}
}

func (l location) String() string {
	if l.Anchor == "" {
		return l.Path
	}
	return l.Path + "#" + l.Anchor
}

// routeTable maps paths to pages for one dataset.
type routeTable struct {
	pages []portfolio.Page
}

func newRouteTable(d *portfolio.Data) routeTable {
	return routeTable{pages: d.Pages}
}

// lookup returns the page for path; ok is false for unknown routes.
func (t routeTable) lookup(path string) (portfolio.Page, bool) {
	for _, p := range t.pages {
		if p.Route == path {
			return p, true
		}
	}
	return portfolio.Page{}, false
}

// at returns the page bound to number key slot i. Slots follow the header,
// so hidden pages have no number key.
func (t routeTable) at(i int) (portfolio.Page, bool) {
	nav := t.nav()
	if i < 0 || i >= len(nav) {
		return portfolio.Page{}, false
	}
	return nav[i], true
}

// nav lists pages shown in the header.
func (t routeTable) nav() []portfolio.Page {
	out := make([]portfolio.Page, 0, len(t.pages))
	for _, p := range t.pages {
		if !p.Hidden {
			out = append(out, p)
		}
	}
	return out
}

// adjacent returns the header neighbours of path, used for prefetching.
// Unknown and hidden routes have no neighbours.
func (t routeTable) adjacent(path string) []string {
	nav := t.nav()
	for i, p := range nav {
		if p.Route != path {
			continue
		}
		var out []string
		if i > 0 {
			out = append(out, nav[i-1].Route)
		}
		if i+1 < len(nav) {
			out = append(out, nav[i+1].Route)
		}
		return out
	}
	return nil
}
