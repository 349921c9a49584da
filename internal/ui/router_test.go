package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/folio-sh/folio/internal/portfolio"
	"github.com/folio-sh/folio/internal/search"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		in   string
		want location
	}{
		{"", location{Path: "/"}},
		{"/", location{Path: "/"}},
		{"/projects", location{Path: "/projects"}},
		{"/projects/", location{Path: "/projects"}},
		{"projects", location{Path: "/projects"}},
		{"/projects#bombay-house-price-prediction", location{Path: "/projects", Anchor: "bombay-house-price-prediction"}},
		{"#skills-ai", location{Path: "/", Anchor: "skills-ai"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseRoute(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "/about#guru-nanak-dev-university", parseRoute("/about#guru-nanak-dev-university").String())
}

func TestRouteTable(t *testing.T) {
	rt := newRouteTable(portfolio.Default())

	p, ok := rt.lookup("/experience")
	assert.True(t, ok)
	assert.Equal(t, "experience", p.ID)

	_, ok = rt.lookup("/blog")
	assert.False(t, ok)

	p, ok = rt.at(4)
	assert.True(t, ok)
	assert.Equal(t, "contact", p.ID)
	_, ok = rt.at(5)
	assert.False(t, ok, "hidden privacy page has no number key")
	_, ok = rt.at(-1)
	assert.False(t, ok)

	assert.Len(t, rt.nav(), 5, "privacy is hidden from the header")
	assert.Equal(t, []string{"/", "/experience"}, rt.adjacent("/about"))
	assert.Equal(t, []string{"/about"}, rt.adjacent("/"))
	assert.Equal(t, []string{"/projects"}, rt.adjacent("/contact"))
	assert.Nil(t, rt.adjacent("/privacy"))
	assert.Nil(t, rt.adjacent("/nope"))
}

func TestRenderCacheTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newRenderCache(time.Minute)
	c.now = func() time.Time { return now }

	k := renderKey{Path: "/", Width: 80, Theme: ThemeDark, Version: 1}
	c.Put(k, renderedPage{Title: "Home"})

	got, ok := c.Get(k)
	assert.True(t, ok)
	assert.Equal(t, "Home", got.Title)

	assert.False(t, c.Has(renderKey{Path: "/", Width: 81, Theme: ThemeDark, Version: 1}))
	assert.False(t, c.Has(renderKey{Path: "/", Width: 80, Theme: ThemeLight, Version: 1}))

	now = now.Add(time.Minute)
	assert.False(t, c.Has(k), "entry expires at ttl")
	assert.Zero(t, c.Len())

	c.Put(k, renderedPage{})
	c.Purge()
	assert.Zero(t, c.Len())
}

func TestDescribeKind(t *testing.T) {
	pal := PaletteFor(ThemeDark)
	for _, k := range []search.Kind{search.KindPage, search.KindSection, search.KindProject} {
		d := describeKind(k)
		assert.NotEqual(t, unknownKind.Icon, d.Icon, k)
		assert.NotEmpty(t, d.Color(pal))
	}
	assert.Equal(t, unknownKind.Label, describeKind(search.Kind("tag")).Label)
	assert.Equal(t, pal.Green, describeKind(search.KindProject).Color(pal))
}

func TestThemeOther(t *testing.T) {
	assert.Equal(t, ThemeLight, ThemeDark.Other())
	assert.Equal(t, ThemeDark, ThemeLight.Other())
	assert.Equal(t, ThemeLight, PaletteFor(ThemeLight).Theme)
	assert.Equal(t, ThemeDark, PaletteFor(Theme("neon")).Theme)
}
