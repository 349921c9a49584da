package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-sh/folio/internal/portfolio"
	"github.com/folio-sh/folio/internal/search"
)

func defaultIndex(t *testing.T) *search.Index {
	t.Helper()
	ix, err := search.Build(portfolio.Default())
	require.NoError(t, err)
	return ix
}

func TestRunQuery(t *testing.T) {
	ix := defaultIndex(t)

	res := runQuery(ix, "a", 2, true)
	assert.Len(t, res.Results, 2)
	assert.Equal(t, res.Total-2, res.More)
	assert.Empty(t, res.Suggestions)

	res = runQuery(ix, "projcts", 10, true)
	assert.Zero(t, res.Total)
	assert.NotNil(t, res.Results)
	assert.Contains(t, res.Suggestions, "projects")

	res = runQuery(ix, "projcts", 10, false)
	assert.Empty(t, res.Suggestions)
}

func TestFormatResultsPlain(t *testing.T) {
	res := runQuery(defaultIndex(t), "scraping", 10, true)
	out := formatResults(res, 80, false)
	assert.Equal(t, "project\tOfficial Site Link Scraping\t/projects#official-site-link-scraping\n", out)
}

func TestFormatResultsStyled(t *testing.T) {
	res := runQuery(defaultIndex(t), "a", 1, true)
	out := formatResults(res, 40, true)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], res.Results[0].Title)
	assert.Contains(t, out, "more")
}

func TestFormatResultsEmpty(t *testing.T) {
	out := formatResults(searchOutput{Query: "zzz", Results: nil, Suggestions: []string{"zoo"}}, 80, false)
	assert.Contains(t, out, `No results for "zzz"`)
	assert.Contains(t, out, "Did you mean: zoo?")
}
