package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/folio-sh/folio/internal/search"
)

// searchOutput is the --json shape of `folio search`.
type searchOutput struct {
	Query       string          `json:"query"`
	Total       int             `json:"total"`
	Results     []search.Record `json:"results"`
	More        int             `json:"more,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

// handleSearch runs one query against the dataset and prints the matches.
// Exits 1 when nothing matches, like grep.
func handleSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	limit := fs.Int("limit", 0, "Maximum results to print (default from config)")
	dataFile := fs.String("data", "", "Portfolio data file (TOML or YAML)")

	fs.Usage = func() {
		fmt.Println("Usage: folio search [options] <query>")
		fmt.Println()
		fmt.Println("Search pages, sections and projects.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  folio search python")
		fmt.Println("  folio search \"house price\" --json")
	}

	out := NewCLIOutput(false, false)
	if err := parseFlags(fs, args); err != nil {
		out.Error(err.Error(), ErrCodeInvalidUsage)
		os.Exit(1)
	}
	out = NewCLIOutput(*jsonOutput, false)

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg := loadConfig()
	cat, err := openCatalog(cfg, *dataFile)
	if err != nil {
		out.Error(err.Error(), ErrCodeInvalidData)
		os.Exit(1)
	}

	n := *limit
	if n <= 0 {
		n = cfg.Search.MaxResults
	}
	result := runQuery(cat.Current().Index, query, n, cfg.Search.GetSuggestions())

	if *jsonOutput {
		out.Print("", result)
	} else {
		width := 80
		styled := term.IsTerminal(int(os.Stdout.Fd()))
		if styled {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
		}
		out.Print(formatResults(result, width, styled), nil)
	}
	if result.Total == 0 {
		os.Exit(1)
	}
}

func runQuery(ix *search.Index, query string, limit int, suggestions bool) searchOutput {
	all := search.Match(query, ix)
	res := searchOutput{Query: query, Total: len(all), Results: all}
	if len(all) > limit {
		res.Results = all[:limit]
		res.More = len(all) - limit
	}
	if res.Results == nil {
		res.Results = []search.Record{}
	}
	if res.Total == 0 && suggestions {
		res.Suggestions = search.Suggest(query, ix, 3)
	}
	return res
}

var (
	kindStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Bold(true)
	routeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
)

// formatResults renders one line per record: kind, title, route and a
// description trimmed to width. Without a terminal the lines are
// tab-separated for scripts.
func formatResults(res searchOutput, width int, styled bool) string {
	var b strings.Builder
	if res.Total == 0 {
		fmt.Fprintf(&b, "No results for %q\n", res.Query)
		if len(res.Suggestions) > 0 {
			fmt.Fprintf(&b, "Did you mean: %s?\n", strings.Join(res.Suggestions, ", "))
		}
		return b.String()
	}

	for _, rec := range res.Results {
		if !styled {
			fmt.Fprintf(&b, "%s\t%s\t%s\n", rec.Kind, rec.Title, rec.TargetRoute)
			continue
		}
		head := fmt.Sprintf("%s %s  %s", bulletSymbol, kindStyle.Render(fmt.Sprintf("%-7s", rec.Kind)), rec.Title)
		route := routeStyle.Render(rec.TargetRoute)
		b.WriteString(head + "  " + route + "\n")
		if rec.Description != "" {
			desc := runewidth.Truncate(rec.Description, max(10, width-4), "…")
			b.WriteString("    " + routeStyle.Render(desc) + "\n")
		}
	}
	if res.More > 0 {
		fmt.Fprintf(&b, "%d more\n", res.More)
	}
	return b.String()
}
