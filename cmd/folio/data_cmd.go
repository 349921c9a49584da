package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/folio-sh/folio/internal/analytics"
	"github.com/folio-sh/folio/internal/config"
	"github.com/folio-sh/folio/internal/portfolio"
	"github.com/folio-sh/folio/internal/search"
	"github.com/folio-sh/folio/internal/statedb"
)

// validateReport is the --json shape of `folio validate`.
type validateReport struct {
	Source   string         `json:"source"`
	Valid    bool           `json:"valid"`
	Error    string         `json:"error,omitempty"`
	Pages    int            `json:"pages"`
	Projects int            `json:"projects"`
	Records  map[string]int `json:"records"`
}

// handleValidate loads a dataset and builds its index without starting
// anything, so authors can check a data file before deploying it.
func handleValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() {
		fmt.Println("Usage: folio validate [options] [file]")
		fmt.Println()
		fmt.Println("Check a portfolio data file. Without a file the configured")
		fmt.Println("data_file (or the built-in dataset) is checked.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	out := NewCLIOutput(*jsonOutput, false)

	path := fs.Arg(0)
	if path == "" {
		path = config.ExpandHome(loadConfig().DataFile)
	}

	report := validateDataset(path)
	if !report.Valid {
		if *jsonOutput {
			out.Print("", report)
		} else {
			out.Error(report.Error, ErrCodeInvalidData)
		}
		os.Exit(1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s is valid\n", successSymbol, report.Source)
	fmt.Fprintf(&b, "  %d pages, %d projects\n", report.Pages, report.Projects)
	for _, k := range []search.Kind{search.KindPage, search.KindSection, search.KindProject} {
		fmt.Fprintf(&b, "  %s %d %s records\n", bulletSymbol, report.Records[string(k)], k)
	}
	out.Print(b.String(), report)
}

func validateDataset(path string) validateReport {
	report := validateReport{Source: path, Records: map[string]int{}}
	if path == "" {
		report.Source = "built-in dataset"
	}

	data, err := portfolio.Resolve(path)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	ix, err := search.Build(data)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	report.Valid = true
	report.Pages = len(data.Pages)
	report.Projects = len(data.Projects)
	for _, rec := range ix.Records() {
		report.Records[string(rec.Kind)]++
	}
	return report
}

// handleStats prints the local analytics summary.
func handleStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	days := fs.Int("days", 7, "Summarise the last N days")
	fs.Usage = func() {
		fmt.Println("Usage: folio stats [options]")
		fmt.Println()
		fmt.Println("Show page views, events and contact form outcomes recorded locally.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	out := NewCLIOutput(*jsonOutput, false)
	if *days <= 0 {
		out.Error("--days must be positive", ErrCodeInvalidUsage)
		os.Exit(1)
	}

	dir, err := config.Dir()
	if err != nil {
		out.Error(err.Error(), ErrCodeUnavailable)
		os.Exit(1)
	}
	db, err := statedb.OpenAndMigrate(filepath.Join(dir, statedb.FileName))
	if err != nil {
		out.Error(err.Error(), ErrCodeUnavailable)
		os.Exit(1)
	}
	defer db.Close()

	since := time.Now().AddDate(0, 0, -*days)
	sum, err := analytics.Summarize(db, since)
	if err != nil {
		out.Error(err.Error(), ErrCodeUnavailable)
		db.Close()
		os.Exit(1)
	}
	out.Print(formatSummary(sum, *days), sum)
}

func formatSummary(s *analytics.Summary, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analytics for the last %d days (%d events)\n", days, s.Total)

	section := func(title string, rows []statedb.EventCount, label func(statedb.EventCount) string) {
		if len(rows) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s\n", title)
		for _, r := range rows {
			fmt.Fprintf(&b, "  %5d  %s\n", r.Count, label(r))
		}
	}
	section("Page views", s.PageViews, func(r statedb.EventCount) string { return r.Label })
	section("Events", s.Events, func(r statedb.EventCount) string {
		parts := []string{r.Category, r.Action}
		if r.Label != "" {
			parts = append(parts, r.Label)
		}
		return strings.Join(parts, " / ")
	})
	section("Outbound links", s.Outbound, func(r statedb.EventCount) string { return r.Label })
	section("Social", s.Social, func(r statedb.EventCount) string { return r.Category + " " + r.Label })

	fmt.Fprintf(&b, "\nContact form: %d sent, %d failed\n", s.Forms.Success, s.Forms.Failed)
	return b.String()
}

// handleConfig manages config.toml. Only `init` exists today.
func handleConfig(args []string) {
	if len(args) == 0 || args[0] != "init" {
		fmt.Println("Usage: folio config init")
		fmt.Println()
		fmt.Println("Write a commented example config.toml into the folio directory.")
		if len(args) > 0 && args[0] != "help" && args[0] != "--help" && args[0] != "-h" {
			os.Exit(1)
		}
		return
	}

	path, written, err := config.WriteExample()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !written {
		fmt.Printf("%s already exists; leaving it alone\n", path)
		return
	}
	fmt.Printf("%s Wrote %s\n", successSymbol, path)
}
