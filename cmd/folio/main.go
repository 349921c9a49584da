package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/folio-sh/folio/internal/logging"
	"github.com/folio-sh/folio/internal/ui"
)

const Version = "0.4.0"

// init sets up color profile for consistent terminal colors across environments
func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss color profile based on terminal capabilities.
// Prefers TrueColor for best visuals, falls back to ANSI256 for compatibility.
func initColorProfile() {
	// FOLIO_COLOR: truecolor, 256, 16, none
	if p, ok := colorProfileFromEnv(os.Getenv("FOLIO_COLOR")); ok {
		lipgloss.SetColorProfile(p)
		return
	}

	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	term := os.Getenv("TERM")
	for _, t := range []string{"xterm-256color", "screen-256color", "tmux-256color", "xterm-direct", "alacritty", "kitty", "wezterm"} {
		if strings.Contains(term, t) {
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		}
	}

	// Windows Terminal, iTerm2, JetBrains, Konsole
	if os.Getenv("WT_SESSION") != "" ||
		os.Getenv("ITERM_SESSION_ID") != "" ||
		os.Getenv("TERMINAL_EMULATOR") != "" ||
		os.Getenv("KONSOLE_VERSION") != "" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	// works in SSH, basic terminals and older emulators
	lipgloss.SetColorProfile(termenv.ANSI256)
}

func colorProfileFromEnv(v string) (termenv.Profile, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "truecolor", "true", "24bit":
		return termenv.TrueColor, true
	case "256", "ansi256":
		return termenv.ANSI256, true
	case "16", "ansi", "basic":
		return termenv.ANSI, true
	case "none", "off", "ascii":
		return termenv.Ascii, true
	}
	return termenv.Ascii, false
}

func main() {
	args := os.Args[1:]

	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("folio v%s\n", Version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "search", "s":
			handleSearch(args[1:])
			return
		case "serve":
			handleServe(args[1:])
			return
		case "web":
			handleWeb(args[1:])
			return
		case "validate":
			handleValidate(args[1:])
			return
		case "stats":
			handleStats(args[1:])
			return
		case "config":
			handleConfig(args[1:])
			return
		}
		if !strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
			printHelp()
			os.Exit(1)
		}
	}

	handleTUI(args)
}

// handleTUI opens the portfolio in the terminal.
func handleTUI(args []string) {
	fs := flag.NewFlagSet("folio", flag.ContinueOnError)
	route := fs.String("route", "/", "Page to open first (e.g. /projects)")
	dataFile := fs.String("data", "", "Portfolio data file (TOML or YAML)")
	fs.Usage = printHelp
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := loadConfig()
	defer setupLogging(cfg)()

	rt, err := openRuntime(cfg, *dataFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	if err := runProgram(rt, *route, true); err != nil {
		fmt.Printf("Error: %v\n", err)
		rt.Close()
		os.Exit(1)
	}
}

// runProgram runs the Bubble Tea app until the visitor quits. With watch
// set, data file edits are picked up while it runs.
func runProgram(rt *runtime, route string, watch bool) error {
	ui.Version = Version
	logging.ForComponent(logging.CompUI).Info("tui_started",
		slog.Int("pid", os.Getpid()),
		slog.String("route", route))

	if watch {
		if w := rt.watch(); w != nil {
			go w.Start()
			defer func() {
				w.Stop()
				w.Wait()
			}()
		}
	}

	app := ui.NewApp(ui.Options{
		Catalog:           rt.catalog,
		Contact:           rt.contact,
		ContactTimeout:    rt.contactTimeout(),
		Tracker:           rt.tracker,
		OpenKey:           rt.cfg.Search.OpenKey,
		MaxResults:        rt.cfg.Search.MaxResults,
		Suggestions:       rt.cfg.Search.GetSuggestions(),
		Theme:             rt.cfg.ResolveTheme(),
		FollowSystemTheme: rt.cfg.Theme == "system",
		InitialRoute:      route,
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func printHelp() {
	fmt.Printf("folio v%s - a portfolio in your terminal\n", Version)
	fmt.Println()
	fmt.Println("Usage: folio [command] [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  (none)        Open the portfolio TUI")
	fmt.Println("  search, s     Search pages, sections and projects")
	fmt.Println("  serve         Serve the portfolio API over HTTP")
	fmt.Println("  web           Open the TUI with the HTTP server alongside")
	fmt.Println("  validate      Check a portfolio data file")
	fmt.Println("  stats         Show local analytics")
	fmt.Println("  config init   Write an example config.toml")
	fmt.Println("  version       Show version")
	fmt.Println("  help          Show this help")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --route <path>   Page to open first (default /)")
	fmt.Println("  --data <file>    Portfolio data file instead of the configured one")
	fmt.Println()
	fmt.Println("Keys:")
	fmt.Println("  /  search   ?  shortcuts   1-6  pages   t  theme   q  quit")
	fmt.Println("  c  copy email   o  copy project link   s  copy next social profile")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  FOLIO_HOME    State directory (default ~/.folio)")
	fmt.Println("  FOLIO_DEBUG   Write debug logs to $FOLIO_HOME/debug.log")
	fmt.Println("  FOLIO_COLOR   Color profile: truecolor, 256, 16, none")
}
