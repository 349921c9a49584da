package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/folio-sh/folio/internal/config"
	"github.com/folio-sh/folio/internal/logging"
	"github.com/folio-sh/folio/internal/web"
)

const shutdownTimeout = 5 * time.Second

// serveFlags are shared by `serve` and `web`.
type serveFlags struct {
	listen   *string
	token    *string
	readOnly *bool
	dataFile *string
}

func newServeFlags(fs *flag.FlagSet, cfg *config.UserConfig) serveFlags {
	return serveFlags{
		listen:   fs.String("listen", cfg.Web.Listen, "Listen address for the web server"),
		token:    fs.String("token", cfg.Web.Token, "Bearer token for API/WS access"),
		readOnly: fs.Bool("read-only", cfg.Web.ReadOnly, "Reject contact submissions"),
		dataFile: fs.String("data", "", "Portfolio data file (TOML or YAML)"),
	}
}

// buildWebServer returns a ready-to-start server over rt. The caller is
// responsible for Start and Shutdown.
func buildWebServer(rt *runtime, f serveFlags) *web.Server {
	return web.NewServer(web.Config{
		ListenAddr:       *f.listen,
		ReadOnly:         *f.readOnly,
		Token:            *f.token,
		Catalog:          rt.catalog,
		Contact:          rt.contact,
		Stats:            rt.stats(),
		MaxResults:       rt.cfg.Search.MaxResults,
		Suggestions:      rt.cfg.Search.GetSuggestions(),
		ContactPerMinute: rt.cfg.Contact.RatePerMinute,
	})
}

// runBackground runs the server and the data watcher until ctx is done or
// either fails.
func runBackground(ctx context.Context, rt *runtime, srv *web.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if w := rt.watch(); w != nil {
		g.Go(func() error {
			w.Start()
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			w.Stop()
			return nil
		})
	}
	return g.Wait()
}

// handleServe runs the HTTP API headless until SIGINT/SIGTERM.
func handleServe(args []string) {
	cfg := loadConfig()
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := newServeFlags(fs, cfg)
	fs.Usage = func() {
		fmt.Println("Usage: folio serve [options]")
		fmt.Println()
		fmt.Println("Serve the portfolio, search and contact form over HTTP.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  folio serve")
		fmt.Println("  folio serve --listen 0.0.0.0:8462 --token secret")
		fmt.Println("  folio serve --data ~/portfolio.yaml --read-only")
	}
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments: %v\n", fs.Args())
		os.Exit(1)
	}

	// the server owns no terminal, so log to the file unconditionally
	if os.Getenv("FOLIO_DEBUG") == "" {
		os.Setenv("FOLIO_DEBUG", "1")
	}
	defer setupLogging(cfg)()

	rt, err := openRuntime(cfg, *f.dataFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	srv := buildWebServer(rt, f)
	fmt.Printf("folio serving on http://%s\n", srv.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := runBackground(ctx, rt, srv); err != nil {
		logging.ForComponent(logging.CompWeb).Error("server_failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		rt.Close()
		os.Exit(1)
	}
}

// handleWeb starts the TUI with the web server running alongside.
func handleWeb(args []string) {
	cfg := loadConfig()
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	f := newServeFlags(fs, cfg)
	route := fs.String("route", "/", "Page to open first")
	fs.Usage = func() {
		fmt.Println("Usage: folio web [options]")
		fmt.Println()
		fmt.Println("Start the TUI with the web server running alongside.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	defer setupLogging(cfg)()
	rt, err := openRuntime(cfg, *f.dataFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	srv := buildWebServer(rt, f)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- runBackground(ctx, rt, srv) }()

	tuiErr := runProgram(rt, *route, false)
	cancel()
	if err := <-errCh; err != nil {
		fmt.Fprintf(os.Stderr, "Error: web server: %v\n", err)
	}
	if tuiErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", tuiErr)
		rt.Close()
		os.Exit(1)
	}
}
