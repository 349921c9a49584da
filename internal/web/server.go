package web

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/folio-sh/folio/internal/analytics"
	"github.com/folio-sh/folio/internal/catalog"
	"github.com/folio-sh/folio/internal/contact"
	"github.com/folio-sh/folio/internal/logging"
	"github.com/folio-sh/folio/internal/search"
)

var webLog = logging.ForComponent(logging.CompWeb)

// Config defines runtime options for the web server.
type Config struct {
	ListenAddr string
	// ReadOnly rejects contact submissions.
	ReadOnly bool
	Token    string
	Catalog  *catalog.Catalog

	// Contact and Stats are optional; their endpoints answer 503 when nil.
	Contact ContactSubmitter
	Stats   StatsSource

	// MaxResults caps /api/search and websocket results (default 10).
	MaxResults int
	// Suggestions adds "did you mean" terms to empty search responses.
	Suggestions bool
	// ContactPerMinute limits POST /api/contact per client address.
	ContactPerMinute float64
}

// ContactSubmitter delivers a contact form message.
type ContactSubmitter interface {
	Submit(ctx context.Context, m contact.Message) (*contact.Receipt, error)
}

// StatsSource summarises analytics since a point in time.
type StatsSource interface {
	Summary(since time.Time) (*analytics.Summary, error)
}

// StatsFunc adapts a function to StatsSource.
type StatsFunc func(since time.Time) (*analytics.Summary, error)

func (f StatsFunc) Summary(since time.Time) (*analytics.Summary, error) { return f(since) }

// Server wraps an HTTP server exposing the portfolio and its search.
type Server struct {
	cfg        Config
	httpServer *http.Server
	baseCtx    context.Context
	cancelBase context.CancelFunc
	limiter    *clientLimiter
}

// NewServer creates a new web server with routes and middleware.
func NewServer(cfg Config) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:8462"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = search.DefaultDisplayLimit
	}
	if cfg.ContactPerMinute <= 0 {
		cfg.ContactPerMinute = 3
	}
	if cfg.Catalog == nil {
		panic("web: Config.Catalog is required")
	}

	s := &Server{
		cfg:     cfg,
		limiter: newClientLimiter(cfg.ContactPerMinute, 2),
	}
	s.baseCtx, s.cancelBase = context.WithCancel(context.Background())

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/portfolio", s.authorized(http.MethodGet, s.handlePortfolio))
	mux.HandleFunc("/api/search", s.authorized(http.MethodGet, s.handleSearch))
	mux.HandleFunc("/api/records/", s.authorized(http.MethodGet, s.handleRecord))
	mux.HandleFunc("/api/contact", s.authorized(http.MethodPost, s.handleContact))
	mux.HandleFunc("/api/stats", s.authorized(http.MethodGet, s.handleStats))
	mux.HandleFunc("/events/index", s.authorized(http.MethodGet, s.handleIndexEvents))
	mux.HandleFunc("/ws/search", s.authorized(http.MethodGet, s.handleSearchWS))

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           withRecover(withRequestLog(mux)),
		BaseContext:       func(_ net.Listener) context.Context { return s.baseCtx },
		ErrorLog:          log.New(logging.NewBridgeWriter(logging.CompWeb), "", 0),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the configured HTTP handler (used by tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until shutdown or error. Returns nil on graceful shutdown.
func (s *Server) Start() error {
	webLog.Info("server_starting", slog.String("addr", s.cfg.ListenAddr), slog.Bool("read_only", s.cfg.ReadOnly))
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	err := s.httpServer.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancelBase != nil {
		// Signal long-lived handlers (SSE/WS) to stop promptly.
		s.cancelBase()
	}

	err := s.httpServer.Shutdown(ctx)
	if err == nil {
		return nil
	}

	// Long-lived connections may still block graceful shutdown; force close.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if closeErr := s.httpServer.Close(); closeErr != nil {
			return fmt.Errorf("graceful shutdown timed out and force close failed: %w", closeErr)
		}
		return nil
	}
	return err
}

// authorized wraps h with a method check and token auth.
func (s *Server) authorized(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method && !(method == http.MethodGet && r.Method == http.MethodHead) {
			w.Header().Set("Allow", method)
			writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		if !s.authorizeRequest(r) {
			writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}
		h(w, r)
	}
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				webLog.Error("panic",
					slog.String("recover", fmt.Sprintf("%v", rec)),
					slog.String("path", r.URL.Path))
				writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("web: response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Aggregate(logging.CompWeb, "request",
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("last_duration", time.Since(start)))
	})
}

func (s *Server) String() string {
	return fmt.Sprintf("web-server(addr=%s, readOnly=%t)", s.cfg.ListenAddr, s.cfg.ReadOnly)
}
