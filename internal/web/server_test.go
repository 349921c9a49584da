package web

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-sh/folio/internal/analytics"
	"github.com/folio-sh/folio/internal/catalog"
	"github.com/folio-sh/folio/internal/contact"
	"github.com/folio-sh/folio/internal/portfolio"
	"github.com/folio-sh/folio/internal/statedb"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(portfolio.Default())
	require.NoError(t, err)
	return c
}

func newTestServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()
	cfg := Config{ListenAddr: "127.0.0.1:0", Catalog: newCatalog(t), Suggestions: true}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewServer(cfg)
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apiError {
	t.Helper()
	var resp apiErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp.Error
}

func TestHealthzEndpoint(t *testing.T) {
	srv := newTestServer(t, func(c *Config) { c.ReadOnly = true })

	rr := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, true, body["readOnly"])
	assert.EqualValues(t, 1, body["version"])

	rr = do(t, srv, http.MethodPost, "/healthz", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestPortfolioEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodGet, "/api/portfolio", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var data portfolio.Data
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &data))
	assert.Equal(t, "Vansh Oberoi", data.Personal.Name)
	assert.NotEmpty(t, data.Projects)
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodGet, "/api/search?q=git", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp searchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "projects", resp.Results[0].ID)
	assert.Equal(t, "/projects", resp.Results[0].TargetRoute)

	rr = do(t, srv, http.MethodGet, "/api/search?q=xyz", "")
	resp = searchResponse{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Zero(t, resp.Total)
	assert.NotNil(t, resp.Results)
	assert.Contains(t, rr.Body.String(), `"results":[]`)

	rr = do(t, srv, http.MethodGet, "/api/search?q=projcts", "")
	resp = searchResponse{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Suggestions, "projects")

	rr = do(t, srv, http.MethodGet, "/api/search?q=a&limit=2", "")
	resp = searchResponse{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, resp.Total-2, resp.More)

	rr = do(t, srv, http.MethodGet, "/api/search?q=a&limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, rr).Code)
}

func TestRecordEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodGet, "/api/records/contact", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"targetRoute":"/contact"`)

	rr = do(t, srv, http.MethodGet, "/api/records/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/records/", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTokenAuth(t *testing.T) {
	srv := newTestServer(t, func(c *Config) { c.Token = "s3cret" })

	tests := []struct {
		name   string
		mutate func(*http.Request)
		target string
		want   int
	}{
		{"missing", func(*http.Request) {}, "/api/portfolio", http.StatusUnauthorized},
		{"wrong bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, "/api/portfolio", http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer s3cret") }, "/api/portfolio", http.StatusOK},
		{"bearer lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer s3cret") }, "/api/portfolio", http.StatusOK},
		{"header", func(r *http.Request) { r.Header.Set(TokenHeader, "s3cret") }, "/api/portfolio", http.StatusOK},
		{"query", func(*http.Request) {}, "/api/portfolio?token=s3cret", http.StatusOK},
		{"healthz is open", func(*http.Request) {}, "/healthz", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			tt.mutate(req)
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

type fakeSubmitter struct {
	err   error
	calls int
}

func (f *fakeSubmitter) Submit(ctx context.Context, m contact.Message) (*contact.Receipt, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &contact.Receipt{ID: "r-1", SentAt: time.Now()}, nil
}

const goodContact = `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"Let us build an engine."}`

func TestContactEndpoint(t *testing.T) {
	sub := &fakeSubmitter{}
	srv := newTestServer(t, func(c *Config) {
		c.Contact = sub
		c.ContactPerMinute = 600
	})

	rr := do(t, srv, http.MethodPost, "/api/contact", goodContact)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"id":"r-1"`)

	rr = do(t, srv, http.MethodPost, "/api/contact", `{"name":"Ada","email":"bad","subject":"Hi","message":"short"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	apiErr := decodeError(t, rr)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.Code)
	require.Len(t, apiErr.Fields, 2)
	assert.Equal(t, "email", apiErr.Fields[0].Field)
	assert.Equal(t, "message", apiErr.Fields[1].Field)

	rr = do(t, srv, http.MethodPost, "/api/contact", `{"name":"Ada","unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/contact", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))

	sub.err = &contact.RelayError{Status: 400, Message: "Form not found"}
	rr = do(t, srv, http.MethodPost, "/api/contact", goodContact)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "Form not found", decodeError(t, rr).Message)

	sub.err = contact.ErrRateLimited
	rr = do(t, srv, http.MethodPost, "/api/contact", goodContact)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	sub.err = errors.New("dial tcp: refused")
	rr = do(t, srv, http.MethodPost, "/api/contact", goodContact)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestContactEndpointGuards(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodPost, "/api/contact", goodContact)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	srv = newTestServer(t, func(c *Config) {
		c.Contact = &fakeSubmitter{}
		c.ReadOnly = true
	})
	rr = do(t, srv, http.MethodPost, "/api/contact", goodContact)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestContactEndpointPerClientLimit(t *testing.T) {
	sub := &fakeSubmitter{}
	srv := newTestServer(t, func(c *Config) {
		c.Contact = sub
		c.ContactPerMinute = 1
	})

	// burst of two, then limited
	for i := 0; i < 2; i++ {
		rr := do(t, srv, http.MethodPost, "/api/contact", goodContact)
		require.Equal(t, http.StatusAccepted, rr.Code)
	}
	rr := do(t, srv, http.MethodPost, "/api/contact", goodContact)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, 2, sub.calls)

	// another client is unaffected
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(goodContact))
	req.RemoteAddr = "10.1.2.3:4567"
	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var gotSince time.Time
	srv = newTestServer(t, func(c *Config) {
		c.Stats = StatsFunc(func(since time.Time) (*analytics.Summary, error) {
			gotSince = since
			return &analytics.Summary{
				Since:     since,
				Total:     3,
				PageViews: []statedb.EventCount{{Kind: analytics.KindPageView, Label: "/", Count: 3}},
			}, nil
		})
	})

	rr = do(t, srv, http.MethodGet, "/api/stats?days=2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -2), gotSince, time.Minute)
	assert.Contains(t, rr.Body.String(), `"total":3`)

	rr = do(t, srv, http.MethodGet, "/api/stats?days=0", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRecoverMiddleware(t *testing.T) {
	h := withRecover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rr).Code)
}

func TestIndexEventsStream(t *testing.T) {
	srv := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events/index", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 4)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if line := sc.Text(); strings.HasPrefix(line, "data: ") {
				events <- strings.TrimPrefix(line, "data: ")
			}
		}
		close(events)
	}()

	first := <-events
	assert.Contains(t, first, `"version":1`)

	require.Eventually(t, func() bool { return srv.cfg.Catalog.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	_, err = srv.cfg.Catalog.Replace(portfolio.Default())
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Contains(t, ev, `"version":2`)
	case <-time.After(5 * time.Second):
		t.Fatal("no index event after reload")
	}
}

func TestSearchWebsocket(t *testing.T) {
	srv := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/search"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() wsServerMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg wsServerMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	hello := read()
	assert.Equal(t, "connected", hello.Event)
	assert.Equal(t, uint64(1), hello.Version)

	require.NoError(t, conn.WriteJSON(wsClientMessage{Type: "query", Query: "git"}))
	res := read()
	require.Equal(t, "results", res.Type)
	require.NotNil(t, res.Search)
	assert.Equal(t, "projects", res.Search.Results[0].ID)

	require.NoError(t, conn.WriteJSON(wsClientMessage{Type: "ping"}))
	assert.Equal(t, "pong", read().Event)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	assert.Equal(t, "INVALID_MESSAGE", read().Code)

	require.NoError(t, conn.WriteJSON(wsClientMessage{Type: "resize"}))
	assert.Equal(t, "UNSUPPORTED_MESSAGE", read().Code)

	require.Eventually(t, func() bool { return srv.cfg.Catalog.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	_, err = srv.cfg.Catalog.Replace(portfolio.Default())
	require.NoError(t, err)
	upd := read()
	assert.Equal(t, "index_updated", upd.Event)
	assert.Equal(t, uint64(2), upd.Version)
}

func TestSearchWebsocketRejectsForeignOrigin(t *testing.T) {
	srv := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/search"
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestShutdownStopsStreams(t *testing.T) {
	srv := newTestServer(t, nil)
	done := make(chan error, 1)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { done <- srv.Serve(ln) }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-done)
}
