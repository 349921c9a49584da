package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type wsClientMessage struct {
	Type  string `json:"type"` // query, ping
	Query string `json:"query,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type wsServerMessage struct {
	Type    string          `json:"type"` // status, results, error
	Event   string          `json:"event,omitempty"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Search  *searchResponse `json:"search,omitempty"`
	Version uint64          `json:"version,omitempty"`
	Time    time.Time       `json:"time"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     allowWSOrigin,
}

const wsMaxMessageBytes = 4096

func allowWSOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil || originURL.Host == "" {
		return false
	}
	return strings.EqualFold(originURL.Host, r.Host)
}

// wsConnWriter serialises writes; gorilla connections allow one writer.
type wsConnWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConnWriter) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteJSON(v)
}

// handleSearchWS answers each "query" message with the matching records and
// pushes an "index_updated" status whenever the catalog reloads, so clients
// can re-run their query.
func (s *Server) handleSearchWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessageBytes)

	writer := &wsConnWriter{conn: conn}
	_ = writer.WriteJSON(wsServerMessage{
		Type:    "status",
		Event:   "connected",
		Version: s.cfg.Catalog.Current().Version,
		Time:    time.Now().UTC(),
	})

	changes, cancel := s.cfg.Catalog.Subscribe()
	defer cancel()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-s.baseCtx.Done():
				_ = conn.Close()
				return
			case snap, ok := <-changes:
				if !ok {
					return
				}
				_ = writer.WriteJSON(wsServerMessage{
					Type:    "status",
					Event:   "index_updated",
					Version: snap.Version,
					Time:    time.Now().UTC(),
				})
			}
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				webLog.Warn("websocket_closed_unexpectedly", slog.String("error", err.Error()))
			}
			return
		}

		var msg wsClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			_ = writer.WriteJSON(wsServerMessage{
				Type:    "error",
				Code:    "INVALID_MESSAGE",
				Message: "invalid json payload",
				Time:    time.Now().UTC(),
			})
			continue
		}

		switch msg.Type {
		case "ping":
			_ = writer.WriteJSON(wsServerMessage{Type: "status", Event: "pong", Time: time.Now().UTC()})
		case "query":
			limit := s.cfg.MaxResults
			if msg.Limit > 0 {
				limit = min(msg.Limit, 100)
			}
			resp := s.runSearch(s.cfg.Catalog.Current(), msg.Query, limit)
			_ = writer.WriteJSON(wsServerMessage{Type: "results", Search: &resp, Time: time.Now().UTC()})
		default:
			_ = writer.WriteJSON(wsServerMessage{
				Type:    "error",
				Code:    "UNSUPPORTED_MESSAGE",
				Message: "supported message types: ping,query",
				Time:    time.Now().UTC(),
			})
		}
	}
}
