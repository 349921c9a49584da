package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/folio-sh/folio/internal/catalog"
)

var indexEventsHeartbeatInterval = 15 * time.Second

type indexEvent struct {
	Version  uint64    `json:"version"`
	Records  int       `json:"records"`
	Source   string    `json:"source,omitempty"`
	LoadedAt time.Time `json:"loadedAt"`
}

func newIndexEvent(snap *catalog.Snapshot) indexEvent {
	return indexEvent{
		Version:  snap.Version,
		Records:  snap.Index.Len(),
		Source:   snap.Source,
		LoadedAt: snap.LoadedAt.UTC(),
	}
}

// handleIndexEvents streams an "index" event now and after every reload.
func (s *Server) handleIndexEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "stream unavailable")
		return
	}

	changes, cancel := s.cfg.Catalog.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	last := s.cfg.Catalog.Current()
	if err := writeSSEEvent(w, flusher, "index", newIndexEvent(last)); err != nil {
		return
	}

	heartbeat := time.NewTicker(indexEventsHeartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if err := writeSSEComment(w, flusher, "keepalive"); err != nil {
				return
			}
		case snap, ok := <-changes:
			if !ok {
				return
			}
			if snap.Version == last.Version {
				continue
			}
			if err := writeSSEEvent(w, flusher, "index", newIndexEvent(snap)); err != nil {
				return
			}
			last = snap
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func writeSSEComment(w http.ResponseWriter, flusher http.Flusher, comment string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", comment); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
