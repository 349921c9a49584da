package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/folio-sh/folio/internal/catalog"
	"github.com/folio-sh/folio/internal/contact"
	"github.com/folio-sh/folio/internal/search"
)

type apiError struct {
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Fields  []contact.FieldError `json:"fields,omitempty"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}

// searchResponse is shared by /api/search and the search websocket.
type searchResponse struct {
	Query       string          `json:"query"`
	Total       int             `json:"total"`
	Results     []search.Record `json:"results"`
	More        int             `json:"more"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Version     uint64          `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	snap := s.cfg.Catalog.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"readOnly": s.cfg.ReadOnly,
		"version":  snap.Version,
		"records":  snap.Index.Len(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Catalog.Current().Data)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxResults
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
			return
		}
		limit = min(n, 100)
	}
	writeJSON(w, http.StatusOK, s.runSearch(s.cfg.Catalog.Current(), r.URL.Query().Get("q"), limit))
}

func (s *Server) runSearch(snap *catalog.Snapshot, q string, limit int) searchResponse {
	all := search.Match(q, snap.Index)
	resp := searchResponse{
		Query:   q,
		Total:   len(all),
		Results: all,
		Version: snap.Version,
	}
	if len(all) > limit {
		resp.Results = all[:limit]
		resp.More = len(all) - limit
	}
	if resp.Results == nil {
		resp.Results = []search.Record{}
	}
	if resp.Total == 0 && s.cfg.Suggestions {
		resp.Suggestions = search.Suggest(q, snap.Index, 3)
	}
	return resp
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/records/"
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", "record id is required")
		return
	}
	rec, ok := s.cfg.Catalog.Current().Index.Lookup(id)
	if !ok {
		writeAPIError(w, http.StatusNotFound, "NOT_FOUND", "record not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

const maxContactBody = 64 << 10

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ReadOnly {
		writeAPIError(w, http.StatusForbidden, "READ_ONLY", "contact form is disabled in read-only mode")
		return
	}
	if s.cfg.Contact == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "contact form is not configured")
		return
	}
	if !s.limiter.Allow(r) {
		writeAPIError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many submissions, try again shortly")
		return
	}

	var msg contact.Message
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&msg); err != nil {
		writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid json payload")
		return
	}

	receipt, err := s.cfg.Contact.Submit(r.Context(), msg)
	if err != nil {
		var verr *contact.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, apiErrorResponse{Error: apiError{
				Code:    "VALIDATION_FAILED",
				Message: contact.UserMessage(err),
				Fields:  verr.Fields,
			}})
		case errors.Is(err, contact.ErrRateLimited):
			writeAPIError(w, http.StatusTooManyRequests, "RATE_LIMITED", contact.UserMessage(err))
		case errors.Is(err, contact.ErrRelayRejected):
			writeAPIError(w, http.StatusBadGateway, "RELAY_REJECTED", contact.UserMessage(err))
		default:
			webLog.Error("contact_submit_failed", slog.String("error", err.Error()))
			writeAPIError(w, http.StatusBadGateway, "RELAY_FAILED", contact.UserMessage(err))
		}
		return
	}
	writeJSON(w, http.StatusAccepted, receipt)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Stats == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "analytics store is not configured")
		return
	}
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 365 {
			writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", "days must be between 1 and 365")
			return
		}
		days = n
	}
	summary, err := s.cfg.Stats.Summary(time.Now().AddDate(0, 0, -days))
	if err != nil {
		webLog.Error("stats_failed", slog.String("error", err.Error()))
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiErrorResponse{
		Error: apiError{
			Code:    code,
			Message: message,
		},
	})
}
