package web

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenHeader is an alternative to the Authorization header for clients
// that cannot set bearer auth.
const TokenHeader = "X-Folio-Token"

// authorizeRequest accepts the token as ?token=, a bearer header, or
// X-Folio-Token. No configured token means the server is open.
func (s *Server) authorizeRequest(r *http.Request) bool {
	if s.cfg.Token == "" {
		return true
	}
	for _, candidate := range []string{
		r.URL.Query().Get("token"),
		bearerToken(r.Header.Get("Authorization")),
		r.Header.Get(TokenHeader),
	} {
		candidate = strings.TrimSpace(candidate)
		if candidate != "" && secureEqual(candidate, s.cfg.Token) {
			return true
		}
	}
	return false
}

func bearerToken(authHeader string) string {
	const prefix = "bearer "
	authHeader = strings.TrimSpace(authHeader)
	if len(authHeader) < len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(prefix):])
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
