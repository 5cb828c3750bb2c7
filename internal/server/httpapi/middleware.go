package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/cloudstore/internal/common"
)

func (s *HTTPServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.corsOrigin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+common.AuthTokenHeaderName)
		next.ServeHTTP(w, r)
	})
}

// resolveOwner validates the auth-token header and returns the caller's
// identity. On failure it writes the error response and reports ok=false.
func (s *HTTPServer) resolveOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, err := s.auth.ValidateToken(r.Context(), r.Header.Get(common.AuthTokenHeaderName))
	if err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	return owner, true
}
