package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/tagrs/movietagger/internal/http/response"
)

// rateLimitMutations limits state changing requests per client IP.
// Reads are never limited.
func (s *Server) rateLimitMutations(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		key := getClientIP(r)
		if !s.limiter.Allow(key) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				"ip", key,
				"path", r.URL.Path,
			)
			if isAPIPath(r.URL.Path) {
				response.TooManyRequests(w, "Too many requests. Please try again later.", s.logger)
				return
			}
			response.Text(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
