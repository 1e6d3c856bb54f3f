package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tagrs/movietagger/internal/http/response"
	applog "github.com/tagrs/movietagger/internal/logger"
)

// maxRequestIDLen bounds client supplied request IDs.
const maxRequestIDLen = 128

// requestID reuses the caller's X-Request-Id when present, otherwise it
// mints a UUID. The ID is echoed back and attached to the request's
// logging context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(applog.WithRequestID(r.Context(), id)))
	})
}

// escapedRoutePath makes chi match routes against the escaped request path,
// so every path parameter arrives percent-encoded and is decoded exactly
// once by decodePathParam.
func escapedRoutePath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePath == "" {
			rctx.RoutePath = r.URL.EscapedPath()
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request once it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		log := s.logger.InfoContext
		if isQuietPath(r.URL.Path) {
			log = s.logger.DebugContext
		}
		if status >= http.StatusInternalServerError {
			log = s.logger.ErrorContext
		}
		log(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// isQuietPath reports paths logged at debug level: assets and posters.
func isQuietPath(path string) bool {
	return strings.HasPrefix(path, "/static/") ||
		strings.HasSuffix(path, "/poster.jpg") ||
		path == "/health"
}

// basicAuth guards everything but /health with HTTP basic auth when an
// admin password hash is configured. Any user name is accepted.
func (s *Server) basicAuth(next http.Handler) http.Handler {
	if s.opts.AdminPasswordHash == "" {
		return next
	}
	hash := []byte(s.opts.AdminPasswordHash)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		_, password, ok := r.BasicAuth()
		if ok && bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="movietagger", charset="UTF-8"`)
		if isAPIPath(r.URL.Path) {
			response.Unauthorized(w, "Authentication required", s.logger)
			return
		}
		response.Text(w, http.StatusUnauthorized, "Authentication required")
	})
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
