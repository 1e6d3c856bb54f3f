package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	applog "github.com/tagrs/movietagger/internal/logger"
)

func TestRequestID_Generated(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(http.MethodGet, "/health", nil)

	got := resp.Header().Get(requestIDHeader)
	_, err := uuid.Parse(got)
	assert.NoError(t, err, "expected a UUID, got %q", got)
}

func TestRequestID_Reused(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(http.MethodGet, "/health", http.Header{requestIDHeader: {"abc-123"}})

	assert.Equal(t, "abc-123", resp.Header().Get(requestIDHeader))
}

func TestRequestID_TooLongReplaced(t *testing.T) {
	ts := setupTestServer(t)
	long := strings.Repeat("x", maxRequestIDLen+1)

	resp := ts.do(http.MethodGet, "/health", http.Header{requestIDHeader: {long}})

	assert.NotEqual(t, long, resp.Header().Get(requestIDHeader))
	assert.NotEmpty(t, resp.Header().Get(requestIDHeader))
}

func TestRequestID_InContext(t *testing.T) {
	var seen string
	handler := requestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = applog.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "ctx-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "ctx-id", seen)
}

func withPassword(t *testing.T, password string) func(*Options) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return func(o *Options) { o.AdminPasswordHash = string(hash) }
}

func basicAuthHeader(password string) http.Header {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("admin", password)
	return http.Header{"Authorization": req.Header.Values("Authorization")}
}

func TestBasicAuth(t *testing.T) {
	ts := setupTestServer(t, withPassword(t, "hunter2"))

	tests := []struct {
		name       string
		method     string
		path       string
		header     http.Header
		wantStatus int
	}{
		{name: "page without credentials", method: http.MethodGet, path: "/", wantStatus: http.StatusUnauthorized},
		{name: "page with wrong password", method: http.MethodGet, path: "/", header: basicAuthHeader("nope"), wantStatus: http.StatusUnauthorized},
		{name: "page with password", method: http.MethodGet, path: "/", header: basicAuthHeader("hunter2"), wantStatus: http.StatusOK},
		{name: "api without credentials", method: http.MethodGet, path: "/api/v1/tags", wantStatus: http.StatusUnauthorized},
		{name: "api with password", method: http.MethodGet, path: "/api/v1/tags", header: basicAuthHeader("hunter2"), wantStatus: http.StatusOK},
		{name: "health is public", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "preflight is public", method: http.MethodOptions, path: "/api/v1/tags", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := tt.header
			if tt.method == http.MethodOptions {
				header = http.Header{
					"Origin":                        {"http://example.com"},
					"Access-Control-Request-Method": {http.MethodGet},
				}
			}
			resp := ts.do(tt.method, tt.path, header)
			assert.Equal(t, tt.wantStatus, resp.Code)
		})
	}
}

func TestBasicAuth_Challenge(t *testing.T) {
	ts := setupTestServer(t, withPassword(t, "hunter2"))

	resp := ts.do(http.MethodGet, "/", nil)
	assert.Contains(t, resp.Header().Get("WWW-Authenticate"), `Basic realm="movietagger"`)
	assert.Equal(t, "Authentication required\n", resp.Body.String())

	resp = ts.do(http.MethodGet, "/api/v1/tags", nil)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Code)
}

func TestRateLimitMutations(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) { o.MutationRate = 1 })

	resp := ts.do(http.MethodPost, "/reload", nil)
	assert.Equal(t, http.StatusSeeOther, resp.Code)

	resp = ts.do(http.MethodPost, "/reload", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)

	resp = ts.do(http.MethodPost, "/api/v1/reload", nil)
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.Equal(t, "RATE_LIMITED", env.Code)

	// Reads are never limited.
	resp = ts.do(http.MethodGet, "/api/v1/tags", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Other clients have their own budget.
	resp = ts.do(http.MethodPost, "/reload", http.Header{"X-Forwarded-For": {"10.9.9.9"}})
	assert.Equal(t, http.StatusSeeOther, resp.Code)
}

func TestRateLimitMutations_Disabled(t *testing.T) {
	ts := setupTestServer(t)

	for range 5 {
		resp := ts.do(http.MethodPost, "/reload", nil)
		assert.Equal(t, http.StatusSeeOther, resp.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		header     http.Header
		want       string
	}{
		{name: "remote addr", remoteAddr: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "remote addr without port", remoteAddr: "192.0.2.1", want: "192.0.2.1"},
		{name: "forwarded for", remoteAddr: "192.0.2.1:1234", header: http.Header{"X-Forwarded-For": {"10.0.0.1, 10.0.0.2"}}, want: "10.0.0.1"},
		{name: "real ip", remoteAddr: "192.0.2.1:1234", header: http.Header{"X-Real-Ip": {"10.0.0.3"}}, want: "10.0.0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.header {
				req.Header[k] = v
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestIsQuietPath(t *testing.T) {
	assert.True(t, isQuietPath("/static/main.css"))
	assert.True(t, isQuietPath("/movie/abc/poster.jpg"))
	assert.True(t, isQuietPath("/health"))
	assert.False(t, isQuietPath("/movies"))
}
