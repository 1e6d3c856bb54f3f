package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[HealthResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, ComponentHealth{Status: "healthy", Message: "3 movies, 2 tags, 1 links"}, env.Data.Components["collection"])
	assert.Equal(t, ComponentHealth{Status: "healthy", Message: "3 documents"}, env.Data.Components["search"])
	assert.Equal(t, "disabled", env.Data.Components["jellyfin"].Status)
}

func TestHealthCheck_JellyfinConfigured(t *testing.T) {
	ts := setupTestServerWithLibraries(t, newFakeLibraryClient())

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", env.Data.Components["jellyfin"].Status)
}

func TestHealthCheck_SearchDisabled(t *testing.T) {
	ts := setupTestServer(t)
	ts.server.services.Search = nil

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "disabled", env.Data.Components["search"].Status)
}

func TestHealthCheck_SearchBehind(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.server.services.Search.Rebuild(nil))

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "degraded", env.Data.Status)
	assert.Equal(t, ComponentHealth{Status: "degraded", Message: "0 of 3 movies indexed"}, env.Data.Components["search"])
}
