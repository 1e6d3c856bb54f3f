package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
		Security:    []map[string][]string{},
	}, s.handleHealthCheck)
}

// Component status values.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"
)

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, unhealthy, or disabled"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	stats := s.services.Movie.Stats()

	components := map[string]ComponentHealth{
		"collection": {
			Status:  statusHealthy,
			Message: fmt.Sprintf("%d movies, %d tags, %d links", stats.Movies, stats.Tags, stats.Links),
		},
		"search":   s.checkSearchIndex(stats.Movies),
		"jellyfin": s.checkJellyfin(),
	}

	overall := statusHealthy
	for _, c := range components {
		switch c.Status {
		case statusUnhealthy:
			overall = statusUnhealthy
		case statusDegraded:
			if overall == statusHealthy {
				overall = statusDegraded
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkSearchIndex compares the indexed document count with the collection.
func (s *Server) checkSearchIndex(movies int) ComponentHealth {
	if s.services.Search == nil {
		return ComponentHealth{Status: statusDisabled}
	}

	count, err := s.services.Search.DocumentCount()
	if err != nil {
		return ComponentHealth{Status: statusUnhealthy, Message: err.Error()}
	}
	if count != uint64(movies) {
		return ComponentHealth{
			Status:  statusDegraded,
			Message: fmt.Sprintf("%d of %d movies indexed", count, movies),
		}
	}
	return ComponentHealth{Status: statusHealthy, Message: fmt.Sprintf("%d documents", count)}
}

func (s *Server) checkJellyfin() ComponentHealth {
	if !s.services.Libraries.Enabled() {
		return ComponentHealth{Status: statusDisabled, Message: "not configured"}
	}
	return ComponentHealth{Status: statusHealthy, Message: "configured"}
}
