package api

import (
	"github.com/tagrs/movietagger/internal/search"
	"github.com/tagrs/movietagger/internal/service"
)

// Services groups the business logic used by the API server.
type Services struct {
	Movie     *service.MovieService
	Libraries *service.LibraryAccessService // disabled when no media server is configured
	Search    *search.Index                 // optional, reported by /health
}
