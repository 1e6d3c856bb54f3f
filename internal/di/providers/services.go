package providers

import (
	"github.com/samber/do/v2"

	"github.com/tagrs/movietagger/internal/collection"
	"github.com/tagrs/movietagger/internal/logger"
	"github.com/tagrs/movietagger/internal/service"
)

// ProvideMovieService provides the movie service.
func ProvideMovieService(i do.Injector) (*service.MovieService, error) {
	c := do.MustInvoke[*collection.Collection](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMovieService(c, indexHandle.Index, log.Logger), nil
}

// ProvideLibraryAccessService provides the Jellyfin library access service.
// It is disabled when no Jellyfin server is configured.
func ProvideLibraryAccessService(i do.Injector) (*service.LibraryAccessService, error) {
	jellyfinHandle := do.MustInvoke[*JellyfinClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// A nil *jellyfin.Client must not reach the interface.
	var client service.LibraryClient
	if jellyfinHandle.Client != nil {
		client = jellyfinHandle.Client
	}

	return service.NewLibraryAccessService(client, log.Logger), nil
}
