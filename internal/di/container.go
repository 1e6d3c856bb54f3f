// Package di provides dependency injection configuration for the movie tagger server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/tagrs/movietagger/internal/collection"
	"github.com/tagrs/movietagger/internal/config"
	"github.com/tagrs/movietagger/internal/di/providers"
	"github.com/tagrs/movietagger/internal/logger"
	"github.com/tagrs/movietagger/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Collection and search
	do.Provide(injector, providers.ProvideCollection)
	do.Provide(injector, providers.ProvideSearchIndex)

	// External clients
	do.Provide(injector, providers.ProvideJellyfinClient)

	// Business services
	do.Provide(injector, providers.ProvideMovieService)
	do.Provide(injector, providers.ProvideLibraryAccessService)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services in dependency order. Any provider
// error is returned instead of panicking.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*collection.Collection](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.JellyfinClientHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.MovieService](injector)
	_ = do.MustInvoke[*service.LibraryAccessService](injector)

	// Workers
	if _, err := do.Invoke[*providers.FileWatcherHandle](injector); err != nil {
		return err
	}

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
