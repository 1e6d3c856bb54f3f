package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/tagrs/movietagger/internal/api"
	"github.com/tagrs/movietagger/internal/config"
	"github.com/tagrs/movietagger/internal/logger"
	"github.com/tagrs/movietagger/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer h.handler.Close()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)

	services := &api.Services{
		Movie:     do.MustInvoke[*service.MovieService](i),
		Libraries: do.MustInvoke[*service.LibraryAccessService](i),
		Search:    indexHandle.Index,
	}

	handler := api.NewServer(services, api.Options{
		StaticDir:         cfg.Server.StaticDir,
		AdminPasswordHash: cfg.Server.AdminPasswordHash,
		MutationRate:      cfg.Server.MutationRate,
	}, log.Logger)

	srv := &http.Server{
		Addr:         cfg.Server.Bind,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	if cfg.Server.AdminPasswordHash == "" {
		log.Warn("Admin password not set, every route is open", "addr", srv.Addr)
	}

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
