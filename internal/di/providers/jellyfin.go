package providers

import (
	"github.com/samber/do/v2"

	"github.com/tagrs/movietagger/internal/config"
	"github.com/tagrs/movietagger/internal/jellyfin"
	"github.com/tagrs/movietagger/internal/logger"
)

// JellyfinClientHandle wraps the optional Jellyfin client. Client is nil
// when no server is configured.
type JellyfinClientHandle struct {
	Client *jellyfin.Client
}

// Shutdown implements do.Shutdownable.
func (h *JellyfinClientHandle) Shutdown() error {
	if h.Client != nil {
		h.Client.Close()
	}
	return nil
}

// ProvideJellyfinClient provides the Jellyfin API client.
func ProvideJellyfinClient(i do.Injector) (*JellyfinClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Jellyfin.Enabled() {
		log.Info("Jellyfin integration disabled by configuration")
		return &JellyfinClientHandle{}, nil
	}

	client := jellyfin.New(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey, log.WithComponent("jellyfin").Logger)
	log.Info("Jellyfin integration enabled", "url", client.BaseURL())

	return &JellyfinClientHandle{Client: client}, nil
}
