package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/tagrs/movietagger/internal/collection"
	"github.com/tagrs/movietagger/internal/config"
	"github.com/tagrs/movietagger/internal/logger"
)

// ProvideCollection loads both roots into the in-memory collection.
func ProvideCollection(i do.Injector) (*collection.Collection, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	c, err := collection.New(context.Background(),
		cfg.Library.MovieDir,
		cfg.Library.TagDir,
		collection.WithLogger(log.WithComponent("collection").Logger),
	)
	if err != nil {
		return nil, err
	}

	stats := c.Stats()
	log.Info("Collection loaded",
		"movies", stats.Movies,
		"tags", stats.Tags,
		"links", stats.Links,
	)

	return c, nil
}
