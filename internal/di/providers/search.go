package providers

import (
	"github.com/samber/do/v2"

	"github.com/tagrs/movietagger/internal/collection"
	"github.com/tagrs/movietagger/internal/logger"
	"github.com/tagrs/movietagger/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the in-memory movie name index. It subscribes
// to the collection so every reload rebuilds it.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	c := do.MustInvoke[*collection.Collection](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.New(log.WithComponent("search").Logger)
	if err != nil {
		return nil, err
	}
	c.Subscribe(index.Sync)

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}
