package search

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/tagrs/movietagger/internal/collection"
)

// batchSize bounds the number of documents committed per Bleve batch.
const batchSize = 500

// Index wraps an in-memory Bleve index of movie names.
//
// Thread safety: all methods are safe for concurrent use. Rebuild builds
// the replacement index without holding the lock and only swaps under it.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// New creates an empty in-memory index.
func New(logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &Index{index: index, logger: logger}, nil
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// DocumentCount returns the number of indexed movies.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index contents with movies.
func (s *Index) Rebuild(movies []collection.Movie) error {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	for i := 0; i < len(movies); i += batchSize {
		end := min(i+batchSize, len(movies))

		batch := index.NewBatch()
		for _, m := range movies[i:end] {
			doc := newMovieDocument(m)
			if err := batch.Index(doc.ID, doc.toMap()); err != nil {
				_ = index.Close()
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := index.Batch(batch); err != nil {
			_ = index.Close()
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	s.mu.Lock()
	old := s.index
	s.index = index
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close previous search index", "error", err)
	}
	s.logger.Debug("rebuilt search index", "movies", len(movies))
	return nil
}

// Sync is a collection subscriber that rebuilds the index from snap.
func (s *Index) Sync(snap collection.Snapshot) {
	if err := s.Rebuild(snap.Movies); err != nil {
		s.logger.Error("search index rebuild failed", "error", err)
	}
}
