// Package search provides name search over the movie collection using an
// in-memory Bleve index that is rebuilt from each collection snapshot.
package search

import (
	"github.com/tagrs/movietagger/internal/collection"
)

// movieDocument is the indexed form of a movie.
type movieDocument struct {
	ID     string // hex identifier, also the Bleve document ID
	Name   string // display name, analyzed for full-text matching
	Folded string // FoldName(Name), kept whole for prefix matching
}

func newMovieDocument(m collection.Movie) movieDocument {
	return movieDocument{
		ID:     m.ID.String(),
		Name:   m.Name,
		Folded: collection.FoldName(m.Name),
	}
}

// toMap converts the document to a map with the field names used by the
// index mapping.
func (d movieDocument) toMap() map[string]any {
	return map[string]any{
		"id":     d.ID,
		"name":   d.Name,
		"folded": d.Folded,
	}
}
