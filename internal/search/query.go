package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/tagrs/movietagger/internal/collection"
	"github.com/tagrs/movietagger/internal/id"
)

// Params configures a search.
type Params struct {
	Query  string
	Limit  int
	Offset int
}

// Result holds matching movie identifiers in relevance order.
type Result struct {
	Query string    `json:"query"`
	Total uint64    `json:"total"`
	IDs   []id.Hash `json:"ids"`
}

// Search runs a name query. A blank query matches nothing.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	result := &Result{Query: params.Query}

	q := strings.TrimSpace(params.Query)
	if q == "" {
		return result, nil
	}
	if params.Limit <= 0 {
		params.Limit = 25
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q), params.Limit, params.Offset, false)
	req.Fields = []string{"id"}
	req.SortBy([]string{"-_score", "_id"})

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result.Total = res.Total
	result.IDs = make([]id.Hash, 0, len(res.Hits))
	for _, hit := range res.Hits {
		h, err := id.Parse(hit.ID)
		if err != nil {
			s.logger.Warn("skipping malformed search hit", "id", hit.ID, "error", err)
			continue
		}
		result.IDs = append(result.IDs, h)
	}
	return result, nil
}

// buildQuery matches analyzed name terms, tolerates one typo, and treats
// the input as a prefix of the whole folded name.
func buildQuery(q string) query.Query {
	folded := collection.FoldName(q)

	nameMatch := bleve.NewMatchQuery(q)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3.0)

	startsWith := bleve.NewPrefixQuery(folded)
	startsWith.SetField("folded")
	startsWith.SetBoost(2.0)

	fuzzy := bleve.NewFuzzyQuery(folded)
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("name")
	fuzzy.SetBoost(0.8)

	queries := []query.Query{nameMatch, startsWith, fuzzy}

	// Prefix on the last word for type-ahead.
	if words := strings.Fields(folded); len(words) > 0 {
		if last := words[len(words)-1]; len(last) >= 2 {
			prefix := bleve.NewPrefixQuery(last)
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			queries = append(queries, prefix)
		}
	}

	return bleve.NewDisjunctionQuery(queries...)
}
