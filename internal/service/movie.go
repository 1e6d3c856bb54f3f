package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tagrs/movietagger/internal/collection"
	"github.com/tagrs/movietagger/internal/id"
	"github.com/tagrs/movietagger/internal/search"
)

// MovieService serves the movie collection to the HTTP layer.
type MovieService struct {
	collection *collection.Collection
	search     *search.Index
	logger     *slog.Logger
}

// NewMovieService creates a new movie service. index may be nil, in which
// case queries fall back to substring matching on folded names.
func NewMovieService(c *collection.Collection, index *search.Index, logger *slog.Logger) *MovieService {
	return &MovieService{
		collection: c,
		search:     index,
		logger:     logger,
	}
}

// MoviePage is one page of the movie list.
type MoviePage struct {
	Query    string             `json:"query,omitempty"`
	Paging   Paging             `json:"paging"`
	Total    int                `json:"total"`
	LastPage int                `json:"last_page"`
	Movies   []collection.Movie `json:"movies"`
}

// TagSummary is a tag with its member count.
type TagSummary struct {
	Name   string `json:"name"`
	Movies int    `json:"movies"`
}

// MovieDetail is a movie with its membership in every tag.
type MovieDetail struct {
	Movie collection.Movie      `json:"movie"`
	Tags  []collection.TagState `json:"tags"`
}

// List returns one page of movies ordered by name, or by relevance when
// query is set. A page past the end is moved onto the last page.
func (s *MovieService) List(ctx context.Context, query string, paging Paging) (*MoviePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		all := s.collection.Movies()
		return s.pageOf(all, query, paging), nil
	}

	if s.search == nil {
		return s.pageOf(s.filter(query), query, paging), nil
	}

	res, err := s.search.Search(ctx, search.Params{Query: query, Limit: paging.PerPage, Offset: paging.Offset()})
	if err != nil {
		return nil, err
	}
	total := int(res.Total)
	if clamped := paging.Clamp(total); clamped != paging {
		paging = clamped
		res, err = s.search.Search(ctx, search.Params{Query: query, Limit: paging.PerPage, Offset: paging.Offset()})
		if err != nil {
			return nil, err
		}
	}

	return &MoviePage{
		Query:    query,
		Paging:   paging,
		Total:    total,
		LastPage: paging.LastPage(total),
		Movies:   s.collection.MoviesByID(res.IDs),
	}, nil
}

func (s *MovieService) pageOf(movies []collection.Movie, query string, paging Paging) *MoviePage {
	if movies == nil {
		movies = []collection.Movie{}
	}
	total := len(movies)
	paging = paging.Clamp(total)

	start := min(paging.Offset(), total)
	end := min(start+paging.PerPage, total)

	return &MoviePage{
		Query:    query,
		Paging:   paging,
		Total:    total,
		LastPage: paging.LastPage(total),
		Movies:   movies[start:end],
	}
}

func (s *MovieService) filter(query string) []collection.Movie {
	needle := collection.FoldName(query)
	var out []collection.Movie
	for _, m := range s.collection.Movies() {
		if strings.Contains(collection.FoldName(m.Name), needle) {
			out = append(out, m)
		}
	}
	return out
}

// Get returns a movie and its tag membership.
func (s *MovieService) Get(movieID id.Hash) (*MovieDetail, error) {
	movie, err := s.collection.Movie(movieID)
	if err != nil {
		return nil, err
	}
	tags, err := s.collection.MovieTags(movieID)
	if err != nil {
		return nil, err
	}
	return &MovieDetail{Movie: movie, Tags: tags}, nil
}

// Details pairs each movie with its tag membership. Movies dropped by a
// reload since they were listed are skipped.
func (s *MovieService) Details(movies []collection.Movie) []MovieDetail {
	out := make([]MovieDetail, 0, len(movies))
	for _, m := range movies {
		tags, err := s.collection.MovieTags(m.ID)
		if err != nil {
			continue
		}
		out = append(out, MovieDetail{Movie: m, Tags: tags})
	}
	return out
}

// ToggleTag flips the movie's membership in tag and returns the movie's
// updated detail.
func (s *MovieService) ToggleTag(ctx context.Context, movieID id.Hash, tag string) (bool, *MovieDetail, error) {
	linked, err := s.collection.ToggleTag(ctx, tag, movieID)
	if err != nil {
		return false, nil, err
	}
	detail, err := s.Get(movieID)
	if err != nil {
		return false, nil, err
	}
	return linked, detail, nil
}

// Tags lists every tag with its member count.
func (s *MovieService) Tags() []TagSummary {
	tags := s.collection.Tags()
	out := make([]TagSummary, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagSummary{Name: t.Name, Movies: t.Members.Len()})
	}
	return out
}

// Reload rescans the filesystem and returns the new counts.
func (s *MovieService) Reload(ctx context.Context) (collection.Stats, error) {
	if err := s.collection.Reload(ctx); err != nil {
		return collection.Stats{}, err
	}
	return s.collection.Stats(), nil
}

// Stats returns current collection counts.
func (s *MovieService) Stats() collection.Stats {
	return s.collection.Stats()
}
