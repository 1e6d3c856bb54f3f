package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tagrs/movietagger/internal/collection"
	"github.com/tagrs/movietagger/internal/id"
	"github.com/tagrs/movietagger/internal/service"
)

func (s *Server) registerMovieRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns every tag directory with its member count",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMovies",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies",
		Summary:     "List movies",
		Description: "Returns one page of movies ordered by name, or by relevance when q is set",
		Tags:        []string{"Movies"},
	}, s.handleListMovies)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMovie",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies/{id}",
		Summary:     "Get movie",
		Description: "Returns a movie and whether it is linked into each tag",
		Tags:        []string{"Movies"},
	}, s.handleGetMovie)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleMovieTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/movies/{id}/tags/{tag}",
		Summary:     "Toggle tag",
		Description: "Links the movie into the tag directory, or unlinks it when already linked",
		Tags:        []string{"Movies"},
	}, s.handleToggleMovieTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "reloadCollection",
		Method:      http.MethodPost,
		Path:        "/api/v1/reload",
		Summary:     "Reload collection",
		Description: "Rescans both roots and replaces the in-memory index",
		Tags:        []string{"Collection"},
	}, s.handleReload)
}

// === DTOs ===

// MovieResponse contains movie data in API responses.
type MovieResponse struct {
	ID        string `json:"id" doc:"Movie ID (SHA-1 of the directory name, hex)"`
	Name      string `json:"name" doc:"Directory name"`
	HasPoster bool   `json:"has_poster" doc:"Whether poster.jpg was present at scan time"`
	PosterURL string `json:"poster_url" doc:"Poster image URL"`
}

// TagStateResponse is one tag and whether a movie is linked into it.
type TagStateResponse struct {
	Name   string `json:"name" doc:"Tag name"`
	Linked bool   `json:"linked" doc:"Whether the movie is linked into this tag"`
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	Name   string `json:"name" doc:"Tag name"`
	Movies int    `json:"movies" doc:"Number of linked movies"`
}

// ListTagsOutput wraps the tag list for Huma.
type ListTagsOutput struct {
	Body struct {
		Tags []TagResponse `json:"tags" doc:"Tags ordered by name"`
	}
}

// ListMoviesInput contains paging and search parameters.
type ListMoviesInput struct {
	Page    int    `query:"page" default:"1" doc:"1-based page number, clamped to the last page"`
	PerPage int    `query:"per_page" default:"25" doc:"Page size, capped at 100"`
	Query   string `query:"q" maxLength:"200" doc:"Search text matched against movie names"`
}

// MovieListResponse is one page of movies.
type MovieListResponse struct {
	Query    string          `json:"query,omitempty" doc:"Search text"`
	Page     int             `json:"page" doc:"Page returned"`
	PerPage  int             `json:"per_page" doc:"Page size"`
	Total    int             `json:"total" doc:"Total matching movies"`
	LastPage int             `json:"last_page" doc:"Last page number"`
	Movies   []MovieResponse `json:"movies" doc:"Movies on this page"`
}

// ListMoviesOutput wraps the movie page for Huma.
type ListMoviesOutput struct {
	Body MovieListResponse
}

// MovieInput identifies a movie.
type MovieInput struct {
	ID string `path:"id" doc:"Movie ID (40 hex characters)"`
}

// MovieDetailResponse is a movie with its tag membership.
type MovieDetailResponse struct {
	Movie MovieResponse      `json:"movie"`
	Tags  []TagStateResponse `json:"tags" doc:"Every tag with the movie's membership"`
}

// MovieDetailOutput wraps the movie detail for Huma.
type MovieDetailOutput struct {
	Body MovieDetailResponse
}

// ToggleTagInput identifies a movie and a tag.
type ToggleTagInput struct {
	ID  string `path:"id" doc:"Movie ID (40 hex characters)"`
	Tag string `path:"tag" doc:"Tag name"`
}

// ToggleTagResponse reports the new membership.
type ToggleTagResponse struct {
	Linked  bool               `json:"linked" doc:"Whether the movie is now linked into the tag"`
	Tag     string             `json:"tag" doc:"Tag name"`
	MovieID string             `json:"movie_id" doc:"Movie ID"`
	Tags    []TagStateResponse `json:"tags" doc:"Every tag with the movie's membership after the toggle"`
}

// ToggleTagOutput wraps the toggle result for Huma.
type ToggleTagOutput struct {
	Body ToggleTagResponse
}

// ReloadResponse contains the collection counts after a reload.
type ReloadResponse struct {
	Movies int `json:"movies" doc:"Movies found"`
	Tags   int `json:"tags" doc:"Tags found"`
	Links  int `json:"links" doc:"Movie links across all tags"`
}

// ReloadOutput wraps the reload result for Huma.
type ReloadOutput struct {
	Body ReloadResponse
}

// === Handlers ===

func (s *Server) handleListTags(_ context.Context, _ *struct{}) (*ListTagsOutput, error) {
	tags := s.services.Movie.Tags()

	out := &ListTagsOutput{}
	out.Body.Tags = make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out.Body.Tags = append(out.Body.Tags, TagResponse{Name: t.Name, Movies: t.Movies})
	}
	return out, nil
}

func (s *Server) handleListMovies(ctx context.Context, input *ListMoviesInput) (*ListMoviesOutput, error) {
	page, err := s.services.Movie.List(ctx, input.Query, service.NewPaging(input.Page, input.PerPage))
	if err != nil {
		return nil, err
	}

	movies := make([]MovieResponse, 0, len(page.Movies))
	for _, m := range page.Movies {
		movies = append(movies, toMovieResponse(m))
	}

	return &ListMoviesOutput{
		Body: MovieListResponse{
			Query:    page.Query,
			Page:     page.Paging.Page,
			PerPage:  page.Paging.PerPage,
			Total:    page.Total,
			LastPage: page.LastPage,
			Movies:   movies,
		},
	}, nil
}

func (s *Server) handleGetMovie(_ context.Context, input *MovieInput) (*MovieDetailOutput, error) {
	movieID, err := id.Parse(input.ID)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Movie.Get(movieID)
	if err != nil {
		return nil, err
	}

	return &MovieDetailOutput{
		Body: MovieDetailResponse{
			Movie: toMovieResponse(detail.Movie),
			Tags:  toTagStates(detail.Tags),
		},
	}, nil
}

func (s *Server) handleToggleMovieTag(ctx context.Context, input *ToggleTagInput) (*ToggleTagOutput, error) {
	movieID, err := id.Parse(input.ID)
	if err != nil {
		return nil, err
	}
	tag, err := decodePathParam(input.Tag)
	if err != nil {
		return nil, err
	}

	linked, detail, err := s.services.Movie.ToggleTag(ctx, movieID, tag)
	if err != nil {
		return nil, err
	}

	return &ToggleTagOutput{
		Body: ToggleTagResponse{
			Linked:  linked,
			Tag:     tag,
			MovieID: movieID.String(),
			Tags:    toTagStates(detail.Tags),
		},
	}, nil
}

func (s *Server) handleReload(ctx context.Context, _ *struct{}) (*ReloadOutput, error) {
	stats, err := s.services.Movie.Reload(ctx)
	if err != nil {
		return nil, err
	}

	return &ReloadOutput{
		Body: ReloadResponse{
			Movies: stats.Movies,
			Tags:   stats.Tags,
			Links:  stats.Links,
		},
	}, nil
}

func toMovieResponse(m collection.Movie) MovieResponse {
	return MovieResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		HasPoster: m.HasPoster(),
		PosterURL: posterURL(m.ID),
	}
}

func toTagStates(states []collection.TagState) []TagStateResponse {
	out := make([]TagStateResponse, 0, len(states))
	for _, st := range states {
		out = append(out, TagStateResponse{Name: st.Name, Linked: st.Linked})
	}
	return out
}
