package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tagrs/movietagger/internal/collection"
	domainerrors "github.com/tagrs/movietagger/internal/errors"
	"github.com/tagrs/movietagger/internal/http/response"
	"github.com/tagrs/movietagger/internal/id"
	"github.com/tagrs/movietagger/internal/service"
)

//go:embed templates/*.html templates/*.svg
var templates embed.FS

// missingPosterFile is served for movies without a readable poster.jpg.
const missingPosterFile = "templates/missing_poster.svg"

// pages holds one template set per full page. The index set also carries
// every fragment.
type pages struct {
	index     *template.Template
	libraries *template.Template
	poster    []byte
}

func mustParsePages() *pages {
	base := template.Must(template.ParseFS(templates, "templates/layout.html", "templates/partials.html"))

	poster, err := templates.ReadFile(missingPosterFile)
	if err != nil {
		panic(err)
	}

	return &pages{
		index:     template.Must(template.Must(base.Clone()).ParseFS(templates, "templates/index.html")),
		libraries: template.Must(template.Must(base.Clone()).ParseFS(templates, "templates/user_libraries.html")),
		poster:    poster,
	}
}

func (s *Server) registerWebRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/movies", s.handleMovieList)
	s.router.Get("/movie/{id}", s.handleMovie)
	s.router.Get("/movie/{id}/poster.jpg", s.handleMoviePoster)
	s.router.Post("/movie/{id}/tag/{tag}", s.handleToggleTag)
	s.router.Post("/reload", s.handleReloadRedirect)
	s.router.Get("/user-libraries", s.handleUserLibraries)
	s.router.Post("/user/{userID}/library/{folderID}", s.handleToggleUserFolder)

	if s.opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(s.opts.StaticDir)))
		s.router.Get("/static/*", fs.ServeHTTP)
	}
}

// === View models ===

type pagingView struct {
	URL      string
	Query    string
	Page     int
	PerPage  int
	LastPage int
	Prev     int
	Next     int
	Options  []int
}

// Href returns the query string selecting page and perPage, keeping the
// search text.
func (p pagingView) Href(page, perPage int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(perPage))
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	return "?" + v.Encode()
}

type tagButton struct {
	Name   string
	Linked bool
	URL    string
}

type movieView struct {
	ID        string
	Name      string
	PosterURL string
	Tags      []tagButton
}

type listView struct {
	Paging pagingView
	Movies []movieView
}

type indexView struct {
	Title string
	List  listView
	Stats collection.Stats
}

type folderButton struct {
	ID      string
	Name    string
	Enabled bool
	URL     string
}

type userView struct {
	ID       string
	Name     string
	Admin    bool
	Disabled bool
	Folders  []folderButton
}

type librariesView struct {
	Title  string
	Notice string
	Users  []userView
}

// === Handlers ===

// handleIndex serves the movie list page.
// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	list, err := s.movieList(r)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.render(w, s.pages.index, "layout", indexView{
		Title: "Movie Tagger",
		List:  list,
		Stats: s.services.Movie.Stats(),
	})
}

// handleMovieList serves the movie list fragment swapped into main.
// GET /movies
func (s *Server) handleMovieList(w http.ResponseWriter, r *http.Request) {
	list, err := s.movieList(r)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.render(w, s.pages.index, "movie_list", list)
}

// handleMovie serves one movie article.
// GET /movie/{id}
func (s *Server) handleMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := id.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	detail, err := s.services.Movie.Get(movieID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.render(w, s.pages.index, "movie", toMovieView(*detail))
}

// handleMoviePoster streams poster.jpg, or a placeholder when the movie had
// none or it can no longer be read.
// GET /movie/{id}/poster.jpg
func (s *Server) handleMoviePoster(w http.ResponseWriter, r *http.Request) {
	movieID, err := id.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	detail, err := s.services.Movie.Get(movieID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if detail.Movie.HasPoster() {
		if s.servePoster(w, r, detail.Movie.PosterPath) {
			return
		}
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", CacheNoStore)
	_, _ = w.Write(s.pages.poster)
}

func (s *Server) servePoster(w http.ResponseWriter, r *http.Request, path string) bool {
	f, err := os.Open(path) //#nosec G304 -- path comes from the movie scan, not the request
	if err != nil {
		s.logger.WarnContext(r.Context(), "poster unreadable, serving placeholder", "path", path, "error", err)
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		s.logger.WarnContext(r.Context(), "poster unreadable, serving placeholder", "path", path, "error", err)
		return false
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", CacheOneDay)
	http.ServeContent(w, r, "poster.jpg", info.ModTime(), f)
	return true
}

// handleToggleTag flips one tag on a movie and returns the updated article.
// POST /movie/{id}/tag/{tag}
func (s *Server) handleToggleTag(w http.ResponseWriter, r *http.Request) {
	movieID, err := id.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	tag, err := pathParam(r, "tag")
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	_, detail, err := s.services.Movie.ToggleTag(r.Context(), movieID, tag)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.render(w, s.pages.index, "movie", toMovieView(*detail))
}

// handleReloadRedirect rescans the roots and sends the browser home.
// POST /reload
func (s *Server) handleReloadRedirect(w http.ResponseWriter, r *http.Request) {
	if _, err := s.services.Movie.Reload(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleUserLibraries serves the user by media folder access page.
// GET /user-libraries
func (s *Server) handleUserLibraries(w http.ResponseWriter, r *http.Request) {
	view := librariesView{Title: "User Libraries"}

	if !s.services.Libraries.Enabled() {
		view.Notice = "Jellyfin integration is not configured."
		s.render(w, s.pages.libraries, "layout", view)
		return
	}

	users, err := s.services.Libraries.ListUserLibraries(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	view.Users = make([]userView, 0, len(users))
	for _, u := range users {
		view.Users = append(view.Users, toUserView(u))
	}
	s.render(w, s.pages.libraries, "layout", view)
}

// handleToggleUserFolder flips one user's access to one folder and returns
// the user's updated row.
// POST /user/{userID}/library/{folderID}
func (s *Server) handleToggleUserFolder(w http.ResponseWriter, r *http.Request) {
	userID, err := pathParam(r, "userID")
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	folderID, err := pathParam(r, "folderID")
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	entry, err := s.services.Libraries.ToggleUserFolder(r.Context(), userID, folderID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.render(w, s.pages.index, "user_entry", toUserView(*entry))
}

// === Helpers ===

func (s *Server) movieList(r *http.Request) (listView, error) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	result, err := s.services.Movie.List(r.Context(), query, service.NewPaging(page, perPage))
	if err != nil {
		return listView{}, err
	}

	details := s.services.Movie.Details(result.Movies)
	movies := make([]movieView, 0, len(details))
	for _, d := range details {
		movies = append(movies, toMovieView(d))
	}

	p := result.Paging
	return listView{
		Paging: pagingView{
			URL:      "/movies",
			Query:    query,
			Page:     p.Page,
			PerPage:  p.PerPage,
			LastPage: result.LastPage,
			Prev:     p.PrevPage(),
			Next:     p.NextPage(result.Total),
			Options:  service.PerPageOptions,
		},
		Movies: movies,
	}, nil
}

// render executes into a buffer first so a template error still yields a
// clean 500.
func (s *Server) render(w http.ResponseWriter, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("Failed to execute template", "template", name, "error", err)
		response.Text(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", CacheNoStore)
	_, _ = buf.WriteTo(w)
}

func toMovieView(d service.MovieDetail) movieView {
	movieID := d.Movie.ID.String()
	tags := make([]tagButton, 0, len(d.Tags))
	for _, t := range d.Tags {
		tags = append(tags, tagButton{
			Name:   t.Name,
			Linked: t.Linked,
			URL:    "/movie/" + movieID + "/tag/" + url.PathEscape(t.Name),
		})
	}
	return movieView{
		ID:        movieID,
		Name:      d.Movie.Name,
		PosterURL: posterURL(d.Movie.ID),
		Tags:      tags,
	}
}

func toUserView(u service.UserLibraries) userView {
	folders := make([]folderButton, 0, len(u.Folders))
	for _, f := range u.Folders {
		folders = append(folders, folderButton{
			ID:      f.ID,
			Name:    f.Name,
			Enabled: f.Enabled,
			URL:     "/user/" + url.PathEscape(u.UserID) + "/library/" + url.PathEscape(f.ID),
		})
	}
	return userView{
		ID:       u.UserID,
		Name:     u.UserName,
		Admin:    u.IsAdmin,
		Disabled: u.IsDisabled,
		Folders:  folders,
	}
}

func posterURL(movieID id.Hash) string {
	return "/movie/" + movieID.String() + "/poster.jpg"
}

// pathParam returns the decoded value of a chi route parameter.
func pathParam(r *http.Request, name string) (string, error) {
	return decodePathParam(chi.URLParam(r, name))
}

// decodePathParam decodes a percent-encoded path parameter.
func decodePathParam(raw string) (string, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", domainerrors.InvalidInputf("invalid path segment %q", raw)
	}
	return decoded, nil
}
