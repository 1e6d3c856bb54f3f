// Package collection keeps an in-memory index of a movie directory and a tag
// directory and mirrors tag membership changes back onto the filesystem.
//
// The movie root holds one subdirectory per movie. The tag root holds one
// subdirectory per tag, and a movie belongs to a tag when a symlink named
// after the movie sits inside that tag's directory. The filesystem is the
// source of truth; the index is a cache that Reload rebuilds and ToggleTag
// keeps in step with each link it creates or removes.
package collection

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	domainerrors "github.com/tagrs/movietagger/internal/errors"
	"github.com/tagrs/movietagger/internal/id"
)

// Collection is the index over one movie root and one tag root. It is safe
// for concurrent use: readers share a lock, while ToggleTag and Reload hold
// it exclusively for their whole duration.
type Collection struct {
	mu       sync.RWMutex
	movieDir string
	tagDir   string
	movies   movieTable
	tags     tagTable

	// notifyMu orders subscriber callbacks with the loads that produced them.
	notifyMu    sync.Mutex
	subscribers []func(Snapshot)

	loader loader
	logger *slog.Logger
}

// Option configures a Collection.
type Option func(*Collection)

// WithLogger sets the logger used for load and toggle events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New canonicalizes both roots and performs the initial load.
func New(ctx context.Context, movieDir, tagDir string, opts ...Option) (*Collection, error) {
	c := &Collection{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.loader = loader{logger: c.logger}

	var err error
	if c.movieDir, err = canonicalize(movieDir); err != nil {
		return nil, err
	}
	if c.tagDir, err = canonicalize(tagDir); err != nil {
		return nil, err
	}

	movies, tags, err := c.loader.load(ctx, c.movieDir, c.tagDir)
	if err != nil {
		return nil, err
	}
	c.movies, c.tags = movies, tags

	c.logger.Info("collection loaded",
		"movie_dir", c.movieDir,
		"tag_dir", c.tagDir,
		"movies", len(movies),
		"tags", len(tags),
	)
	return c, nil
}

// Reload rescans both roots and replaces the index. The write lock is held
// across the scan so that no toggle can land between scanning and swapping.
// If either scan fails the previous index stays in place untouched.
func (c *Collection) Reload(ctx context.Context) error {
	c.mu.Lock()
	movies, tags, err := c.loader.load(ctx, c.movieDir, c.tagDir)
	if err != nil {
		c.mu.Unlock()
		c.logger.Error("reload failed", "error", err)
		return err
	}
	c.movies, c.tags = movies, tags
	snap := c.snapshotLocked()

	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	c.logger.Info("collection reloaded",
		"movies", snap.Stats.Movies,
		"tags", snap.Stats.Tags,
		"links", snap.Stats.Links,
	)
	for _, fn := range c.subscribers {
		fn(snap)
	}
	return nil
}

// ToggleTag flips membership of the movie in the named tag. When the movie is
// a member its symlink is removed, otherwise one is created pointing at the
// movie's directory under the movie root. It returns whether the movie is
// linked afterwards. The index changes only after the filesystem call
// succeeds, so a failure leaves both in their previous state.
func (c *Collection) ToggleTag(ctx context.Context, tagName string, movieID id.Hash) (bool, error) {
	if err := interrupted(ctx, "toggle %q", tagName); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	members, ok := c.tags[tagName]
	if !ok {
		return false, domainerrors.NotFoundf("tag %q not found", tagName)
	}
	movie, ok := c.movies[movieID]
	if !ok {
		return false, domainerrors.NotFoundf("movie %s not found", movieID)
	}

	name := filepath.Base(movie.Path)
	link := filepath.Join(c.tagDir, tagName, name)

	if members.Contains(movieID) {
		if err := removeLink(link); err != nil {
			return true, err
		}
		delete(members, movieID)
		c.logger.Info("movie untagged", "tag", tagName, "movie", movie.Name)
		return false, nil
	}

	target := filepath.Join(c.movieDir, name)
	if err := os.Symlink(target, link); err != nil {
		return false, domainerrors.IO(err, "link %s to %s", link, target)
	}
	members[movieID] = struct{}{}
	c.logger.Info("movie tagged", "tag", tagName, "movie", movie.Name)
	return true, nil
}

// removeLink deletes link, refusing to touch anything that is not a symlink.
func removeLink(link string) error {
	info, err := os.Lstat(link)
	if err != nil {
		return domainerrors.IO(err, "unlink %s", link)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return domainerrors.IO(fs.ErrInvalid, "unlink %s: not a symlink", link)
	}
	if err := os.Remove(link); err != nil {
		return domainerrors.IO(err, "unlink %s", link)
	}
	return nil
}

// Subscribe registers fn to receive a snapshot after every successful
// Reload. fn is called once immediately with the current contents. Calls
// are serialized and must not re-enter the Collection.
func (c *Collection) Subscribe(fn func(Snapshot)) {
	c.mu.RLock()
	snap := c.snapshotLocked()
	c.notifyMu.Lock()
	c.mu.RUnlock()
	defer c.notifyMu.Unlock()

	c.subscribers = append(c.subscribers, fn)
	fn(snap)
}

// Movie returns the movie with the given identifier.
func (c *Collection) Movie(movieID id.Hash) (Movie, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	movie, ok := c.movies[movieID]
	if !ok {
		return Movie{}, domainerrors.NotFoundf("movie %s not found", movieID)
	}
	return movie, nil
}

// Movies returns every movie ordered by display name.
func (c *Collection) Movies() []Movie {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.moviesLocked()
}

// MoviesByID returns the known movies among ids in the order given.
// Unknown identifiers are skipped.
func (c *Collection) MoviesByID(ids []id.Hash) []Movie {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Movie, 0, len(ids))
	for _, h := range ids {
		if movie, ok := c.movies[h]; ok {
			out = append(out, movie)
		}
	}
	return out
}

// Tags returns every tag ordered by name. Member sets are copies.
func (c *Collection) Tags() []Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Tag, 0, len(c.tags))
	for name, members := range c.tags {
		out = append(out, Tag{Name: name, Members: members.Clone()})
	}
	slices.SortFunc(out, func(a, b Tag) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// TagNames returns the sorted tag names.
func (c *Collection) TagNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tags))
	for name := range c.tags {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// MovieTags reports, for every tag, whether the movie is linked into it.
func (c *Collection) MovieTags(movieID id.Hash) ([]TagState, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.movies[movieID]; !ok {
		return nil, domainerrors.NotFoundf("movie %s not found", movieID)
	}

	states := make([]TagState, 0, len(c.tags))
	for name, members := range c.tags {
		states = append(states, TagState{Name: name, Linked: members.Contains(movieID)})
	}
	slices.SortFunc(states, func(a, b TagState) int {
		return strings.Compare(a.Name, b.Name)
	})
	return states, nil
}

// Roots returns the canonical movie and tag roots.
func (c *Collection) Roots() (movieDir, tagDir string) {
	return c.movieDir, c.tagDir
}

// Stats returns current counts.
func (c *Collection) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statsLocked()
}

// String renders a short debug summary.
func (c *Collection) String() string {
	s := c.Stats()
	return fmt.Sprintf("Collection{movie_dir: %s, tag_dir: %s, movies: %d, tags: %d, links: %d}",
		c.movieDir, c.tagDir, s.Movies, s.Tags, s.Links)
}

func (c *Collection) moviesLocked() []Movie {
	out := make([]Movie, 0, len(c.movies))
	for _, movie := range c.movies {
		out = append(out, movie)
	}
	sortMovies(out)
	return out
}

func (c *Collection) statsLocked() Stats {
	s := Stats{Movies: len(c.movies), Tags: len(c.tags)}
	for _, members := range c.tags {
		s.Links += members.Len()
	}
	return s
}

func (c *Collection) snapshotLocked() Snapshot {
	return Snapshot{
		MovieDir: c.movieDir,
		TagDir:   c.tagDir,
		Movies:   c.moviesLocked(),
		Stats:    c.statsLocked(),
	}
}
