package collection

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	domainerrors "github.com/tagrs/movietagger/internal/errors"
	"github.com/tagrs/movietagger/internal/id"
)

// posterFile is probed directly inside every movie directory.
const posterFile = "poster.jpg"

// ignoreSet holds canonical paths that a scan must not treat as entries.
type ignoreSet map[string]struct{}

func (s ignoreSet) contains(path string) bool {
	_, ok := s[path]
	return ok
}

// loader scans the two roots. Both scans are one level deep and skip
// anything that is not a directory at the top level.
type loader struct {
	logger *slog.Logger
}

// canonicalize returns the absolute, symlink-resolved form of path.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", domainerrors.IO(err, "resolve %s", path)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", domainerrors.IO(err, "canonicalize %s", path)
	}
	return resolved, nil
}

// load runs the movie and tag scans concurrently and returns both tables
// only if both succeed.
func (l loader) load(ctx context.Context, movieDir, tagDir string) (movieTable, tagTable, error) {
	var (
		movies movieTable
		tags   tagTable
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movies, err = l.scanMovies(gctx, movieDir, ignoreSet{tagDir: {}})
		return err
	})
	g.Go(func() error {
		var err error
		tags, err = l.scanTags(gctx, tagDir, ignoreSet{movieDir: {}})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return movies, tags, nil
}

// scanMovies builds the movie table from the direct subdirectories of root.
func (l loader) scanMovies(ctx context.Context, root string, ignore ignoreSet) (movieTable, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, domainerrors.IO(err, "list movie directory %s", root)
	}

	movies := make(movieTable, len(entries))
	for _, entry := range entries {
		if err := interrupted(ctx, "movie scan of %s", root); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(root, entry.Name())
		if ignore.contains(path) {
			continue
		}

		hash, err := id.FromPath(path)
		if err != nil {
			return nil, err
		}

		if existing, dup := movies[hash]; dup {
			l.logger.Warn("identifier collision, keeping last scanned movie",
				"id", hash.String(),
				"previous", existing.Path,
				"path", path,
			)
		}

		movies[hash] = Movie{
			Name:       entry.Name(),
			Path:       path,
			ID:         hash,
			PosterPath: probePoster(path),
		}
	}

	return movies, nil
}

// scanTags builds the tag table. Tag names are enumerated first so that
// tags without members are still listed, then each tag directory is read
// and every symlink in it becomes a member.
func (l loader) scanTags(ctx context.Context, root string, ignore ignoreSet) (tagTable, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, domainerrors.IO(err, "list tag directory %s", root)
	}

	tags := make(tagTable, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if ignore.contains(filepath.Join(root, entry.Name())) {
			continue
		}
		tags[entry.Name()] = MemberSet{}
	}

	for name, members := range tags {
		if err := interrupted(ctx, "tag scan of %s", root); err != nil {
			return nil, err
		}

		dir := filepath.Join(root, name)
		links, err := os.ReadDir(dir)
		if err != nil {
			return nil, domainerrors.IO(err, "list tag %s", dir)
		}

		for _, link := range links {
			if link.Type()&fs.ModeSymlink == 0 {
				continue
			}
			hash, err := id.FromPath(filepath.Join(dir, link.Name()))
			if err != nil {
				return nil, err
			}
			members[hash] = struct{}{}
		}
	}

	return tags, nil
}

// interrupted reports a canceled ctx as an IO failure of the named operation.
// The context error stays reachable through errors.Is.
func interrupted(ctx context.Context, format string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.IO(err, format+" interrupted", args...)
	}
	return nil
}

// probePoster returns the poster path if one exists at scan time.
func probePoster(movieDir string) string {
	path := filepath.Join(movieDir, posterFile)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}
