package collection

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/tagrs/movietagger/internal/id"
)

// Movie is one subdirectory of the movie root. Records are rebuilt on every
// load and never mutated afterwards.
type Movie struct {
	Name       string  `json:"name"`
	Path       string  `json:"path"`
	ID         id.Hash `json:"id"`
	PosterPath string  `json:"poster_path,omitempty"` // empty when poster.jpg was absent at scan time
}

// HasPoster reports whether a poster was found when the movie was scanned.
func (m Movie) HasPoster() bool {
	return m.PosterPath != ""
}

// MemberSet is the set of movie identifiers linked into one tag directory.
type MemberSet map[id.Hash]struct{}

// Contains reports whether h is a member.
func (s MemberSet) Contains(h id.Hash) bool {
	_, ok := s[h]
	return ok
}

// Len returns the number of members.
func (s MemberSet) Len() int {
	return len(s)
}

// Clone returns an independent copy.
func (s MemberSet) Clone() MemberSet {
	out := make(MemberSet, len(s))
	for h := range s {
		out[h] = struct{}{}
	}
	return out
}

// Sorted returns the members ordered by identifier bytes.
func (s MemberSet) Sorted() []id.Hash {
	out := make([]id.Hash, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	slices.SortFunc(out, id.Hash.Compare)
	return out
}

// Tag is a tag name with its current members.
type Tag struct {
	Name    string
	Members MemberSet
}

// TagState describes whether one movie is linked into one tag.
type TagState struct {
	Name   string `json:"name"`
	Linked bool   `json:"linked"`
}

// Stats summarizes the size of a collection.
type Stats struct {
	Movies int `json:"movies"`
	Tags   int `json:"tags"`
	Links  int `json:"links"`
}

// Snapshot is handed to subscribers after every successful load.
type Snapshot struct {
	MovieDir string
	TagDir   string
	Movies   []Movie
	Stats    Stats
}

type (
	movieTable map[id.Hash]Movie
	tagTable   map[string]MemberSet
)

// FoldName returns the key used to match display names: NFC normalized and
// lowercased, so a decomposed name from a macOS share matches its composed
// twin. It does not define display order; see sortMovies.
func FoldName(name string) string {
	return strings.ToLower(norm.NFC.String(name))
}

// sortMovies orders movies by Unicode collation of their display names, so
// "École" sorts among the E's. Exact byte order breaks ties between
// canonically equivalent names.
func sortMovies(movies []Movie) {
	// A Collator is not safe for concurrent use and readers sort in parallel.
	coll := collate.New(language.Und)
	slices.SortFunc(movies, func(a, b Movie) int {
		if c := coll.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}
