// Package id derives the content identifier used as the primary key for
// movies and as the element type of tag membership sets.
//
// An identifier is the SHA-1 digest of the raw bytes of a path's final
// component. Parent directories never take part, so a movie keeps its
// identifier wherever its root is mounted. Two directories sharing a base
// name share an identifier; with a single movie root that cannot happen.
package id

import (
	"bytes"
	"crypto/sha1" //#nosec G505 -- content addressing, not a security boundary
	"encoding/hex"
	"path/filepath"
	"strings"

	domainerrors "github.com/tagrs/movietagger/internal/errors"
)

// Size is the length of an identifier in bytes.
const Size = sha1.Size

// hexLen is the length of the hex rendering of an identifier.
const hexLen = Size * 2

// Hash is a fixed-size, comparable movie identifier.
type Hash [Size]byte

// FromPath derives the identifier of path from its final component.
// Paths without a name segment ("", "/", "..") are rejected.
func FromPath(path string) (Hash, error) {
	name, ok := baseName(path)
	if !ok {
		return Hash{}, domainerrors.InvalidInputf("invalid file name: %q", path)
	}
	return FromName(name), nil
}

// FromName hashes a bare directory name.
func FromName(name string) Hash {
	return Hash(sha1.Sum([]byte(name))) //#nosec G401
}

// Parse decodes a 40 character hex string, in any case, into a Hash.
func Parse(s string) (Hash, error) {
	if len(s) != hexLen {
		return Hash{}, domainerrors.InvalidInputf("invalid identifier length %d, want %d", len(s), hexLen)
	}
	var h Hash
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return Hash{}, domainerrors.Wrapf(err, domainerrors.CodeInvalidInput, "invalid identifier %q", s)
	}
	return h, nil
}

// MustParse is like Parse but panics on malformed input. Intended for tests
// and constants.
func MustParse(s string) Hash {
	h, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return h
}

// String returns the lowercase hex rendering.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Compare orders identifiers by their bytes.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// baseName returns the final path component. Trailing separators and "."
// segments are skipped; a path that is empty, a bare root, "." or ends in
// ".." has no name.
func baseName(path string) (string, bool) {
	sep := string(filepath.Separator)
	p := path
	for {
		p = strings.TrimRight(p, sep)
		if p == "" {
			return "", false
		}
		i := strings.LastIndex(p, sep)
		switch name := p[i+1:]; name {
		case "..":
			return "", false
		case ".":
			if i < 0 {
				return "", false
			}
			p = p[:i+1]
		default:
			return name, true
		}
	}
}
