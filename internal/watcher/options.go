package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// Options configures the watcher.
type Options struct {
	// SettleDelay is how long the trees must stay quiet before a reload.
	SettleDelay    time.Duration
	IgnorePatterns []string
	IgnoreHidden   bool
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 2 * time.Second
	}

	// Custom patterns (even an empty slice) keep the caller's IgnoreHidden.
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			".DS_Store",
			"Thumbs.db",
			"*.part",
			"*.tmp",
		}
		o.IgnoreHidden = true
	}
}

// shouldIgnore reports whether a change at path can be skipped. Only the
// final component is considered since the roots themselves may live under
// hidden directories.
func (o *Options) shouldIgnore(path string) bool {
	base := filepath.Base(path)

	if o.IgnoreHidden && strings.HasPrefix(base, ".") && base != "." && base != ".." {
		return true
	}

	for _, pattern := range o.IgnorePatterns {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}

	return false
}
