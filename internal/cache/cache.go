// Package cache persists per-file analysis results between runs.
//
// Each analyzed file has one msgpack entry under <dir>/files, named after a
// hash of its path. An entry stores the raw diagnostics of the file's checks
// before any suppression, the inline directives found in it and its
// whole-program facts. Suppression matching is always redone from these, so
// a cached entry never replays a suppression decision.
//
// An entry is used only when its schema, content digest and configuration
// digest all equal the current ones and every file lookup recorded by the
// checks still holds. Anything else, including an entry that fails to
// decode, is a miss and gets overwritten.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"sift/internal/check"
	"sift/internal/diag"
	"sift/internal/directive"
)

// SchemaVersion is bumped whenever Entry changes shape or meaning.
const SchemaVersion uint16 = 2

var (
	// ErrMiss means no entry exists for the file.
	ErrMiss = errors.New("cache miss")
	// ErrStale means an entry exists but cannot be used.
	ErrStale = errors.New("cache entry stale")
)

// Entry is the cached analysis of one file.
type Entry struct {
	Schema      uint16                `msgpack:"schema"`
	Path        string                `msgpack:"path"`
	Content     Digest                `msgpack:"content"`
	Config      Digest                `msgpack:"config"`
	Diagnostics []diag.Diagnostic     `msgpack:"diags"`
	Directives  []directive.Directive `msgpack:"directives"`
	Facts       check.Facts           `msgpack:"facts"`
	// Lookups are the file lookups the diagnostics depend on, such as
	// include resolution.
	Lookups []check.Lookup `msgpack:"lookups,omitempty"`
}

// Cache is a directory of entries. The zero value and a nil *Cache are
// disabled caches: Load always misses and Store does nothing.
//
// Concurrent use from several goroutines is safe as long as each file is
// stored by one goroutine, which the driver guarantees.
type Cache struct {
	dir string
}

// Open prepares dir for use. An empty dir returns a disabled cache.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Join(dir, "files"), 0o755); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// DefaultDir returns the per-user cache location for app, honoring
// XDG_CACHE_HOME.
func DefaultDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// Dir returns the cache directory, or "" when disabled.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(file string) string {
	return filepath.Join(c.dir, "files", Strings(file).String()+".mp")
}

// Load returns the entry for file if it matches content and config.
func (c *Cache) Load(file string, content, config Digest) (*Entry, error) {
	if c == nil {
		return nil, ErrMiss
	}
	f, err := os.Open(c.pathFor(file))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("load cache entry: %w", err)
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, ErrStale
	}
	switch {
	case e.Schema != SchemaVersion:
		return nil, ErrStale
	case e.Path != file:
		return nil, ErrStale
	case e.Content != content || e.Config != config:
		return nil, ErrStale
	}
	for _, p := range e.Lookups {
		if !p.Holds() {
			return nil, ErrStale
		}
	}
	return &e, nil
}

// Store writes e for e.Path. The entry is written to a temporary file in
// the same directory and renamed into place, so readers see either the old
// or the new entry.
func (c *Cache) Store(e *Entry) (err error) {
	if c == nil {
		return nil
	}
	e.Schema = SchemaVersion
	p := c.pathFor(e.Path)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(e); err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
