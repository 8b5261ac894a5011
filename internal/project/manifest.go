package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"sift/internal/source"
	"sift/internal/suppress"
)

// ManifestName is the file FindManifest looks for.
const ManifestName = "sift.toml"

// Manifest is a parsed sift.toml.
type Manifest struct {
	Path     string           `toml:"-"`
	Check    CheckConfig      `toml:"check"`
	Suppress []SuppressConfig `toml:"suppress"`

	meta toml.MetaData
}

// CheckConfig mirrors the check command flags.
type CheckConfig struct {
	InlineSuppressions bool     `toml:"inline-suppressions"`
	Enable             []string `toml:"enable"`
	Disable            []string `toml:"disable"`
	Jobs               int      `toml:"jobs"`
	ErrorExitCode      int      `toml:"error-exitcode"`
	BuildDir           string   `toml:"build-dir"`
	IncludePaths       []string `toml:"include-paths"`
	Defines            []string `toml:"defines"`
	SuppressionsLists  []string `toml:"suppressions-lists"`
	Template           string   `toml:"template"`
}

// SuppressConfig is one [[suppress]] table.
type SuppressConfig struct {
	ID     string `toml:"id"`
	File   string `toml:"file"`
	Line   int    `toml:"line"`
	Symbol string `toml:"symbol"`
}

// FindManifest walks up from startDir to locate sift.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest parses path. Relative paths inside the manifest are
// resolved against its directory.
func LoadManifest(path string) (*Manifest, error) {
	m := &Manifest{Path: path}
	meta, err := toml.DecodeFile(path, m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	m.meta = meta
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if m.Check.Jobs < 0 {
		return nil, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}

	dir := filepath.Dir(path)
	rel := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	if m.Check.BuildDir != "" {
		m.Check.BuildDir = rel(m.Check.BuildDir)
	}
	for i, p := range m.Check.IncludePaths {
		m.Check.IncludePaths[i] = rel(p)
	}
	for i, p := range m.Check.SuppressionsLists {
		m.Check.SuppressionsLists[i] = rel(p)
	}
	return m, nil
}

// Defined reports whether the [check] key was present, so zero values can
// be told apart from absent ones.
func (m *Manifest) Defined(key string) bool {
	if m == nil {
		return false
	}
	return m.meta.IsDefined("check", key)
}

// Suppressions converts the [[suppress]] tables. They count as
// suppression-list entries declared by the manifest, positioned by table
// order.
func (m *Manifest) Suppressions() ([]suppress.Suppression, error) {
	if m == nil {
		return nil, nil
	}
	out := make([]suppress.Suppression, 0, len(m.Suppress))
	for i, e := range m.Suppress {
		id := suppress.ID{Origin: suppress.OriginList, Source: m.Path, Pos: i + 1}
		s, err := suppress.Parse(e.ID, id)
		if err == nil && s.FileName != "" {
			err = fmt.Errorf("%w %q: id must not carry a file", suppress.ErrSyntax, e.ID)
		}
		if err == nil && e.Line > 0 && e.File == "" {
			err = fmt.Errorf("%w: line without file", suppress.ErrSyntax)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: [[suppress]] #%d: %w", m.Path, i+1, err)
		}
		if e.File != "" {
			s.FileName = source.NormalizePath(e.File)
		}
		s.Line = e.Line
		s.Symbol = e.Symbol
		out = append(out, s)
	}
	return out, nil
}
