package suppress

import (
	"path"
	"slices"

	"sift/internal/diag"
)

// Precedence tiers, most specific first.
const (
	tierExactLine = iota
	tierExactFile
	tierExactGlobal
	tierWildcardLine
	tierWildcardFile
	tierWildcardGlobal
	tierNone
)

// Registry stores the suppressions known to one run or one worker.
//
// Suppressions with a literal file name are indexed by the base name of the
// file; file patterns and file-less suppressions are kept in separate lists.
// Lookups are pure: FindMatch never changes the registry.
//
// A Registry is not safe for concurrent mutation. Workers get their own
// registry through Fork.
type Registry struct {
	entries []Suppression
	byBase  map[string][]int // base name -> indices into entries
	globs   []int
	globals []int
}

// NewRegistry returns a registry holding sups in order.
func NewRegistry(sups ...Suppression) *Registry {
	r := &Registry{byBase: make(map[string][]int)}
	for _, s := range sups {
		r.Register(s)
	}
	return r
}

// Register appends s. Duplicates are kept; each is tracked independently.
func (r *Registry) Register(s Suppression) {
	idx := len(r.entries)
	r.entries = append(r.entries, s)
	switch {
	case s.FileName == "":
		r.globals = append(r.globals, idx)
	case hasGlob(s.FileName):
		r.globs = append(r.globs, idx)
	default:
		base := path.Base(s.FileName)
		r.byBase[base] = append(r.byBase[base], idx)
	}
}

// Fork returns a registry that starts with r's suppressions. Registering
// into the fork leaves r unchanged, so one base registry can be forked for
// every worker while it is only read.
func (r *Registry) Fork() *Registry {
	f := &Registry{
		entries: slices.Clip(r.entries),
		byBase:  make(map[string][]int, len(r.byBase)),
		globs:   slices.Clip(r.globs),
		globals: slices.Clip(r.globals),
	}
	for k, v := range r.byBase {
		f.byBase[k] = slices.Clip(v)
	}
	return f
}

// Absorb registers the suppressions other holds beyond its first skip
// entries. The driver forks every worker from the same base and absorbs
// each worker's own suppressions to build the union registry.
func (r *Registry) Absorb(other *Registry, skip int) {
	for _, s := range other.entries[skip:] {
		r.Register(s)
	}
}

// All returns the suppressions in registration order. Callers must not
// modify the returned slice.
func (r *Registry) All() []Suppression {
	return r.entries
}

// Len returns the number of registered suppressions.
func (r *Registry) Len() int {
	return len(r.entries)
}

// FindMatch returns the best suppression for d, or nil.
//
// Precedence, most specific first: exact id with file and line, exact id
// with file only, exact id with no file, then the same three for wildcard
// ids. Inside one tier a symbol-qualified suppression wins, then the one
// registered first.
func (r *Registry) FindMatch(d diag.Diagnostic) *Suppression {
	best, bestTier, bestSym := -1, tierNone, false

	consider := func(idx int) {
		s := &r.entries[idx]
		tier := classify(s, d)
		if tier == tierNone {
			return
		}
		sym := s.Symbol != ""
		switch {
		case tier < bestTier:
		case tier == bestTier && sym && !bestSym:
		case tier == bestTier && sym == bestSym && idx < best:
		default:
			return
		}
		best, bestTier, bestSym = idx, tier, sym
	}

	for _, idx := range r.byBase[path.Base(d.File)] {
		consider(idx)
	}
	for _, idx := range r.globs {
		consider(idx)
	}
	for _, idx := range r.globals {
		consider(idx)
	}
	if best < 0 {
		return nil
	}
	return &r.entries[best]
}

// classify returns the precedence tier of s for d, or tierNone.
func classify(s *Suppression, d diag.Diagnostic) int {
	if !matchID(s.ErrorID, d.ID) {
		return tierNone
	}
	if s.Symbol != "" && s.Symbol != d.Symbol {
		return tierNone
	}
	tier := tierExactGlobal
	if s.FileName != "" {
		// Inline suppressions belong to the file that declares them.
		if s.ID.Origin == OriginInline {
			if s.FileName != d.File {
				return tierNone
			}
		} else if !matchFile(s.FileName, d.File) {
			return tierNone
		}
		tier = tierExactFile
		if s.Line > 0 {
			if s.Line != d.Line {
				return tierNone
			}
			tier = tierExactLine
		}
	} else if s.Line > 0 && s.Line != d.Line {
		return tierNone
	}
	if s.WildcardID() {
		tier += tierWildcardLine
	}
	return tier
}
