package check

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"

	"sift/internal/source"
)

// Language is the grammar a unit is parsed with.
type Language string

const (
	LangC   Language = "c"
	LangCPP Language = "cpp"
)

var extToLanguage = map[string]Language{
	".c":   LangC,
	".h":   LangCPP,
	".cc":  LangCPP,
	".cpp": LangCPP,
	".cxx": LangCPP,
	".c++": LangCPP,
	".hh":  LangCPP,
	".hpp": LangCPP,
	".hxx": LangCPP,
}

// LanguageForFile returns the language for path based on its extension.
func LanguageForFile(path string) (Language, bool) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// IsSource reports whether path has a C or C++ extension.
func IsSource(path string) bool {
	_, ok := LanguageForFile(path)
	return ok
}

func grammar(lang Language) *sitter.Language {
	if lang == LangC {
		return c.GetLanguage()
	}
	return cpp.GetLanguage()
}

// parsers hands out one tree-sitter parser per goroutine per language.
var parsers = map[Language]*sync.Pool{
	LangC:   {New: func() any { return newParser(LangC) }},
	LangCPP: {New: func() any { return newParser(LangCPP) }},
}

func newParser(lang Language) *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(grammar(lang))
	return p
}

// Unit is a parsed translation unit.
type Unit struct {
	File         *source.File
	Lang         Language
	Tree         *sitter.Tree
	IncludePaths []string

	lookups map[string]bool
}

// Parse parses f. Files with an unknown extension are parsed as C++.
func Parse(ctx context.Context, f *source.File, includePaths []string) (*Unit, error) {
	lang, ok := LanguageForFile(f.Path)
	if !ok {
		lang = LangCPP
	}
	pool := parsers[lang]
	p, _ := pool.Get().(*sitter.Parser)
	defer func() {
		p.Reset()
		pool.Put(p)
	}()

	tree, err := p.ParseCtx(ctx, nil, f.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return &Unit{File: f, Lang: lang, Tree: tree, IncludePaths: includePaths}, nil
}

// Root returns the root node of the syntax tree.
func (u *Unit) Root() *sitter.Node {
	return u.Tree.RootNode()
}

// Text returns the source text of n.
func (u *Unit) Text(n *sitter.Node) string {
	return n.Content(u.File.Content)
}

// exists stats p and remembers the answer as a lookup.
func (u *Unit) exists(p string) bool {
	if ok, seen := u.lookups[p]; seen {
		return ok
	}
	ok := fileExists(p)
	if u.lookups == nil {
		u.lookups = make(map[string]bool)
	}
	u.lookups[p] = ok
	return ok
}

// Lookups returns the file lookups made by checks on u, sorted by path.
func (u *Unit) Lookups() []Lookup {
	if len(u.lookups) == 0 {
		return nil
	}
	out := make([]Lookup, 0, len(u.lookups))
	for p, ok := range u.lookups {
		out = append(out, Lookup{Path: p, Exists: ok})
	}
	slices.SortFunc(out, func(a, b Lookup) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// Close releases the syntax tree.
func (u *Unit) Close() {
	if u != nil && u.Tree != nil {
		u.Tree.Close()
	}
}

// Position returns the 1-based line and column where n starts.
func Position(n *sitter.Node) (line, col int) {
	pt := n.StartPoint()
	row, err := safecast.Conv[int](pt.Row)
	if err != nil {
		return 0, 0
	}
	column, err := safecast.Conv[int](pt.Column)
	if err != nil {
		return row + 1, 0
	}
	return row + 1, column + 1
}

// walk visits n and its named descendants in source order. Returning false
// from visit skips the children of that node.
func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		walk(n.NamedChild(i), visit)
	}
}

// query runs pattern over the unit and calls fn for every capture named name.
func query(u *Unit, pattern, name string, fn func(*sitter.Node)) error {
	q, err := sitter.NewQuery([]byte(pattern), grammar(u.Lang))
	if err != nil {
		return fmt.Errorf("query %q: %w", pattern, err)
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, u.Root())
	for {
		match, found := cursor.NextMatch()
		if !found {
			break
		}
		match = cursor.FilterPredicates(match, u.File.Content)
		for _, capture := range match.Captures {
			if q.CaptureNameForId(capture.Index) == name {
				fn(capture.Node)
			}
		}
	}
	return nil
}
