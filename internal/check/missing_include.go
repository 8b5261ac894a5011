package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"sift/internal/diag"
)

// MissingInclude reports quoted includes that cannot be found next to the
// including file or in any include path.
type MissingInclude struct{}

func (MissingInclude) Name() string            { return "missingInclude" }
func (MissingInclude) Severity() diag.Severity { return diag.SevInformation }

const includeQuery = `(preproc_include path: (string_literal) @path)`

func (m MissingInclude) Run(ctx context.Context, u *Unit, r diag.Reporter) error {
	dir := filepath.Dir(filepath.FromSlash(u.File.Path))
	return query(u, includeQuery, "path", func(n *sitter.Node) {
		if ctx.Err() != nil {
			return
		}
		name := strings.Trim(u.Text(n), `"`)
		if name == "" || u.includeExists(name, dir) {
			return
		}
		line, _ := Position(n)
		r.Report(diag.New(m.Severity(), m.Name(), u.File.Path, line, 0,
			fmt.Sprintf("Include file: %q not found.", name)))
	})
}

func (u *Unit) includeExists(name, dir string) bool {
	if filepath.IsAbs(name) {
		return u.exists(name)
	}
	if u.exists(filepath.Join(dir, name)) {
		return true
	}
	for _, p := range u.IncludePaths {
		if u.exists(filepath.Join(p, name)) {
			return true
		}
	}
	return false
}

// Lookup records whether a file existed when a check looked for it. A result
// computed from a unit is only valid while all of its lookups still hold.
type Lookup struct {
	Path   string `msgpack:"path"`
	Exists bool   `msgpack:"exists"`
}

// Holds reports whether the file system still agrees with p.
func (p Lookup) Holds() bool {
	return fileExists(p.Path) == p.Exists
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
