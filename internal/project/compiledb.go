package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"sift/internal/source"
)

type compileCommand struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command"`
	Arguments []string `json:"arguments"`
}

// LoadCompileDB reads a compile_commands.json and returns its files with
// the -I include paths of their commands. Paths under the working
// directory are made relative to it so reports stay short. A file listed
// by several commands is kept once, with the first command's includes.
func LoadCompileDB(path string) ([]File, error) {
	// #nosec G304 -- path is the --project argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compile database: %w", err)
	}
	var cmds []compileCommand
	if err := json.Unmarshal(data, &cmds); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	wd, _ := os.Getwd()

	seen := make(map[string]bool)
	var files []File
	for _, c := range cmds {
		if c.File == "" {
			continue
		}
		dir := c.Directory
		if dir == "" {
			dir = filepath.Dir(path)
		}
		p := shorten(absIn(dir, c.File), wd)
		if seen[p] {
			continue
		}
		seen[p] = true

		args := c.Arguments
		if len(args) == 0 {
			args = strings.Fields(c.Command)
		}
		var incs []string
		for _, inc := range includeArgs(args) {
			incs = append(incs, shorten(absIn(dir, inc), wd))
		}
		files = append(files, File{Path: p, IncludePaths: incs})
	}
	if len(files) == 0 {
		return nil, ErrNoInputs
	}
	slices.SortFunc(files, func(a, b File) int { return strings.Compare(a.Path, b.Path) })
	return files, nil
}

// includeArgs extracts -I values in both "-Idir" and "-I dir" forms.
func includeArgs(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-I" && i+1 < len(args):
			out = append(out, args[i+1])
			i++
		case strings.HasPrefix(a, "-I") && len(a) > 2:
			out = append(out, a[2:])
		}
	}
	return out
}

func absIn(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

func shorten(p, wd string) string {
	if wd != "" {
		if rel, err := filepath.Rel(wd, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	return source.NormalizePath(p)
}
