// Package project turns command-line inputs into the list of files to
// analyze and loads the sift.toml manifest.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"sift/internal/source"
)

// ErrNoInputs is returned when arguments name no analyzable file.
var ErrNoInputs = errors.New("no C/C++ source files found")

// File is one file to analyze.
type File struct {
	// Path is normalized with source.NormalizePath.
	Path         string
	IncludePaths []string
}

var sourceExts = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".cxx": true, ".c++": true,
	".h": true, ".hh": true, ".hpp": true, ".hxx": true,
}

// IsSource reports whether path has a C or C++ extension.
func IsSource(path string) bool {
	return sourceExts[strings.ToLower(filepath.Ext(path))]
}

// Collect expands args into files. Regular files are taken as given;
// directories are walked for source files, skipping hidden directories.
// includePaths is attached to every file.
func Collect(args, includePaths []string) ([]File, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		p = source.NormalizePath(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSource(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}
	slices.Sort(paths)

	incs := normalizeAll(includePaths)
	files := make([]File, len(paths))
	for i, p := range paths {
		files[i] = File{Path: p, IncludePaths: incs}
	}
	return files, nil
}

func normalizeAll(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = source.NormalizePath(p)
	}
	return out
}
