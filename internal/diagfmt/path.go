package diagfmt

import (
	"os"
	"path"
	"path/filepath"

	"sift/internal/source"
	"sift/internal/suppress"
)

func formatPath(p string, mode PathMode, baseDir string) string {
	if p == suppress.NoFile {
		return p
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(filepath.FromSlash(p)); err == nil {
			return source.NormalizePath(abs)
		}
	case PathModeRelative:
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := source.RelativePath(filepath.FromSlash(p), baseDir); err == nil {
			return rel
		}
	case PathModeBasename:
		return path.Base(p)
	}
	return p
}
