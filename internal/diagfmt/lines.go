package diagfmt

import (
	"sift/internal/source"
)

// Lines provides source text for renderers that show code.
type Lines interface {
	// Line returns the 1-based line n of file, or false when unknown.
	Line(file string, n int) (string, bool)
}

// FileLines loads files on first use and keeps them. It is not safe for
// concurrent use; renderers run after analysis.
type FileLines struct {
	files map[string]*source.File
}

func NewFileLines() *FileLines {
	return &FileLines{files: make(map[string]*source.File)}
}

// Add registers an already loaded file.
func (l *FileLines) Add(f *source.File) {
	l.files[f.Path] = f
}

func (l *FileLines) Line(file string, n int) (string, bool) {
	if l == nil || n <= 0 {
		return "", false
	}
	f, ok := l.files[file]
	if !ok {
		loaded, err := source.Load(file)
		if err != nil {
			loaded = nil
		}
		l.files[file] = loaded
		f = loaded
	}
	if f == nil || n > f.LineCount() {
		return "", false
	}
	return f.GetLine(n), true
}
