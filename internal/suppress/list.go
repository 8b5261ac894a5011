package suppress

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"sift/internal/source"
)

// LoadList reads a suppression list: one suppression per line in the
// syntax accepted by Parse. Blank lines and lines starting with "#" or
// "//" are skipped.
func LoadList(path string) ([]Suppression, error) {
	// #nosec G304 -- path comes from the command line or the manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suppression list: %w", err)
	}
	return ParseList(source.NormalizePath(path), data)
}

// ParseList parses list content. name is recorded as the declaring source.
func ParseList(name string, data []byte) ([]Suppression, error) {
	var out []Suppression
	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		s, err := Parse(line, ID{Origin: OriginList, Source: name, Pos: lineNo})
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
		out = append(out, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// ParseArgs parses --suppress values. Each value gets its argument index as
// position so duplicates stay distinct.
func ParseArgs(values []string) ([]Suppression, error) {
	out := make([]Suppression, 0, len(values))
	for i, v := range values {
		s, err := Parse(v, ID{Origin: OriginCommandLine, Pos: i + 1})
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
