package suppress

import (
	"path"
	"strings"
)

// maxGlobIterations bounds backtracking for one pattern against one path so
// patterns such as "*a*a*a*b" cannot stall a run.
const maxGlobIterations = 10000

type globBudget struct {
	left int
}

func (b *globBudget) tick() bool {
	b.left--
	return b.left >= 0
}

// hasGlob reports whether p contains glob metacharacters.
func hasGlob(p string) bool {
	return strings.ContainsAny(p, "*?")
}

// matchFile reports whether the normalized path name is selected by pattern.
//
// A pattern without glob characters matches the same path or any path that
// ends with "/"+pattern, so "3.cpp" selects "src/3.cpp". Glob patterns are
// matched segment by segment against the trailing segments of name: "*"
// and "?" stay within a segment and "**" spans any number of segments.
// A pattern starting with "/" must match from the first segment.
func matchFile(pattern, name string) bool {
	if pattern == "" || name == "" {
		return false
	}
	if !hasGlob(pattern) {
		return name == pattern || strings.HasSuffix(name, "/"+pattern)
	}

	anchored := strings.HasPrefix(pattern, "/") && strings.HasPrefix(name, "/")
	pat := splitSegments(pattern)
	segs := splitSegments(name)
	b := &globBudget{left: maxGlobIterations}

	if anchored {
		return matchSegments(pat, segs, b)
	}
	for start := 0; start < len(segs); start++ {
		if !b.tick() {
			return false
		}
		if matchSegments(pat, segs[start:], b) {
			return true
		}
	}
	return false
}

func splitSegments(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
}

// matchSegments matches pattern segments against all of segs.
func matchSegments(pat, segs []string, b *globBudget) bool {
	if !b.tick() {
		return false
	}
	if len(pat) == 0 {
		return len(segs) == 0
	}
	if pat[0] == "**" {
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pat[1:], segs[i:], b) {
				return true
			}
			if !b.tick() {
				return false
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := path.Match(pat[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pat[1:], segs[1:], b)
}

// matchID reports whether a diagnostic id is selected by an error id
// pattern. Literal ids compare exactly.
func matchID(pattern, id string) bool {
	if !hasGlob(pattern) {
		return pattern == id
	}
	ok, err := path.Match(pattern, id)
	return err == nil && ok
}
