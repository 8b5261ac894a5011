package directive

import "strings"

var markers = []struct {
	text     string
	fileWide bool
}{
	// longest first so "-file" is not read as the line marker
	{"sift-suppress-file", true},
	{"cppcheck-suppress-file", true},
	{"sift-suppress", false},
	{"cppcheck-suppress", false},
}

// parseBody parses a comment body with the comment delimiters removed.
// It reports false for anything that is not a well-formed directive. The
// returned directive has no location yet; fileWide reports whether it came
// from a file marker.
func parseBody(body string) (d Directive, fileWide, ok bool) {
	body = strings.TrimLeft(body, "/!*<")
	body = strings.TrimSpace(body)

	matched := false
	for _, m := range markers {
		if rest, ok := strings.CutPrefix(body, m.text); ok {
			body, fileWide, matched = rest, m.fileWide, true
			break
		}
	}
	if !matched || body == "" {
		return Directive{}, false, false
	}

	if !isSpace(body[0]) && body[0] != '[' {
		// "sift-suppressed", "sift-suppress-begin" and friends
		return Directive{}, false, false
	}
	body = strings.TrimLeft(body, " \t")

	var ids []string
	if strings.HasPrefix(body, "[") {
		end := strings.IndexByte(body, ']')
		if end < 0 {
			return Directive{}, false, false
		}
		list := body[1:end]
		body = body[end+1:]
		for _, part := range strings.Split(list, ",") {
			id := strings.TrimSpace(part)
			if !validID(id) {
				return Directive{}, false, false
			}
			ids = append(ids, id)
		}
	} else {
		var ok bool
		ids, body, ok = readIDList(body)
		if !ok {
			return Directive{}, false, false
		}
	}

	if body != "" && !isSpace(body[0]) && body[0] != '-' && body[0] != '/' {
		// id list glued to trailing text, e.g. "zerodiv;x"
		return Directive{}, false, false
	}

	d = Directive{Kind: LineScoped, IDs: ids}
	if fileWide {
		d.Kind = FileScoped
	}

	rest := strings.TrimSpace(body)
	if sym, ok := strings.CutPrefix(rest, "symbolName="); ok {
		name, tail, _ := strings.Cut(sym, " ")
		if !validSymbol(name) {
			return Directive{}, false, false
		}
		d.Kind = WithSymbol
		d.Symbol = name
		rest = strings.TrimSpace(tail)
	}
	rest = strings.TrimPrefix(rest, "//")
	rest = strings.TrimPrefix(rest, "-")
	d.Reason = strings.TrimSpace(rest)
	return d, fileWide, true
}

// readIDList reads "id[, id]*" and returns the ids and the remaining text.
func readIDList(s string) ([]string, string, bool) {
	var ids []string
	for {
		n := 0
		for n < len(s) && isIDChar(s[n]) {
			n++
		}
		id := s[:n]
		if !validID(id) {
			return nil, s, false
		}
		ids = append(ids, id)
		s = s[n:]
		t := strings.TrimLeft(s, " \t")
		if t == "" || t[0] != ',' {
			return ids, s, true
		}
		s = strings.TrimLeft(t[1:], " \t")
	}
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	c := id[0]
	if !(c == '_' || c == '*' || c == '?' || isLetter(c)) {
		return false
	}
	for i := 1; i < len(id); i++ {
		if !isIDChar(id[i]) {
			return false
		}
	}
	return true
}

func validSymbol(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(isLetter(c) || isDigit(c) || c == '_' || c == ':' || c == '~') {
			return false
		}
	}
	return true
}

func isIDChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_' || c == '*' || c == '?' || c == '-' || c == '.'
}

func isLetter(c byte) bool { return c|0x20 >= 'a' && c|0x20 <= 'z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isSpace(c byte) bool  { return c == ' ' || c == '\t' }
