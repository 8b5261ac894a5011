package directive

import (
	"iter"
	"strings"
)

// Scan returns the directives found in content in source order.
//
// A line directive on a line of its own applies to the next line holding
// code; directives stacked on consecutive comment lines share that target.
// A directive trailing code applies to its own line. Line directives with no
// code after them are dropped.
//
// Scan covers every configuration: only conditional groups that no
// configuration compiles, such as #if 0, are skipped.
//
// The sequence is lazy and can be ranged over any number of times; each
// iteration scans content from the start.
func Scan(content []byte) iter.Seq[Directive] {
	return ScanConfig(content, nil)
}

// ScanConfig is Scan for the preprocessor configuration defs. Directives in
// conditional groups that defs leaves out are not yielded, and code in those
// groups is not a target.
func ScanConfig(content []byte, defs Defines) iter.Seq[Directive] {
	return func(yield func(Directive) bool) {
		lx := newLexer(content, defs)
		var pending []pendingDirective

		flush := func(target int) bool {
			for _, p := range pending {
				if p.needsTarget {
					if target == 0 {
						continue
					}
					p.d.Target = target
				}
				if !yield(p.d) {
					return false
				}
			}
			pending = pending[:0]
			return true
		}

		for {
			tok, ok := lx.next()
			if !ok {
				break
			}
			if tok.kind == tokCode {
				if len(pending) > 0 && !flush(tok.line) {
					return
				}
				continue
			}
			d, fileWide, ok := parseBody(tok.body)
			if !ok {
				continue
			}
			d.Line = tok.line
			switch {
			case fileWide:
				pending = append(pending, pendingDirective{d: d})
			case tok.codeBefore:
				d.Target = tok.line
				if !flush(tok.line) || !yield(d) {
					return
				}
			default:
				pending = append(pending, pendingDirective{d: d, needsTarget: true})
			}
		}
		flush(0)
	}
}

// Collect scans content into a slice.
func Collect(content []byte) []Directive {
	return CollectConfig(content, nil)
}

// CollectConfig scans content under defs into a slice.
func CollectConfig(content []byte, defs Defines) []Directive {
	var out []Directive
	for d := range ScanConfig(content, defs) {
		out = append(out, d)
	}
	return out
}

type pendingDirective struct {
	d           Directive
	needsTarget bool
}

type tokKind uint8

const (
	tokCode tokKind = iota
	tokComment
)

type token struct {
	kind tokKind
	line int
	// body is the comment text without delimiters.
	body string
	// codeBefore reports whether code precedes the comment on its line.
	codeBefore bool
}

// lexer splits C/C++ text into comments and "first code on a line" events.
// It understands string, character and raw string literals so comment
// markers inside literals are not treated as comments. Nothing is emitted
// for text in skipped conditional groups.
type lexer struct {
	src         []byte
	pos         int
	line        int
	lineHasCode bool
	cond        *conditions
}

func newLexer(src []byte, defs Defines) *lexer {
	return &lexer{src: src, line: 1, cond: newConditions(defs)}
}

func (lx *lexer) next() (token, bool) {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			lx.newline()
			lx.pos++
			continue
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			lx.pos++
			continue
		case c == '/' && lx.peek(1) == '/':
			if tok := lx.lineComment(); lx.cond.active() {
				return tok, true
			}
			continue
		case c == '/' && lx.peek(1) == '*':
			if tok := lx.blockComment(); lx.cond.active() {
				return tok, true
			}
			continue
		}

		if !lx.lineHasCode {
			lx.lineHasCode = true
			tok := token{kind: tokCode, line: lx.line}
			active := lx.cond.active()
			if c == '#' {
				lx.preprocessor()
			}
			if active {
				return tok, true
			}
			continue
		}
		lx.code()
	}
	return token{}, false
}

// preprocessor consumes a preprocessor line up to its end or a trailing
// comment and applies it to the conditional state.
func (lx *lexer) preprocessor() {
	line := lx.line
	lx.pos++
	var text strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if c == '\\' && lx.peek(1) == '\n' {
			lx.line++
			lx.pos += 2
			text.WriteByte(' ')
			continue
		}
		if c == '\n' || (c == '/' && (lx.peek(1) == '/' || lx.peek(1) == '*')) {
			break
		}
		if c == '"' || (c == '\'' && !isIdentByte(lx.src[lx.pos-1])) {
			start := lx.pos
			lx.quoted(c)
			text.Write(lx.src[start:lx.pos])
			continue
		}
		text.WriteByte(c)
		lx.pos++
	}
	lx.cond.directive(text.String(), line)
}

func (lx *lexer) newline() {
	lx.line++
	lx.lineHasCode = false
}

func (lx *lexer) peek(n int) byte {
	if lx.pos+n < len(lx.src) {
		return lx.src[lx.pos+n]
	}
	return 0
}

func (lx *lexer) lineComment() token {
	tok := token{kind: tokComment, line: lx.line, codeBefore: lx.lineHasCode}
	start := lx.pos + 2
	end := start
	for end < len(lx.src) && lx.src[end] != '\n' {
		end++
	}
	tok.body = string(lx.src[start:end])
	lx.pos = end
	return tok
}

func (lx *lexer) blockComment() token {
	tok := token{kind: tokComment, line: lx.line, codeBefore: lx.lineHasCode}
	start := lx.pos + 2
	i := start
	for i < len(lx.src) && !(lx.src[i] == '*' && i+1 < len(lx.src) && lx.src[i+1] == '/') {
		if lx.src[i] == '\n' {
			lx.newline()
		}
		i++
	}
	tok.body = string(lx.src[start:min(i, len(lx.src))])
	lx.pos = min(i+2, len(lx.src))
	return tok
}

// code consumes one code element: a literal, a number or a single byte.
func (lx *lexer) code() {
	c := lx.src[lx.pos]
	switch {
	case c == 'R' && lx.peek(1) == '"':
		lx.rawString()
	case c == '"' || c == '\'':
		lx.quoted(c)
	case lx.numberStart(c):
		lx.number()
	default:
		lx.pos++
	}
}

// numberStart reports whether a preprocessing number begins at the current
// byte. A digit inside an identifier, as in u8'x', does not start one.
func (lx *lexer) numberStart(c byte) bool {
	if !isDigit(c) && (c != '.' || !isDigit(lx.peek(1))) {
		return false
	}
	return lx.pos == 0 || !isIdentByte(lx.src[lx.pos-1])
}

// number skips a preprocessing number, including digit separators such as
// 1'000 and exponent signs such as 1e-5.
func (lx *lexer) number() {
	lx.pos++
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case (c == '+' || c == '-') && strings.ContainsRune("eEpP", rune(lx.src[lx.pos-1])):
			lx.pos++
		case isIdentByte(c) || c == '.':
			lx.pos++
		case c == '\'' && isIdentByte(lx.peek(1)):
			lx.pos += 2
		default:
			return
		}
	}
}

func isIdentByte(c byte) bool { return isLetter(c) || isDigit(c) || c == '_' }

func (lx *lexer) quoted(quote byte) {
	lx.pos++
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch c {
		case '\\':
			if lx.peek(1) == '\n' {
				lx.line++
			}
			lx.pos += 2
			continue
		case '\n':
			// unterminated literal ends at the line break
			return
		}
		lx.pos++
		if c == quote {
			return
		}
	}
}

// rawString skips R"delim( ... )delim".
func (lx *lexer) rawString() {
	open := lx.pos + 2
	paren := open
	for paren < len(lx.src) && lx.src[paren] != '(' && lx.src[paren] != '\n' && paren-open <= 16 {
		paren++
	}
	if paren >= len(lx.src) || lx.src[paren] != '(' {
		lx.pos++
		return
	}
	closing := ")" + string(lx.src[open:paren]) + "\""
	i := paren + 1
	for i < len(lx.src) {
		if lx.src[i] == '\n' {
			lx.line++
		}
		if lx.src[i] == ')' && hasPrefixAt(lx.src, i, closing) {
			lx.pos = i + len(closing)
			return
		}
		i++
	}
	lx.pos = len(lx.src)
}

func hasPrefixAt(b []byte, at int, prefix string) bool {
	return len(b)-at >= len(prefix) && string(b[at:at+len(prefix)]) == prefix
}
