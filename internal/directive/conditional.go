package directive

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Defines is a preprocessor configuration: macro names mapped to their
// replacement text.
//
// A nil Defines stands for every configuration. Only conditions whose value
// does not depend on an unknown macro then decide a branch, so #if 0 groups
// are skipped while #ifdef FOO groups are kept. A non-nil Defines is one
// definite configuration in which every macro it does not name is undefined.
type Defines map[string]string

// ParseDefines parses -D values of the form NAME or NAME=VALUE. NAME alone
// defines NAME as 1. An empty values list yields a nil Defines.
func ParseDefines(values []string) (Defines, error) {
	if len(values) == 0 {
		return nil, nil
	}
	defs := make(Defines, len(values))
	for _, v := range values {
		name, text, ok := strings.Cut(v, "=")
		if !ok {
			text = "1"
		}
		if !isIdent(name) {
			return nil, fmt.Errorf("invalid define %q: %q is not a macro name", v, name)
		}
		defs[name] = text
	}
	return defs, nil
}

// Canonical renders defs in a stable NAME=VALUE form, sorted by name. Nil
// renders as "*".
func (d Defines) Canonical() string {
	if d == nil {
		return "*"
	}
	parts := make([]string, 0, len(d))
	for _, name := range slices.Sorted(maps.Keys(d)) {
		parts = append(parts, name+"="+d[name])
	}
	return strings.Join(parts, ",")
}

// LineRange is an inclusive range of 1-based line numbers.
type LineRange struct {
	First, Last int
}

// Skipped returns the line ranges of content that the preprocessor drops
// under defs. A range runs from the conditional directive that closes the
// active text to the one that reopens it.
func Skipped(content []byte, defs Defines) []LineRange {
	lx := newLexer(content, defs)
	for {
		if _, ok := lx.next(); !ok {
			break
		}
	}
	return lx.cond.finish(lx.line)
}

// InRanges reports whether line falls in one of rs.
func InRanges(rs []LineRange, line int) bool {
	for _, r := range rs {
		if line >= r.First && line <= r.Last {
			return true
		}
	}
	return false
}

type truth uint8

const (
	unknown truth = iota
	no
	yes
)

func (t truth) not() truth {
	switch t {
	case yes:
		return no
	case no:
		return yes
	}
	return unknown
}

type macro struct {
	value   string
	defined bool
}

type frame struct {
	outer  bool  // the enclosing text is active
	active bool  // the current branch is active
	taken  truth // some earlier branch was taken
}

// conditions tracks #if nesting while a file is lexed.
type conditions struct {
	configured bool
	macros     map[string]macro
	stack      []frame

	skipping  bool
	skipStart int
	skipped   []LineRange
}

func newConditions(defs Defines) *conditions {
	c := &conditions{configured: defs != nil, macros: make(map[string]macro, len(defs))}
	for name, text := range defs {
		c.macros[name] = macro{value: text, defined: true}
	}
	return c
}

func (c *conditions) active() bool {
	return len(c.stack) == 0 || c.stack[len(c.stack)-1].active
}

// directive applies one preprocessor line, text being everything after the
// '#'.
func (c *conditions) directive(text string, line int) {
	text = strings.TrimSpace(text)
	name := text
	if i := strings.IndexFunc(text, func(r rune) bool { return !isIdentRune(r) }); i >= 0 {
		name = text[:i]
	}
	rest := strings.TrimSpace(text[len(name):])

	before := c.active()
	switch name {
	case "if":
		c.push(c.eval(rest))
	case "ifdef":
		c.push(c.isDefined(leadingIdent(rest)))
	case "ifndef":
		c.push(c.isDefined(leadingIdent(rest)).not())
	case "elif":
		c.elif(func() truth { return c.eval(rest) })
	case "elifdef":
		c.elif(func() truth { return c.isDefined(leadingIdent(rest)) })
	case "elifndef":
		c.elif(func() truth { return c.isDefined(leadingIdent(rest)).not() })
	case "else":
		if n := len(c.stack); n > 0 {
			f := &c.stack[n-1]
			f.active = f.outer && f.taken != yes
			f.taken = yes
		}
	case "endif":
		if n := len(c.stack); n > 0 {
			c.stack = c.stack[:n-1]
		}
	case "define":
		if before {
			c.define(rest)
		}
	case "undef":
		if before {
			c.macros[leadingIdent(rest)] = macro{}
		}
	}

	switch after := c.active(); {
	case before && !after:
		c.skipping, c.skipStart = true, line
	case !before && after:
		c.skipping = false
		c.skipped = append(c.skipped, LineRange{First: c.skipStart, Last: line})
	}
}

func (c *conditions) push(v truth) {
	outer := c.active()
	c.stack = append(c.stack, frame{outer: outer, active: outer && v != no, taken: v})
}

func (c *conditions) elif(eval func() truth) {
	n := len(c.stack)
	if n == 0 {
		return
	}
	f := &c.stack[n-1]
	if f.taken == yes {
		f.active = false
		return
	}
	v := eval()
	f.active = f.outer && v != no
	if f.taken == no {
		f.taken = v
	}
}

// finish closes a group left open at the end of the file.
func (c *conditions) finish(lastLine int) []LineRange {
	if c.skipping {
		c.skipping = false
		c.skipped = append(c.skipped, LineRange{First: c.skipStart, Last: lastLine})
	}
	return c.skipped
}

func (c *conditions) define(rest string) {
	name := leadingIdent(rest)
	if name == "" {
		return
	}
	body := rest[len(name):]
	if strings.HasPrefix(body, "(") {
		// function-like macros have no value of their own
		c.macros[name] = macro{defined: true}
		return
	}
	c.macros[name] = macro{value: strings.TrimSpace(body), defined: true}
}

func (c *conditions) isDefined(name string) truth {
	if name == "" {
		return unknown
	}
	if m, ok := c.macros[name]; ok {
		if m.defined {
			return yes
		}
		return no
	}
	if c.configured {
		return no
	}
	return unknown
}

func (c *conditions) eval(expr string) truth {
	p := exprParser{c: c, toks: tokenizeExpr(expr)}
	v := p.parse()
	if !v.known {
		return unknown
	}
	if v.n != 0 {
		return yes
	}
	return no
}

// value is an #if operand. An unknown value depends on a macro whose
// definition varies between configurations.
type value struct {
	n     int64
	known bool
}

func knownValue(n int64) value { return value{n: n, known: true} }

func boolValue(b bool) value {
	if b {
		return knownValue(1)
	}
	return knownValue(0)
}

const maxExpansion = 8

type exprParser struct {
	c     *conditions
	toks  []string
	pos   int
	depth int
	bad   bool
}

func (p *exprParser) parse() value {
	v := p.binary(0)
	if p.bad || p.pos != len(p.toks) {
		return value{}
	}
	return v
}

var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

func (p *exprParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *exprParser) binary(minPrec int) value {
	lhs := p.unary()
	for {
		op := p.peek()
		prec, ok := precedence[op]
		if !ok || prec <= minPrec {
			return lhs
		}
		p.pos++
		rhs := p.binary(prec)
		lhs = apply(op, lhs, rhs)
	}
}

func (p *exprParser) unary() value {
	switch p.peek() {
	case "!":
		p.pos++
		v := p.unary()
		if !v.known {
			return v
		}
		return boolValue(v.n == 0)
	case "-":
		p.pos++
		v := p.unary()
		v.n = -v.n
		return v
	case "+":
		p.pos++
		return p.unary()
	case "~":
		p.pos++
		v := p.unary()
		v.n = ^v.n
		return v
	}
	return p.primary()
}

func (p *exprParser) primary() value {
	tok := p.peek()
	p.pos++
	switch {
	case tok == "":
		p.bad = true
		return value{}
	case tok == "(":
		v := p.binary(0)
		if p.peek() != ")" {
			p.bad = true
			return value{}
		}
		p.pos++
		return v
	case tok == "defined":
		return p.defined()
	case isDigit(tok[0]):
		return parseNumber(tok)
	case isIdent(tok):
		return p.identifier(tok)
	}
	p.bad = true
	return value{}
}

func (p *exprParser) defined() value {
	paren := p.peek() == "("
	if paren {
		p.pos++
	}
	name := p.peek()
	if !isIdent(name) {
		p.bad = true
		return value{}
	}
	p.pos++
	if paren {
		if p.peek() != ")" {
			p.bad = true
			return value{}
		}
		p.pos++
	}
	switch p.c.isDefined(name) {
	case yes:
		return knownValue(1)
	case no:
		return knownValue(0)
	}
	return value{}
}

func (p *exprParser) identifier(name string) value {
	if p.peek() == "(" {
		// __has_include(...), function-like macros
		p.skipParens()
		return value{}
	}
	switch name {
	case "true":
		return knownValue(1)
	case "false":
		return knownValue(0)
	}
	m, ok := p.c.macros[name]
	switch {
	case ok && m.defined:
		if m.value == "" || p.depth >= maxExpansion {
			return value{}
		}
		sub := exprParser{c: p.c, toks: tokenizeExpr(m.value), depth: p.depth + 1}
		return sub.parse()
	case ok || p.c.configured:
		return knownValue(0)
	}
	return value{}
}

func (p *exprParser) skipParens() {
	depth := 0
	for p.pos < len(p.toks) {
		switch p.toks[p.pos] {
		case "(":
			depth++
		case ")":
			depth--
		}
		p.pos++
		if depth == 0 {
			return
		}
	}
}

func apply(op string, a, b value) value {
	switch op {
	case "&&":
		if (a.known && a.n == 0) || (b.known && b.n == 0) {
			return knownValue(0)
		}
		if a.known && b.known {
			return knownValue(1)
		}
		return value{}
	case "||":
		if (a.known && a.n != 0) || (b.known && b.n != 0) {
			return knownValue(1)
		}
		if a.known && b.known {
			return knownValue(0)
		}
		return value{}
	}
	if !a.known || !b.known {
		return value{}
	}
	switch op {
	case "|":
		return knownValue(a.n | b.n)
	case "^":
		return knownValue(a.n ^ b.n)
	case "&":
		return knownValue(a.n & b.n)
	case "==":
		return boolValue(a.n == b.n)
	case "!=":
		return boolValue(a.n != b.n)
	case "<":
		return boolValue(a.n < b.n)
	case ">":
		return boolValue(a.n > b.n)
	case "<=":
		return boolValue(a.n <= b.n)
	case ">=":
		return boolValue(a.n >= b.n)
	case "<<":
		return knownValue(a.n << uint64(b.n&63))
	case ">>":
		return knownValue(a.n >> uint64(b.n&63))
	case "+":
		return knownValue(a.n + b.n)
	case "-":
		return knownValue(a.n - b.n)
	case "*":
		return knownValue(a.n * b.n)
	case "/", "%":
		if b.n == 0 {
			return value{}
		}
		if op == "/" {
			return knownValue(a.n / b.n)
		}
		return knownValue(a.n % b.n)
	}
	return value{}
}

func parseNumber(tok string) value {
	tok = strings.ReplaceAll(tok, "'", "")
	tok = strings.TrimRight(tok, "uUlL")
	if n, err := strconv.ParseInt(tok, 0, 64); err == nil {
		return knownValue(n)
	}
	if n, err := strconv.ParseUint(tok, 0, 64); err == nil {
		return knownValue(int64(n))
	}
	return value{}
}

var twoCharOps = []string{"&&", "||", "==", "!=", "<=", ">=", "<<", ">>"}

func tokenizeExpr(s string) []string {
	var toks []string
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case isLetter(c) || c == '_':
			j := i + 1
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		case isDigit(c):
			j := i + 1
			for j < len(s) && (isIdentByte(s[j]) || s[j] == '\'' || s[j] == '.') {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		default:
			op := s[i : i+1]
			for _, two := range twoCharOps {
				if strings.HasPrefix(s[i:], two) {
					op = two
					break
				}
			}
			toks = append(toks, op)
			i += len(op)
		}
	}
	return toks
}

func leadingIdent(s string) string {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	if i == 0 || isDigit(s[0]) {
		return ""
	}
	return s[:i]
}

func isIdent(s string) bool {
	return s != "" && leadingIdent(s) == s
}

func isIdentRune(r rune) bool {
	return r < 0x80 && isIdentByte(byte(r))
}
