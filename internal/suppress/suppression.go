package suppress

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sift/internal/directive"
	"sift/internal/source"
)

// ErrSyntax is returned for suppression text that cannot be parsed.
var ErrSyntax = errors.New("invalid suppression")

// Origin says where a suppression was declared.
type Origin uint8

const (
	OriginInline Origin = iota + 1
	OriginList
	OriginCommandLine
)

func (o Origin) String() string {
	switch o {
	case OriginInline:
		return "inline"
	case OriginList:
		return "suppression-list"
	case OriginCommandLine:
		return "command-line"
	}
	return "unknown"
}

// ID identifies a suppression by its declaration. It does not depend on
// the order suppressions were registered, so the same suppression has the
// same ID in every worker.
type ID struct {
	Origin Origin
	// Source is the declaring file: the analyzed file for inline
	// suppressions, the list or manifest path for list entries, empty for
	// the command line.
	Source string
	// Pos is the line in Source, or the argument index on the command line.
	Pos int
	// Seq distinguishes several suppressions produced by one declaration.
	Seq int
}

func (id ID) String() string {
	if id.Source == "" {
		return fmt.Sprintf("%s#%d.%d", id.Origin, id.Pos, id.Seq)
	}
	return fmt.Sprintf("%s:%s:%d.%d", id.Origin, id.Source, id.Pos, id.Seq)
}

type Suppression struct {
	ErrorID string
	// FileName is a normalized path or pattern; empty means every file.
	FileName string
	// Line is 1-based; 0 means the whole file.
	Line   int
	Symbol string
	ID     ID
}

// Origin is shorthand for s.ID.Origin.
func (s *Suppression) Origin() Origin { return s.ID.Origin }

// WildcardID reports whether ErrorID is a pattern rather than a literal id.
func (s *Suppression) WildcardID() bool {
	return strings.ContainsAny(s.ErrorID, "*?")
}

// Text renders the suppression in the errorId:file:line syntax accepted by Parse.
func (s *Suppression) Text() string {
	var b strings.Builder
	b.WriteString(s.ErrorID)
	if s.FileName != "" {
		b.WriteByte(':')
		b.WriteString(s.FileName)
		if s.Line > 0 {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(s.Line))
		}
	}
	if s.Symbol != "" {
		b.WriteString(" symbolName=")
		b.WriteString(s.Symbol)
	}
	return b.String()
}

func (s *Suppression) String() string {
	return s.Text() + " (" + s.ID.String() + ")"
}

// Parse reads one external suppression. Accepted forms:
//
//	errorId
//	errorId:file
//	errorId:file:line
//	errorId=file
//	errorId=file:line
//
// each optionally followed by " symbolName=<name>".
func Parse(text string, id ID) (Suppression, error) {
	raw := text
	text = strings.TrimSpace(text)

	var symbol string
	if head, sym, ok := strings.Cut(text, " symbolName="); ok {
		symbol = strings.TrimSpace(sym)
		text = strings.TrimSpace(head)
		if symbol == "" {
			return Suppression{}, fmt.Errorf("%w %q: empty symbolName", ErrSyntax, raw)
		}
	}

	errorID, rest := text, ""
	if i := strings.IndexAny(text, ":="); i >= 0 {
		errorID, rest = text[:i], text[i+1:]
	}
	if !validErrorID(errorID) {
		return Suppression{}, fmt.Errorf("%w %q: bad error id", ErrSyntax, raw)
	}

	s := Suppression{ErrorID: errorID, Symbol: symbol, ID: id}
	if rest == "" {
		return s, nil
	}

	file := rest
	if j := strings.LastIndexByte(rest, ':'); j >= 0 {
		if digits := rest[j+1:]; digits != "" && isDigits(digits) {
			n, err := strconv.Atoi(digits)
			if err != nil {
				return Suppression{}, fmt.Errorf("%w %q: %w", ErrSyntax, raw, err)
			}
			file, s.Line = rest[:j], n
		}
	}
	if file == "" {
		return Suppression{}, fmt.Errorf("%w %q: line without file", ErrSyntax, raw)
	}
	s.FileName = source.NormalizePath(file)
	return s, nil
}

// FromDirectives converts the directives scanned from file into inline
// suppressions, one per error id, in directive order.
func FromDirectives(file string, ds []directive.Directive) []Suppression {
	file = source.NormalizePath(file)
	var out []Suppression
	seq := 0
	for _, d := range ds {
		for _, errorID := range d.IDs {
			s := Suppression{
				ErrorID:  errorID,
				FileName: file,
				Line:     d.Target,
				Symbol:   d.Symbol,
				ID:       ID{Origin: OriginInline, Source: file, Pos: d.Line, Seq: seq},
			}
			if d.Kind == directive.FileScoped {
				s.Line = 0
			}
			out = append(out, s)
			seq++
		}
	}
	return out
}

func validErrorID(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '*', c == '?':
		case (c >= '0' && c <= '9') || c == '-' || c == '.':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
