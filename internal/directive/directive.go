// Package directive extracts inline suppression directives from C and C++
// source text.
//
// A directive is a comment whose body starts with one of the markers
//
//	sift-suppress       cppcheck-suppress
//	sift-suppress-file  cppcheck-suppress-file
//
// followed by one or more comma separated error ids, either after a space or
// in brackets, an optional symbolName=<name> qualifier and optional free text:
//
//	// sift-suppress zerodiv
//	// sift-suppress[zerodiv,nullPointer] - checked by caller
//	int r = a / b; // sift-suppress zerodiv
//	/* sift-suppress-file missingInclude */
//	// sift-suppress unusedFunction symbolName=helper
//
// Anything else is not a directive. Malformed directives are dropped without
// a diagnostic. Comments inside conditional groups that the preprocessor
// skips are not directives either; see Defines.
package directive

import "fmt"

// Kind tags the variant of a Directive.
type Kind uint8

const (
	// LineScoped applies to Target only.
	LineScoped Kind = iota + 1
	// FileScoped applies to every line of the declaring file.
	FileScoped
	// WithSymbol applies to diagnostics carrying Symbol. Target is the
	// line it applies to, or 0 for the whole file.
	WithSymbol
)

func (k Kind) String() string {
	switch k {
	case LineScoped:
		return "line"
	case FileScoped:
		return "file"
	case WithSymbol:
		return "symbol"
	}
	return "unknown"
}

// Directive is one inline suppression comment.
type Directive struct {
	Kind   Kind     `msgpack:"k"`
	IDs    []string `msgpack:"ids"`
	Symbol string   `msgpack:"sym,omitempty"`
	// Line is the 1-based line the comment starts on.
	Line int `msgpack:"line"`
	// Target is the 1-based line the directive applies to; 0 means the whole file.
	Target int    `msgpack:"target"`
	Reason string `msgpack:"reason,omitempty"`
}

func (d Directive) String() string {
	switch d.Kind {
	case FileScoped:
		return fmt.Sprintf("%d: file %v", d.Line, d.IDs)
	case WithSymbol:
		return fmt.Sprintf("%d->%d: %v symbol=%s", d.Line, d.Target, d.IDs, d.Symbol)
	default:
		return fmt.Sprintf("%d->%d: %v", d.Line, d.Target, d.IDs)
	}
}
