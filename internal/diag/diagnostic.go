package diag

import "fmt"

// Well-known diagnostic identifiers produced outside of individual checks.
const (
	// UnmatchedSuppressionID identifies meta-diagnostics about suppressions that never matched.
	UnmatchedSuppressionID = "unmatchedSuppression"
)

type Diagnostic struct {
	ID       string   `msgpack:"id" json:"id"`
	Severity Severity `msgpack:"sev" json:"-"`
	File     string   `msgpack:"file" json:"file"`
	Line     int      `msgpack:"line" json:"line"`
	Column   int      `msgpack:"col" json:"column"`
	Message  string   `msgpack:"msg" json:"message"`
	Symbol   string   `msgpack:"sym,omitempty" json:"symbol,omitempty"`
}

func New(sev Severity, id, file string, line, col int, msg string) Diagnostic {
	return Diagnostic{
		ID:       id,
		Severity: sev,
		File:     file,
		Line:     line,
		Column:   col,
		Message:  msg,
	}
}

func (d Diagnostic) WithSymbol(sym string) Diagnostic {
	d.Symbol = sym
	return d
}

// Key identifies a diagnostic for deduplication. Two diagnostics with the
// same key are indistinguishable in every output format.
func (d Diagnostic) Key() Key {
	return Key{d.ID, d.Severity, d.File, d.Line, d.Column, d.Message, d.Symbol}
}

type Key struct {
	id     string
	sev    Severity
	file   string
	line   int
	col    int
	msg    string
	symbol string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]", d.File, d.Line, d.Column, d.Severity, d.Message, d.ID)
}
