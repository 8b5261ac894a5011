package diagfmt

import (
	"encoding/json"
	"io"

	"sift/internal/diag"
)

// LocationJSON is a diagnostic position.
type LocationJSON struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	ID       string       `json:"id"`
	Severity string       `json:"severity"`
	Message  string       `json:"message"`
	Symbol   string       `json:"symbol,omitempty"`
	Location LocationJSON `json:"location"`
}

// DiagnosticsOutput is the root of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// BuildDiagnosticsOutput builds the JSON document without serializing it.
func BuildDiagnosticsOutput(items []diag.Diagnostic, opts JSONOpts) DiagnosticsOutput {
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, n)}
	for _, d := range items[:n] {
		out.Diagnostics = append(out.Diagnostics, DiagnosticJSON{
			ID:       d.ID,
			Severity: d.Severity.String(),
			Message:  d.Message,
			Symbol:   d.Symbol,
			Location: LocationJSON{
				File:   formatPath(d.File, opts.PathMode, opts.BaseDir),
				Line:   d.Line,
				Column: d.Column,
			},
		})
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes diagnostics as an indented JSON document.
func JSON(w io.Writer, items []diag.Diagnostic, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(items, opts))
}
