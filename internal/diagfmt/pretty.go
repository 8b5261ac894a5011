package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"sift/internal/diag"
)

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	case diag.SevStyle, diag.SevPerformance, diag.SevPortability:
		return color.New(color.FgCyan, color.Bold)
	default:
		return color.New(color.FgBlue, color.Bold)
	}
}

// Pretty writes diagnostics for humans. items are expected in canonical
// order. For each diagnostic it prints
//
//	<path>:<line>:<col>: <severity>: <message> [<id>]
//
// then, when lines can provide them, up to opts.Context preceding lines
// and the reported line with a caret under the column.
func Pretty(w io.Writer, items []diag.Diagnostic, lines Lines, opts PrettyOpts) error {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	gutter := color.New(color.FgBlue)
	for _, c := range []*color.Color{bold, faint, gutter} {
		setColor(c, opts.Color)
	}

	var sb strings.Builder
	for i, d := range items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sev := severityColor(d.Severity)
		setColor(sev, opts.Color)

		path := formatPath(d.File, opts.PathMode, opts.BaseDir)
		sb.WriteString(bold.Sprintf("%s:%d:%d:", path, d.Line, d.Column))
		sb.WriteByte(' ')
		sb.WriteString(sev.Sprint(d.Severity.String()))
		sb.WriteString(": ")
		sb.WriteString(d.Message)
		sb.WriteByte(' ')
		sb.WriteString(faint.Sprintf("[%s]", d.ID))
		sb.WriteByte('\n')

		if lines == nil || d.Line <= 0 {
			continue
		}
		text, ok := lines.Line(d.File, d.Line)
		if !ok {
			continue
		}
		width := len(fmt.Sprint(d.Line))
		for n := max(1, d.Line-opts.Context); n < d.Line; n++ {
			if prev, ok := lines.Line(d.File, n); ok {
				sb.WriteString(gutter.Sprintf("%*d | ", width, n))
				sb.WriteString(prev)
				sb.WriteByte('\n')
			}
		}
		sb.WriteString(gutter.Sprintf("%*d | ", width, d.Line))
		sb.WriteString(text)
		sb.WriteByte('\n')
		if d.Column > 0 {
			sb.WriteString(gutter.Sprintf("%*s | ", width, ""))
			sb.WriteString(caretPad(text, d.Column))
			sb.WriteString(sev.Sprint("^"))
			sb.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func setColor(c *color.Color, enabled bool) {
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
}
