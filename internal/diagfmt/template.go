package diagfmt

import (
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"sift/internal/diag"
)

// Named templates accepted by --template.
var templates = map[string]string{
	"simple": "{file}:{line}:{column}: {severity}: {message} [{id}]",
	"gcc":    "{file}:{line}:{column}: warning: {message} [{id}]\\n{code}",
	"vs":     "{file}({line}): {severity}: {message}",
	"edit":   "{file} +{line}: {severity}: {message}",
}

// ResolveTemplate maps a template name to its text. Anything that is not a
// known name is taken as a custom template.
func ResolveTemplate(name string) string {
	if name == "" {
		return templates["simple"]
	}
	if t, ok := templates[name]; ok {
		return t
	}
	return name
}

// Template writes one expansion of tmpl per diagnostic, each followed by a
// newline. lines may be nil when tmpl does not use {code}.
func Template(w io.Writer, items []diag.Diagnostic, tmpl string, lines Lines) error {
	tmpl = ResolveTemplate(tmpl)
	var sb strings.Builder
	for _, d := range items {
		sb.Reset()
		expand(&sb, d, tmpl, lines)
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// Expand renders a single diagnostic with tmpl.
func Expand(d diag.Diagnostic, tmpl string, lines Lines) string {
	var sb strings.Builder
	expand(&sb, d, ResolveTemplate(tmpl), lines)
	return sb.String()
}

func expand(sb *strings.Builder, d diag.Diagnostic, tmpl string, lines Lines) {
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '\\' && i+1 < len(tmpl):
			switch tmpl[i+1] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteByte(c)
				continue
			}
			i++
		case c == '{':
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				sb.WriteString(tmpl[i:])
				return
			}
			name := tmpl[i+1 : i+end]
			if v, ok := placeholder(d, name, lines); ok {
				sb.WriteString(v)
			} else {
				sb.WriteString(tmpl[i : i+end+1])
			}
			i += end
		default:
			sb.WriteByte(c)
		}
	}
}

func placeholder(d diag.Diagnostic, name string, lines Lines) (string, bool) {
	switch name {
	case "file":
		return d.File, true
	case "line":
		return strconv.Itoa(d.Line), true
	case "column":
		return strconv.Itoa(d.Column), true
	case "severity":
		return d.Severity.String(), true
	case "message":
		return d.Message, true
	case "id":
		return d.ID, true
	case "symbol":
		return d.Symbol, true
	case "code":
		return codeSnippet(d, lines), true
	}
	return "", false
}

// codeSnippet is the reported line followed by a caret under the column.
func codeSnippet(d diag.Diagnostic, lines Lines) string {
	if lines == nil {
		return ""
	}
	text, ok := lines.Line(d.File, d.Line)
	if !ok {
		return ""
	}
	if d.Column <= 0 {
		return text
	}
	return text + "\n" + caretPad(text, d.Column) + "^"
}

// caretPad returns the whitespace that puts a caret under the 1-based byte
// column col of text. Tabs are kept and wide runes take their display
// width, so the caret lines up in a terminal.
func caretPad(text string, col int) string {
	prefix := text[:min(col-1, len(text))]
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}
