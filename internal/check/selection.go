package check

import (
	"fmt"
	"slices"
	"strings"

	"sift/internal/diag"
)

// EnableAll enables every severity and every check.
const EnableAll = "all"

// Selection is the parsed form of --enable and --disable.
type Selection struct {
	enabled  map[string]bool
	disabled map[string]bool
}

// NewSelection parses enable and disable values. Each value may hold a
// comma separated list. Enable accepts severities, check names and "all";
// "style" also enables warning, performance and portability. Disable
// accepts check names.
func NewSelection(enable, disable []string, known Set) (Selection, error) {
	sel := Selection{enabled: make(map[string]bool), disabled: make(map[string]bool)}
	names := known.Names()

	for _, item := range splitList(enable) {
		switch {
		case item == EnableAll:
			sel.enabled[EnableAll] = true
		case slices.Contains(names, item):
			sel.enabled[item] = true
		default:
			sev, err := diag.ParseSeverity(item)
			if err != nil {
				return Selection{}, fmt.Errorf("--enable: unknown value %q", item)
			}
			sel.enabled[sev.String()] = true
			if sev == diag.SevStyle {
				for _, s := range []diag.Severity{diag.SevWarning, diag.SevPerformance, diag.SevPortability} {
					sel.enabled[s.String()] = true
				}
			}
		}
	}
	for _, item := range splitList(disable) {
		if !slices.Contains(names, item) {
			return Selection{}, fmt.Errorf("--disable: unknown check %q", item)
		}
		sel.disabled[item] = true
	}
	return sel, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// SeverityEnabled reports whether diagnostics of sev are shown. Errors are
// always shown.
func (s Selection) SeverityEnabled(sev diag.Severity) bool {
	return sev == diag.SevError || s.enabled[EnableAll] || s.enabled[sev.String()]
}

// Shown reports whether d is reported: its severity is enabled or its
// check was enabled by name.
func (s Selection) Shown(d diag.Diagnostic) bool {
	return s.SeverityEnabled(d.Severity) || s.enabled[d.ID]
}

// CheckEnabled reports whether c runs. Program checks are costly and run
// only when named or with "all".
func (s Selection) CheckEnabled(c Check) bool {
	if s.disabled[c.Name()] {
		return false
	}
	if s.enabled[EnableAll] || s.enabled[c.Name()] {
		return true
	}
	if _, ok := c.(ProgramCheck); ok {
		return false
	}
	return s.SeverityEnabled(c.Severity())
}

// Canonical returns a stable text form of s, used in traces.
func (s Selection) Canonical() string {
	en := sortedKeys(s.enabled)
	dis := sortedKeys(s.disabled)
	return "enable=" + strings.Join(en, ",") + ";disable=" + strings.Join(dis, ",")
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
