package suppress

import (
	"sift/internal/diag"
)

// NoFile is the location reported for unmatched suppressions that are not
// tied to a file.
const NoFile = "nofile"

// UnmatchedOptions tunes Unmatched.
type UnmatchedOptions struct {
	// SkipIDs lists error ids whose producing check did not run in this
	// configuration. Suppressions for them cannot be judged.
	SkipIDs map[string]bool
}

// Unmatched pairs a meta-diagnostic with the suppression it reports.
type Unmatched struct {
	Diagnostic  diag.Diagnostic
	Suppression ID
}

// FindUnmatched returns a meta-diagnostic for every inline or list
// suppression in reg that is not in touched, in registration order.
// Command-line suppressions are never reported, nor are suppressions of
// unmatchedSuppression itself.
func FindUnmatched(reg *Registry, touched Touched, opts UnmatchedOptions) []Unmatched {
	var out []Unmatched
	for i := range reg.entries {
		s := &reg.entries[i]
		switch {
		case s.Origin() != OriginInline && s.Origin() != OriginList:
			continue
		case s.ErrorID == diag.UnmatchedSuppressionID:
			continue
		case opts.SkipIDs[s.ErrorID]:
			continue
		case touched.Has(s.ID):
			continue
		}
		file := s.FileName
		if file == "" {
			file = NoFile
		}
		d := diag.New(diag.SevInformation, diag.UnmatchedSuppressionID, file, s.Line, 0,
			"Unmatched suppression: "+s.ErrorID)
		out = append(out, Unmatched{Diagnostic: d, Suppression: s.ID})
	}
	return out
}

// ReportUnmatched runs FindUnmatched and passes each meta-diagnostic through
// m, returning the ones that survive.
func ReportUnmatched(reg *Registry, touched Touched, m *Matcher, opts UnmatchedOptions) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, u := range FindUnmatched(reg, touched, opts) {
		if r := m.MatchUnmatched(u.Diagnostic, u.Suppression); !r.Suppressed {
			out = append(out, u.Diagnostic)
		}
	}
	return out
}
