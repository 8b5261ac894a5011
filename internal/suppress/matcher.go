package suppress

import (
	"maps"

	"sift/internal/diag"
)

// MatchResult records the decision for one diagnostic.
type MatchResult struct {
	Diagnostic diag.Diagnostic
	// By is the suppression that discarded the diagnostic; zero when it survived.
	By         ID
	Suppressed bool
}

// Touched is a set of suppression ids that matched at least one diagnostic.
type Touched map[ID]struct{}

func (t Touched) Has(id ID) bool {
	_, ok := t[id]
	return ok
}

// Union adds every id of other to t.
func (t Touched) Union(other Touched) {
	maps.Copy(t, other)
}

// Matcher filters diagnostics against a Registry and remembers which
// suppressions were used.
type Matcher struct {
	reg     *Registry
	touched Touched
}

func NewMatcher(reg *Registry) *Matcher {
	return &Matcher{reg: reg, touched: make(Touched)}
}

// Match decides whether d is suppressed.
//
// Meta-diagnostics about unmatched suppressions follow their own rule: only
// a suppression naming unmatchedSuppression literally can discard them, and
// never the suppression the diagnostic is about.
func (m *Matcher) Match(d diag.Diagnostic) MatchResult {
	if d.ID == diag.UnmatchedSuppressionID {
		return m.matchMeta(d, ID{})
	}
	s := m.reg.FindMatch(d)
	if s == nil {
		return MatchResult{Diagnostic: d}
	}
	m.touched[s.ID] = struct{}{}
	return MatchResult{Diagnostic: d, By: s.ID, Suppressed: true}
}

// MatchUnmatched is Match for a meta-diagnostic produced for about.
func (m *Matcher) MatchUnmatched(d diag.Diagnostic, about ID) MatchResult {
	return m.matchMeta(d, about)
}

func (m *Matcher) matchMeta(d diag.Diagnostic, about ID) MatchResult {
	best, bestTier := -1, tierNone
	for idx := range m.reg.entries {
		s := &m.reg.entries[idx]
		if s.ErrorID != diag.UnmatchedSuppressionID || s.ID == about {
			continue
		}
		if tier := classify(s, d); tier < bestTier {
			best, bestTier = idx, tier
		}
	}
	if best < 0 {
		return MatchResult{Diagnostic: d}
	}
	s := &m.reg.entries[best]
	m.touched[s.ID] = struct{}{}
	return MatchResult{Diagnostic: d, By: s.ID, Suppressed: true}
}

// Filter returns the diagnostics of ds that are not suppressed, in order.
func (m *Matcher) Filter(ds []diag.Diagnostic) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(ds))
	for _, d := range ds {
		if r := m.Match(d); !r.Suppressed {
			out = append(out, d)
		}
	}
	return out
}

// Reporter returns a diag.Reporter that forwards only unsuppressed
// diagnostics to next.
func (m *Matcher) Reporter(next diag.Reporter) diag.Reporter {
	return diag.ReporterFunc(func(d diag.Diagnostic) {
		if r := m.Match(d); !r.Suppressed {
			next.Report(d)
		}
	})
}

// Touched returns the ids matched so far. The caller owns the returned set.
func (m *Matcher) Touched() Touched {
	return maps.Clone(m.touched)
}
