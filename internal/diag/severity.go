package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInformation is for informational diagnostics (missing includes, unmatched suppressions).
	SevInformation Severity = iota
	SevPortability
	SevPerformance
	SevStyle
	SevWarning
	// SevError is for definite bugs. Error checks always run.
	SevError
)

// Severities lists every severity in ascending order.
var Severities = []Severity{SevInformation, SevPortability, SevPerformance, SevStyle, SevWarning, SevError}

func (s Severity) String() string {
	switch s {
	case SevInformation:
		return "information"
	case SevPortability:
		return "portability"
	case SevPerformance:
		return "performance"
	case SevStyle:
		return "style"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity converts a severity name into Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "information", "info":
		return SevInformation, nil
	case "portability":
		return SevPortability, nil
	case "performance":
		return SevPerformance, nil
	case "style":
		return SevStyle, nil
	case "warning":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}
