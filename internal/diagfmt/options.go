// Package diagfmt renders diagnostics: template lines (the default),
// colored pretty output, JSON and SARIF.
package diagfmt

import (
	"fmt"
	"strings"
)

// Format selects a renderer.
type Format uint8

const (
	FormatTemplate Format = iota
	FormatPretty
	FormatJSON
	FormatSarif
)

func (f Format) String() string {
	switch f {
	case FormatTemplate:
		return "template"
	case FormatPretty:
		return "pretty"
	case FormatJSON:
		return "json"
	case FormatSarif:
		return "sarif"
	default:
		return "unknown"
	}
}

// ParseFormat converts a --format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "template", "text":
		return FormatTemplate, nil
	case "pretty":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSarif, nil
	default:
		return FormatTemplate, fmt.Errorf("unknown format %q (expected: template|pretty|json|sarif)", s)
	}
}

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto prints paths as analyzed.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	Context  int // source lines shown before the reported line
	PathMode PathMode
	BaseDir  string // for PathModeRelative; empty means the working directory
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode PathMode
	BaseDir  string
	Max      int // truncates the output, 0 means no limit
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
