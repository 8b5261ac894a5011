package driver

import (
	"fmt"
	"runtime"
	"strings"

	"sift/internal/cache"
	"sift/internal/check"
	"sift/internal/directive"
	"sift/internal/observ"
	"sift/internal/project"
	"sift/internal/suppress"
)

// Input is the set of files to analyze.
type Input struct {
	Files []project.File
}

// Options configures a run.
type Options struct {
	// InlineSuppressions registers the suppression comments found in
	// analyzed files.
	InlineSuppressions bool
	// Enable and Disable are the raw --enable and --disable values.
	Enable  []string
	Disable []string
	// Suppressions holds --suppress values.
	Suppressions []string
	// Defines are -D values, NAME or NAME=VALUE. When set, only that
	// preprocessor configuration is checked; otherwise conditional groups
	// are skipped only where no configuration compiles them.
	Defines []string
	// SuppressionLists are paths of suppression list files.
	SuppressionLists []string
	// Extra suppressions, such as the manifest's [[suppress]] tables,
	// registered after the lists.
	Extra []suppress.Suppression
	// ErrorExitCode is returned when any diagnostic is reported.
	ErrorExitCode int
	// CacheDir enables the result cache when non-empty.
	CacheDir string
	// Jobs is the number of workers; 0 means GOMAXPROCS.
	Jobs int
	// Checks overrides the built-in check set.
	Checks *check.Set
	// Timer, when set, records phase timings.
	Timer *observ.Timer
}

func (o *Options) jobs(files int) int {
	n := o.Jobs
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return max(1, min(n, files))
}

// baseSuppressions returns the command-line, list and extra suppressions
// in that order.
func (o *Options) baseSuppressions() ([]suppress.Suppression, error) {
	sups, err := suppress.ParseArgs(o.Suppressions)
	if err != nil {
		return nil, fmt.Errorf("--suppress: %w", err)
	}
	for _, path := range o.SuppressionLists {
		list, err := suppress.LoadList(path)
		if err != nil {
			return nil, err
		}
		sups = append(sups, list...)
	}
	return append(sups, o.Extra...), nil
}

// configDigest identifies what a cached entry depends on besides file
// content: the schema, the checks that ran, the include paths and the
// preprocessor configuration. Suppressions are not part of it because
// matching is redone every run.
func configDigest(checks check.Set, includePaths []string, defs directive.Defines) cache.Digest {
	return cache.Strings(
		fmt.Sprintf("schema=%d", cache.SchemaVersion),
		"checks="+strings.Join(checks.Names(), ","),
		"include="+strings.Join(includePaths, "\x1f"),
		"defines="+defs.Canonical(),
	)
}
