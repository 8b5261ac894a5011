package trace

import (
	"fmt"
	"slices"
	"strings"
)

// Level controls tracing verbosity. Each level records the scopes of the
// one below it plus one finer scope.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing streamed; the ring is dumped when a run fails
	LevelPhase        // run, merge, unmatched and worker spans
	LevelDetail       // plus file spans and cache events
	LevelDebug        // plus one span per check per file
)

var levelNames = []string{"off", "error", "phase", "detail", "debug"}

// finest is the finest scope each level records; 0 records nothing.
var finest = [...]Scope{
	LevelOff:    0,
	LevelError:  0,
	LevelPhase:  ScopeWorker,
	LevelDetail: ScopeFile,
	LevelDebug:  ScopeCheck,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel parses a --trace-level value, ignoring case.
func ParseLevel(s string) (Level, error) {
	if i := slices.Index(levelNames, strings.ToLower(s)); i >= 0 {
		return Level(i), nil
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames, "|"))
}

// ShouldEmit reports whether events of scope are recorded at l.
func (l Level) ShouldEmit(scope Scope) bool {
	return int(l) < len(finest) && scope != 0 && scope <= finest[l]
}
