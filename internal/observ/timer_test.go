package observ

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("collect")
	tm.End(idx, "3 files")
	tm.Add("check", 5*time.Millisecond)
	tm.Add("check", 5*time.Millisecond)

	r := tm.Report()
	require.Len(t, r.Phases, 2)
	assert.Equal(t, "collect", r.Phases[0].Name)
	assert.Equal(t, "3 files", r.Phases[0].Note)
	assert.InDelta(t, 10.0, r.Phases[1].DurationMS, 0.001)
	assert.Less(t, r.TotalMS, 10.0)

	s := tm.Summary()
	assert.True(t, strings.HasPrefix(s, "timings:\n"))
	assert.Contains(t, s, "// cumulative")
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	tm.Add("y", time.Second)
	assert.Equal(t, Report{}, tm.Report())
}
