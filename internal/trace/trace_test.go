package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelShouldEmit(t *testing.T) {
	t.Parallel()
	assert.False(t, LevelOff.ShouldEmit(ScopeDriver))
	assert.True(t, LevelPhase.ShouldEmit(ScopeWorker))
	assert.False(t, LevelPhase.ShouldEmit(ScopeFile))
	assert.True(t, LevelDetail.ShouldEmit(ScopeFile))
	assert.False(t, LevelDetail.ShouldEmit(ScopeCheck))
	assert.True(t, LevelDebug.ShouldEmit(ScopeCheck))

	lvl, err := ParseLevel("DETAIL")
	require.NoError(t, err)
	assert.Equal(t, LevelDetail, lvl)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestStreamTracerNDJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)

	ctx, worker := StartWorker(ctx, 1)
	fctx, file := StartFile(ctx, "a.c")
	file.SetCache(CacheHit).SetInt("kept", 2)
	_, check := Start(fctx, ScopeCheck, "zerodiv")
	assert.Nil(t, check)
	file.End("")
	worker.End("")
	assert.Empty(t, buf.String())
	require.NoError(t, tr.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var end map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &end))
	assert.Equal(t, "end", end["kind"])
	assert.Equal(t, "file", end["scope"])
	assert.Equal(t, "a.c", end["file"])
	assert.Equal(t, float64(2), end["worker"])
	assert.Equal(t, float64(worker.ID()), end["parent_id"])
	assert.Equal(t, "hit", end["cache"])
	assert.Equal(t, map[string]any{"kept": "2"}, end["extra"])
}

func TestPointInheritsFileAndWorker(t *testing.T) {
	t.Parallel()
	ring := NewRingTracer(8, LevelDetail)
	ctx := WithTracer(context.Background(), ring)
	ctx, w := StartWorker(ctx, 0)
	fctx, f := StartFile(ctx, "src/b.c")
	Point(fctx, ScopeFile, "cache-store-failed", "disk full")
	f.End("")
	w.End("")

	events := ring.Snapshot()
	require.Len(t, events, 5)
	pt := events[2]
	assert.Equal(t, KindPoint, pt.Kind)
	assert.Equal(t, 1, pt.Worker)
	assert.Equal(t, "src/b.c", pt.File)
	assert.Equal(t, f.ID(), pt.ParentID)
	assert.Less(t, events[1].Seq, pt.Seq)

	out := string(FormatEvent(&pt, FormatText))
	assert.Contains(t, out, "• file:cache-store-failed w1 src/b.c (disk full)")
}

func TestTextFormatSortsExtra(t *testing.T) {
	t.Parallel()
	out := string(FormatEvent(&Event{
		Kind:   KindPoint,
		Scope:  ScopeFile,
		Name:   "cache",
		Detail: "miss",
		Extra:  map[string]string{"b": "2", "a": "1"},
	}, FormatText))
	assert.Contains(t, out, "• file:cache (miss) {a=1, b=2}")
}

func TestRingTracerWraps(t *testing.T) {
	t.Parallel()
	tr := NewRingTracer(2, LevelDebug)
	ctx := WithTracer(context.Background(), tr)
	for _, name := range []string{"a", "b", "c"} {
		Point(ctx, ScopeDriver, name, "")
	}
	events := tr.Snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].Name)
	assert.Equal(t, "c", events[1].Name)

	var buf bytes.Buffer
	require.NoError(t, tr.Dump(&buf, FormatText))
	assert.True(t, strings.HasPrefix(buf.String(), "(1 earlier events dropped)\n"))
	assert.Contains(t, buf.String(), "driver:c")
}

func TestMultiTracerFansOut(t *testing.T) {
	t.Parallel()
	a := NewRingTracer(8, LevelPhase)
	b := NewRingTracer(8, LevelPhase)
	m := NewMultiTracer(LevelPhase, a, b)
	Point(WithTracer(context.Background(), m), ScopeDriver, "run", "")
	assert.Len(t, a.Snapshot(), 1)
	assert.Len(t, b.Snapshot(), 1)
}

func TestContextDefaultsToNop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	assert.Equal(t, Nop, FromContext(ctx))
	same, span := Start(ctx, ScopeDriver, "run")
	assert.Nil(t, span)
	assert.Equal(t, ctx, same)
	assert.Zero(t, span.End(""))
	assert.Zero(t, span.ID())

	tr := NewRingTracer(4, LevelPhase)
	ctx = WithTracer(ctx, tr)
	assert.Equal(t, Tracer(tr), FromContext(ctx))

	// the file scope is finer than the level records
	_, file := StartFile(ctx, "a.c")
	assert.Nil(t, file)
	assert.Empty(t, tr.Snapshot())
}

func TestHeartbeatNamesOpenFiles(t *testing.T) {
	t.Parallel()
	ring := NewRingTracer(16, LevelDetail)
	hb := newHeartbeat(ring, time.Hour)
	ctx := WithTracer(context.Background(), hb)

	_, a := StartFile(ctx, "a.c")
	_, b := StartFile(ctx, "b.c")
	hb.beat()
	a.End("")
	hb.beat()
	b.End("")
	hb.beat()

	var beats []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == KindHeartbeat {
			beats = append(beats, ev.Detail)
		}
	}
	assert.Equal(t, []string{"#1 open: a.c, b.c", "#2 open: b.c", "#3"}, beats)
	assert.Same(t, ring, FindRing(hb))
}

func TestNewWithHeartbeat(t *testing.T) {
	t.Parallel()
	tr, err := New(Config{Level: LevelPhase, Mode: ModeRing, Heartbeat: time.Millisecond})
	require.NoError(t, err)
	hb, ok := tr.(*Heartbeat)
	require.True(t, ok)
	require.NotNil(t, FindRing(hb))
	require.NoError(t, tr.Close())
	hb.Stop()
}

func TestNewOffIsNop(t *testing.T) {
	t.Parallel()
	tr, err := New(Config{Level: LevelOff})
	require.NoError(t, err)
	assert.False(t, tr.Enabled())
}

func TestFindRing(t *testing.T) {
	t.Parallel()
	ring := NewRingTracer(4, LevelPhase)
	var buf bytes.Buffer
	m := NewMultiTracer(LevelPhase, NewStreamTracer(&buf, LevelPhase, FormatText), ring)
	assert.Same(t, ring, FindRing(m))
	assert.Same(t, ring, FindRing(ring))
	assert.Nil(t, FindRing(Nop))
}

func TestStreamFlushesOnDriverEvents(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelPhase, FormatText))

	_, run := Start(ctx, ScopeDriver, "run")
	assert.Contains(t, buf.String(), "→ driver:run")
	run.SetInt("files", 3).End("")
	assert.Contains(t, buf.String(), "← driver:run")
	assert.Contains(t, buf.String(), "{files=3}")
}
