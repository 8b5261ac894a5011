package trace

import (
	"fmt"
	"io"
	"slices"
	"sync"
)

const defaultRingSize = 4096

// RingTracer keeps the most recent events of a run in memory, to be dumped
// when the run fails.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	total uint64 // events stored since creation
	level Level
}

// NewRingTracer returns a ring holding the last size events; size <= 0
// selects 4096.
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = defaultRingSize
	}
	return &RingTracer{buf: make([]Event, size), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	t.buf[t.total%uint64(len(t.buf))] = *ev
	t.total++
	t.mu.Unlock()
}

// Snapshot returns the kept events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	events, _ := t.snapshot()
	return events
}

func (t *RingTracer) snapshot() (events []Event, dropped uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	size := uint64(len(t.buf))
	if t.total <= size {
		return slices.Clone(t.buf[:t.total]), 0
	}
	head := t.total % size
	return append(slices.Clone(t.buf[head:]), t.buf[:head]...), t.total - size
}

// Dump writes the kept events to w. In text format a leading line counts
// the events that were overwritten.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events, dropped := t.snapshot()
	if dropped > 0 && format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "(%d earlier events dropped)\n", dropped); err != nil {
			return err
		}
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
