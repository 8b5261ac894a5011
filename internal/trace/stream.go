package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes each event to an io.Writer as it arrives. Output is
// buffered; driver-scope events and heartbeats flush it so a tail of the
// trace file follows the run.
type StreamTracer struct {
	mu     sync.Mutex
	out    *bufio.Writer
	closer io.Closer // set when the tracer owns the destination
	level  Level
	format Format
}

// NewStreamTracer returns a tracer writing to w. If w is an io.Closer other
// than a standard stream opened by the caller, Close closes it.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{out: bufio.NewWriter(w), level: level, format: format}
	if c, ok := w.(io.Closer); ok && !isStdStream(w) {
		t.closer = c
	}
	return t
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	// trace write errors never fail a run
	_, _ = t.out.Write(data)
	if ev.Scope == ScopeDriver {
		_ = t.out.Flush()
	}
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.Flush()
}

// Close flushes and, if the tracer owns its destination, closes it.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
