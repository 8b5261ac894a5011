package trace

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// Heartbeat wraps a tracer and emits a liveness event every interval. Each
// beat names the files whose spans are still open, so a stuck run shows
// which file it is stuck on.
type Heartbeat struct {
	Tracer
	interval time.Duration

	mu    sync.Mutex
	open  map[uint64]string
	beats int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartHeartbeat starts beating into t. It returns nil when t is disabled
// or interval is not positive.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := newHeartbeat(t, interval)
	go h.run()
	return h
}

func newHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	return &Heartbeat{
		Tracer:   t,
		interval: interval,
		open:     make(map[uint64]string),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Emit forwards ev, noting file spans as they open and close.
func (h *Heartbeat) Emit(ev *Event) {
	if ev.Scope == ScopeFile && ev.SpanID != 0 {
		h.mu.Lock()
		switch ev.Kind {
		case KindSpanBegin:
			h.open[ev.SpanID] = ev.File
		case KindSpanEnd:
			delete(h.open, ev.SpanID)
		}
		h.mu.Unlock()
	}
	h.Tracer.Emit(ev)
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.beat()
		case <-h.stop:
			return
		}
	}
}

func (h *Heartbeat) beat() {
	h.mu.Lock()
	h.beats++
	n := h.beats
	files := slices.Sorted(maps.Values(h.open))
	h.mu.Unlock()

	detail := fmt.Sprintf("#%d", n)
	if len(files) > 0 {
		detail += " open: " + strings.Join(files, ", ")
	}
	h.Tracer.Emit(&Event{
		Time:   time.Now(),
		Seq:    nextSeq(),
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		Name:   "heartbeat",
		Detail: detail,
	})
}

// Stop ends the beating. It may be called more than once, and on nil.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

// Close stops the heartbeat and closes the wrapped tracer.
func (h *Heartbeat) Close() error {
	h.Stop()
	return h.Tracer.Close()
}
