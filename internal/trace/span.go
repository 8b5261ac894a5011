package trace

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

func nextSeq() uint64 { return seqCounter.Add(1) }

// CacheOutcome is how the result cache answered for one file.
type CacheOutcome string

const (
	CacheOff   CacheOutcome = ""
	CacheHit   CacheOutcome = "hit"
	CacheMiss  CacheOutcome = "miss"
	CacheStale CacheOutcome = "stale"
	CacheError CacheOutcome = "error"
)

// Span times one phase of a run: the run, a worker, a file or a check.
// A nil Span ignores every call, which is what Start returns when the
// tracer does not record the span's scope.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	worker  int
	file    string
	scope   Scope
	name    string
	started time.Time
	cache   CacheOutcome
	extra   map[string]string
}

// Start begins a span below the span carried by ctx. The returned context
// carries the new span, so work started from it nests under it and keeps
// its worker and file.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	return start(ctx, scope, name, lineageOf(ctx))
}

// StartWorker begins the span of worker id. Events below it name worker
// id+1, leaving 0 for events outside any worker.
func StartWorker(ctx context.Context, id int) (context.Context, *Span) {
	l := lineageOf(ctx)
	l.worker = id + 1
	return start(ctx, ScopeWorker, "worker", l)
}

// StartFile begins the span of one analyzed file.
func StartFile(ctx context.Context, path string) (context.Context, *Span) {
	l := lineageOf(ctx)
	l.file = path
	return start(ctx, ScopeFile, "file", l)
}

func start(ctx context.Context, scope Scope, name string, l lineage) (context.Context, *Span) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return ctx, nil
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  l.span,
		worker:  l.worker,
		file:    l.file,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	s.emit(KindSpanBegin, s.started, "")
	l.span = s.id
	return withLineage(ctx, l), s
}

// End closes the span and returns its duration. detail is shown with the
// end event.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	s.emit(KindSpanEnd, now, detail)
	return now.Sub(s.started)
}

// Set records a key-value pair shown with the end event.
func (s *Span) Set(key, value string) *Span {
	if s == nil {
		return nil
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// SetInt is Set for a count.
func (s *Span) SetInt(key string, n int) *Span {
	return s.Set(key, strconv.Itoa(n))
}

// SetCache records how the result cache served the span's file.
func (s *Span) SetCache(outcome CacheOutcome) *Span {
	if s != nil {
		s.cache = outcome
	}
	return s
}

// ID returns the span ID, 0 for a nil span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

func (s *Span) emit(kind Kind, at time.Time, detail string) {
	ev := &Event{
		Time:     at,
		Seq:      nextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Worker:   s.worker,
		File:     s.file,
		Name:     s.name,
		Detail:   detail,
	}
	if kind == KindSpanEnd {
		ev.Elapsed = at.Sub(s.started)
		ev.Cache = s.cache
		ev.Extra = s.extra
	}
	s.tracer.Emit(ev)
}
