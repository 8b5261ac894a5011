package trace

import (
	"context"
	"time"
)

// Kind is what an event marks.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint     // an instant, such as a failed cache store
	KindHeartbeat // liveness beat, recorded at every level
)

// Scope is the granularity of an event, coarsest first.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // run, merge, unmatched reporting
	ScopeWorker                  // one coordinator worker
	ScopeFile                    // one analyzed file
	ScopeCheck                   // one check on one file
)

var (
	kindNames  = [...]string{"unknown", "begin", "end", "point", "heartbeat"}
	scopeNames = [...]string{"unknown", "driver", "worker", "file", "check"}
)

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // process-wide emission order
	Kind     Kind
	Scope    Scope
	SpanID   uint64 // 0 for points and heartbeats
	ParentID uint64 // enclosing span, 0 at the top
	Worker   int    // 1-based worker number, 0 outside workers
	File     string // analyzed file the event belongs to
	Name     string // "run", "worker", "file", a check name, ...
	Detail   string
	Elapsed  time.Duration // span duration, end events only
	Cache    CacheOutcome  // file spans, end events only
	Extra    map[string]string
}

// Point emits an instant event below the span carried by ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	l := lineageOf(ctx)
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      nextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: l.span,
		Worker:   l.worker,
		File:     l.file,
		Name:     name,
		Detail:   detail,
	})
}
