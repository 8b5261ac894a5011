package driver

import "time"

// EventKind says what happened to a file.
type EventKind uint8

const (
	EventQueued   EventKind = iota + 1 // file accepted for analysis
	EventChecking                      // a worker started on the file
	EventDone                          // the file was analyzed
	EventCached                        // the file was served from the result cache
)

func (k EventKind) String() string {
	switch k {
	case EventQueued:
		return "queued"
	case EventChecking:
		return "checking"
	case EventDone:
		return "done"
	case EventCached:
		return "cached"
	default:
		return "unknown"
	}
}

// Event reports progress on one file.
type Event struct {
	Kind EventKind
	File string
	// Index is the file's position in the sorted input.
	Index int
	// Completed counts files finished so far, including this one, for
	// EventDone and EventCached.
	Completed int
	Total     int
	Elapsed   time.Duration
}

// Sink receives progress events. OnEvent is called from worker goroutines
// and must be safe for concurrent use.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) { f(evt) }

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
