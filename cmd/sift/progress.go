package main

import (
	"fmt"
	"io"
	"sync"

	"sift/internal/driver"
)

// lineSink prints one line per file start and, for multi-file runs, a
// running completion count.
type lineSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *lineSink) OnEvent(ev driver.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Kind {
	case driver.EventChecking:
		fmt.Fprintf(s.w, "Checking %s ...\n", ev.File)
	case driver.EventDone, driver.EventCached:
		if ev.Total > 1 {
			fmt.Fprintf(s.w, "%d/%d files checked %d%% done\n", ev.Completed, ev.Total, ev.Completed*100/ev.Total)
		}
	}
}
