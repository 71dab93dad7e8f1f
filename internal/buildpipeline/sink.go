package buildpipeline

import (
	"fmt"
	"io"
	"sync"
	"time"
)

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

// LineSink prints one line per finished target. Used when the progress
// view is off.
type LineSink struct {
	mu sync.Mutex
	W  io.Writer
}

func (s *LineSink) OnEvent(evt Event) {
	if s == nil || s.W == nil || evt.Target == "" || !evt.Status.Finished() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if evt.Err != nil {
		fmt.Fprintf(s.W, "%-10s %s: %v\n", evt.Status, evt.Target, evt.Err)
		return
	}
	fmt.Fprintf(s.W, "%-10s %s (%s)\n", evt.Status, evt.Target, evt.Elapsed.Round(10*time.Microsecond))
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}
