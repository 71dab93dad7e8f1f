package trace

import (
	"io"
	"strings"
	"sync"
)

// RingTracer keeps the last N events in memory (circular buffer).
type RingTracer struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	level    Level
}

// NewRingTracer creates a new RingTracer with specified capacity.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 1024
	}
	return &RingTracer{
		events:   make([]Event, capacity),
		capacity: capacity,
		level:    level,
	}
}

// Emit adds an event to the ring buffer.
func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.events[t.head] = *ev
	t.head = (t.head + 1) % t.capacity
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns a copy of all stored events in chronological order.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		result := make([]Event, t.head)
		copy(result, t.events[:t.head])
		return result
	}

	result := make([]Event, t.capacity)
	copy(result, t.events[t.head:])
	copy(result[t.capacity-t.head:], t.events[:t.head])
	return result
}

// Dump writes all events to the provided writer in the specified format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	return writeEvents(w, t.Snapshot(), format)
}

// Failed returns the end events of spans closed with Span.Fail, innermost
// first. Spans evicted from the ring are not reported.
func (t *RingTracer) Failed() []Event {
	var out []Event
	for _, ev := range t.Snapshot() {
		if ev.Failed() {
			out = append(out, ev)
		}
	}
	return out
}

// DumpFailure writes a header naming the failed spans, such as the target and
// pass a build stopped in, followed by every buffered event.
func (t *RingTracer) DumpFailure(w io.Writer, format Format) error {
	events := t.Snapshot()
	var where []string
	for i := range events {
		if events[i].Failed() {
			where = append(where, events[i].Scope.String()+" "+events[i].Name)
		}
	}
	header := "trace: last events before failure"
	if len(where) > 0 {
		header += " (failed in " + strings.Join(where, " < ") + ")"
	}
	if format != FormatNDJSON {
		if _, err := io.WriteString(w, header+":\n"); err != nil {
			return err
		}
	}
	return writeEvents(w, events, format)
}

func writeEvents(w io.Writer, events []Event, format Format) error {
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

// Flush is a no-op for RingTracer since everything is in memory.
func (t *RingTracer) Flush() error {
	return nil
}

// Close is a no-op for RingTracer.
func (t *RingTracer) Close() error {
	return nil
}

// Level returns the current tracing level.
func (t *RingTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *RingTracer) Enabled() bool {
	return t.level > LevelOff
}
