package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"off", LevelOff, true},
		{"PHASE", LevelPhase, true},
		{"detail", LevelDetail, true},
		{"debug", LevelDebug, true},
		{"verbose", LevelOff, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLevelShouldEmit(t *testing.T) {
	if LevelOff.ShouldEmit(ScopeDriver) {
		t.Error("off emits driver")
	}
	if !LevelPhase.ShouldEmit(ScopePass) || LevelPhase.ShouldEmit(ScopeTarget) {
		t.Error("phase must stop at pass scope")
	}
	if !LevelDetail.ShouldEmit(ScopeTarget) || LevelDetail.ShouldEmit(ScopeEntry) {
		t.Error("detail must stop at target scope")
	}
	if !LevelDebug.ShouldEmit(ScopeEntry) {
		t.Error("debug must emit entries")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	root := Begin(tr, ScopeDriver, "asm", 0)
	pass := Begin(tr, ScopePass, "generate", root.ID())
	Point(tr, ScopeEntry, "entry", "FOO", pass.ID())
	pass.WithExtra("entries", "1").WithExtra("bound", "10").End("")
	root.End("ok")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "→ asm") {
		t.Errorf("begin line = %q", lines[0])
	}
	if !strings.HasSuffix(lines[2], "  ← generate {bound=10, entries=1}") {
		t.Errorf("pass end line = %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "← asm (ok)") {
		t.Errorf("end line = %q", lines[3])
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Begin(tr, ScopePass, "open", 7).End("")

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid ndjson %q: %v", line, err)
		}
		if ev["name"] != "open" || ev["scope"] != "pass" || ev["parent_id"] != float64(7) {
			t.Fatalf("event = %v", ev)
		}
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeEntry, name, "", 0)
	}
	snap := ring.Snapshot()
	if len(snap) != 3 || snap[0].Name != "c" || snap[2].Name != "e" {
		t.Fatalf("snapshot = %+v", snap)
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestNewErrorLevelUsesRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelError, Mode: ModeStream, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopePass, "generate", 0).End("")
	if buf.Len() != 0 {
		t.Fatalf("error level streamed: %q", buf.String())
	}
	ring, ok := Ring(tr)
	if !ok || len(ring.Snapshot()) != 2 {
		t.Fatalf("ring missing or empty")
	}
}

func TestNewBothFansOut(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()
	Begin(tr, ScopeDriver, "build", 0).End("")
	ring, ok := Ring(tr)
	if !ok || len(ring.Snapshot()) != 2 || buf.Len() == 0 {
		t.Fatalf("both mode must stream and buffer")
	}
}

func TestOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	span := Begin(tr, ScopeDriver, "x", 5)
	if span.ID() != 5 {
		t.Fatalf("disabled span must report parent, got %d", span.ID())
	}
	if span.End("") != 0 {
		t.Fatal("disabled span measured time")
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context must give Nop")
	}
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != tr {
		t.Fatal("tracer lost")
	}
	span := Begin(tr, ScopeDriver, "root", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() {
		t.Fatalf("CurrentSpan = %d, want %d", CurrentSpan(ctx), span.ID())
	}
}

func TestConfigResolveFormat(t *testing.T) {
	if (Config{OutputPath: "run.ndjson"}).ResolveFormat() != FormatNDJSON {
		t.Error("ndjson extension")
	}
	if (Config{OutputPath: "-"}).ResolveFormat() != FormatText {
		t.Error("stderr defaults to text")
	}
	if (Config{Format: FormatNDJSON}).ResolveFormat() != FormatNDJSON {
		t.Error("explicit format wins")
	}
}

func TestRingDumpFailureNamesFailedSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	root := Begin(ring, ScopeDriver, "zisstub build", 0)
	target := Begin(ring, ScopeTarget, "target:init", root.ID())
	pass := Begin(ring, ScopePass, "generate", target.ID())
	pass.Fail("duplicate symbol FOO")
	target.Fail("build/zisstubinit.c")
	Begin(ring, ScopeTarget, "target:r12", root.ID()).End("build/zisstubs.s")
	root.Fail("failed")

	failed := ring.Failed()
	if len(failed) != 3 || failed[0].Name != "generate" || failed[2].Scope != ScopeDriver {
		t.Fatalf("Failed = %+v", failed)
	}
	var buf bytes.Buffer
	if err := ring.DumpFailure(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	first, rest, _ := strings.Cut(buf.String(), "\n")
	want := "trace: last events before failure (failed in pass generate < target target:init < driver zisstub build):"
	if first != want {
		t.Fatalf("header = %q, want %q", first, want)
	}
	if strings.Count(rest, "\n") != len(ring.Snapshot()) {
		t.Fatalf("dump:\n%s", buf.String())
	}
	if !strings.Contains(rest, "duplicate symbol FOO") {
		t.Fatalf("dump lost the failure detail:\n%s", rest)
	}
}

func TestRingDumpFailureWithoutFailedSpans(t *testing.T) {
	ring := NewRingTracer(4, LevelPhase)
	Begin(ring, ScopePass, "open", 0).End("zisstubs.h")
	var buf bytes.Buffer
	if err := ring.DumpFailure(&buf, FormatNDJSON); err != nil {
		t.Fatal(err)
	}
	// NDJSON stays machine-readable: no header line
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line %q: %v", line, err)
		}
	}
	buf.Reset()
	if err := ring.DumpFailure(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "trace: last events before failure:\n") {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

type failingTracer struct {
	nopTracer
	err    error
	closed bool
}

func (f *failingTracer) Enabled() bool { return true }
func (f *failingTracer) Flush() error { return f.err }
func (f *failingTracer) Close() error {
	f.closed = true
	return f.err
}

func TestMultiTracerClosesEveryTracer(t *testing.T) {
	a := &failingTracer{err: errors.New("disk full")}
	b := &failingTracer{err: errors.New("broken pipe")}
	multi := NewMultiTracer(LevelPhase, a, nil, Nop, b)
	if len(multi.tracers) != 2 {
		t.Fatalf("tracers = %d, want nil and Nop dropped", len(multi.tracers))
	}
	err := multi.Close()
	if !a.closed || !b.closed {
		t.Fatal("Close stopped at the first error")
	}
	if !strings.Contains(err.Error(), "disk full") || !strings.Contains(err.Error(), "broken pipe") {
		t.Fatalf("Close = %v", err)
	}
	if NewMultiTracer(LevelPhase, nil, Nop).Enabled() {
		t.Fatal("empty multi tracer must be disabled")
	}
}
