package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/zowe/zss/internal/buildpipeline"
	"github.com/zowe/zss/internal/diag"
	"github.com/zowe/zss/internal/observ"
	"github.com/zowe/zss/internal/project"
	"github.com/zowe/zss/internal/source"
	"github.com/zowe/zss/internal/stubs"
	"github.com/zowe/zss/internal/testkit"
	"github.com/zowe/zss/internal/trace"
)

const goodHeader = `#ifndef ZIS_ZISSTUBS_H_
#define ZIS_ZISSTUBS_H_
#define MAX_ZIS_STUBS 10
#define ZIS_STUB_FOO 1 /* fooImpl */
#define ZIS_STUB_BAR 2 /* barImpl mapped */
#endif
`

const dupHeader = `#define MAX_ZIS_STUBS 10
#define ZIS_STUB_FOO 1 /* fooImpl */
#define ZIS_STUB_FOO 2 /* otherImpl */
`

func writeFile(t *testing.T, path, data string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestGenerateToWriter(t *testing.T) {
	header := writeFile(t, filepath.Join(t.TempDir(), "zisstubs.h"), goodHeader)
	var out bytes.Buffer
	timer := observ.NewTimer()
	res, err := Generate(context.Background(), Request{
		Header: header,
		Mode:   stubs.OutputInit,
		Writer: &out,
		Timer:  timer,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Entries != 2 || res.Bound != 10 || res.Bag.Len() != 0 {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(out.String(), "    stubVector[ZIS_STUB_FOO     ] = (void*)fooImpl;\n    stubVector[ZIS_STUB_BAR     ] = (void*)barImpl;\n") {
		t.Fatalf("output:\n%s", out.String())
	}
	if !res.Timings.Has(buildpipeline.StageOpen) || !res.Timings.Has(buildpipeline.StagePublish) {
		t.Fatal("stage timings not recorded")
	}
	phases := timer.Report().Phases
	if len(phases) != 3 || phases[0].Name != observ.PhaseOpen || phases[2].Name != observ.PhasePublish {
		t.Fatalf("phases = %+v", phases)
	}
}

func TestGenerateFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	header := writeFile(t, filepath.Join(dir, "zisstubs.h"), dupHeader)
	var out bytes.Buffer
	res, err := Generate(context.Background(), Request{Header: header, Mode: stubs.OutputASM, Dispatch: stubs.DispatchR12, Writer: &out})
	if !errors.Is(err, stubs.ErrDuplicateSymbol) {
		t.Fatalf("got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("partial output leaked:\n%s", out.String())
	}
	want := "note STB2001 zisstubs.h:2:1 first declared here\nerror STB2001 zisstubs.h:3:1 duplicate symbol FOO"
	res.FileSet.SetBaseDir(dir)
	if got := diag.FormatShortDiagnostics(res.Bag.Items(), res.FileSet, true); got != want {
		t.Fatalf("diagnostics:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestGenerateOutputIsAtomic(t *testing.T) {
	dir := t.TempDir()
	out := writeFile(t, filepath.Join(dir, "build", "zisstubs.s"), "previous\n")
	bad := writeFile(t, filepath.Join(dir, "bad.h"), dupHeader)
	if _, err := Generate(context.Background(), Request{Header: bad, Mode: stubs.OutputASM, Dispatch: stubs.DispatchZVTE, Output: out}); err == nil {
		t.Fatal("expected failure")
	}
	if got := readFile(t, out); got != "previous\n" {
		t.Fatalf("failed run replaced output: %q", got)
	}
	entries, err := os.ReadDir(filepath.Dir(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}

	good := writeFile(t, filepath.Join(dir, "good.h"), goodHeader)
	res, err := Generate(context.Background(), Request{Header: good, Mode: stubs.OutputASM, Dispatch: stubs.DispatchZVTE, Output: out})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	text := readFile(t, out)
	if !strings.HasPrefix(text, "         TITLE 'ZISSTUBS'\n") || !strings.HasSuffix(text, "         END\n") {
		t.Fatalf("artifact:\n%s", text)
	}
	sum, err := source.HashFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if project.Digest(sum) != res.Digest {
		t.Fatal("Result.Digest does not match the file")
	}
}

func TestGenerateMissingHeader(t *testing.T) {
	res, err := Generate(context.Background(), Request{Header: filepath.Join(t.TempDir(), "nope.h"), Mode: stubs.OutputInit})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v", err)
	}
	if res.Bag.Len() != 1 || res.Bag.Items()[0].Code != diag.IOLoadFileError {
		t.Fatalf("bag = %+v", res.Bag.Items())
	}
}

func TestGenerateStdinEBCDIC(t *testing.T) {
	raw, err := charmap.CodePage1047.NewEncoder().String(goodHeader)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	res, err := Generate(context.Background(), Request{
		Header:   StdinName,
		Input:    strings.NewReader(raw),
		Encoding: source.EncodingEBCDIC,
		Mode:     stubs.OutputInit,
		Writer:   &out,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Entries != 2 || !strings.Contains(out.String(), "(void*)barImpl;") {
		t.Fatalf("entries=%d output:\n%s", res.Entries, out.String())
	}
}

func TestGenerateLenientWarns(t *testing.T) {
	header := writeFile(t, filepath.Join(t.TempDir(), "zisstubs.h"), "#define MAX_ZIS_STUBS 4\n#define ZIS_STUB_FOO 1\n#define ZIS_STUB_BAR 2 /* barImpl */\n")
	res, err := Generate(context.Background(), Request{Header: header, Mode: stubs.OutputInit, Lenient: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Entries != 1 || !res.Bag.HasWarnings() || res.Bag.HasErrors() {
		t.Fatalf("result = %+v bag = %+v", res, res.Bag.Items())
	}
}

func TestGenerateTracesPhases(t *testing.T) {
	header := writeFile(t, filepath.Join(t.TempDir(), "zisstubs.h"), goodHeader)
	var buf bytes.Buffer
	ctx := trace.WithTracer(context.Background(), trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatText))
	if _, err := Generate(ctx, Request{Header: header, Mode: stubs.OutputInit}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"open", "generate", "publish", "FOO (index 1)", "entries=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateMarksFailedPass(t *testing.T) {
	header := writeFile(t, filepath.Join(t.TempDir(), "zisstubs.h"), dupHeader)
	ring := trace.NewRingTracer(64, trace.LevelError)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := Generate(ctx, Request{Header: header, Mode: stubs.OutputInit}); err == nil {
		t.Fatal("duplicate header accepted")
	}
	failed := ring.Failed()
	if len(failed) != 1 || failed[0].Name != "generate" || failed[0].Scope != trace.ScopePass {
		t.Fatalf("Failed = %+v", failed)
	}
	if !strings.Contains(failed[0].Detail, "FOO") {
		t.Fatalf("detail = %q", failed[0].Detail)
	}
}

func TestGenerateUsesCache(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	header := writeFile(t, filepath.Join(dir, "zisstubs.h"), goodHeader)
	out := filepath.Join(dir, "out", "zisstubs.s")
	req := Request{Header: header, Mode: stubs.OutputASM, Dispatch: stubs.DispatchR12, Output: out, Cache: cache}

	first, err := Generate(context.Background(), req)
	if err != nil || first.UpToDate {
		t.Fatalf("first run: %+v, %v", first, err)
	}
	second, err := Generate(context.Background(), req)
	if err != nil || !second.UpToDate || second.Entries != 2 || second.Digest != first.Digest {
		t.Fatalf("second run: %+v, %v", second, err)
	}

	// a hand-edited artifact is regenerated
	writeFile(t, out, "edited\n")
	third, err := Generate(context.Background(), req)
	if err != nil || third.UpToDate {
		t.Fatalf("edited artifact: %+v, %v", third, err)
	}

	req.Force = true
	forced, err := Generate(context.Background(), req)
	if err != nil || forced.UpToDate {
		t.Fatalf("forced run: %+v, %v", forced, err)
	}

	// a different dispatch mode is a different record
	req.Force = false
	req.Dispatch = stubs.DispatchZVTE
	zvte, err := Generate(context.Background(), req)
	if err != nil || zvte.UpToDate {
		t.Fatalf("zvte run: %+v, %v", zvte, err)
	}
}

func TestDiskCacheRoundTripAndDrop(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "c"))
	if err != nil {
		t.Fatal(err)
	}
	key := project.StringDigest("k")
	if ok, err := cache.Get(key, &DiskPayload{}); ok || err != nil {
		t.Fatalf("empty cache Get = %v, %v", ok, err)
	}
	if err := cache.Put(key, &DiskPayload{Target: "r12", Entries: 7}); err != nil {
		t.Fatal(err)
	}
	var got DiskPayload
	if ok, err := cache.Get(key, &got); !ok || err != nil || got.Entries != 7 || got.Schema != diskCacheSchemaVersion {
		t.Fatalf("Get = %v, %v, %+v", ok, err, got)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := cache.Get(key, &got); ok {
		t.Fatal("record survived DropAll")
	}
}

func TestOpenDiskCacheHonoursXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)
	cache, err := OpenDiskCache("zisstub")
	if err != nil {
		t.Fatal(err)
	}
	if cache.Dir() != filepath.Join(base, "zisstub") {
		t.Fatalf("Dir = %q", cache.Dir())
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []buildpipeline.Event
}

func (s *recordingSink) OnEvent(ev buildpipeline.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) final(target string) buildpipeline.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last buildpipeline.Status
	for _, ev := range s.events {
		if ev.Target == target {
			last = ev.Status
		}
	}
	return last
}

func TestBuildAll(t *testing.T) {
	dir := t.TempDir()
	header := writeFile(t, filepath.Join(dir, "h", "zisstubs.h"), goodHeader)
	m := &project.Manifest{
		Root:      dir,
		Generator: project.Generator{Header: header, Strict: true, Cache: true},
		Targets: []project.Target{
			{Name: "r12", Mode: stubs.OutputASM, Dispatch: stubs.DispatchR12, Output: filepath.Join(dir, "build", "r12.s")},
			{Name: "zvte", Mode: stubs.OutputASM, Dispatch: stubs.DispatchZVTE, Output: filepath.Join(dir, "build", "zvte.s")},
			{Name: "init", Mode: stubs.OutputInit, Output: filepath.Join(dir, "build", "init.c")},
		},
	}
	cache, err := OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{}
	results, err := BuildAll(context.Background(), m, BuildOptions{Jobs: 2, Cache: cache}, sink)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for i, r := range results {
		if r.Target.Name != m.Targets[i].Name || r.Err != nil || r.Result.Entries != 2 {
			t.Errorf("result %d = %+v", i, r)
		}
		if sink.final(r.Target.Name) != buildpipeline.StatusDone {
			t.Errorf("%s final status = %s", r.Target.Name, sink.final(r.Target.Name))
		}
	}
	if !strings.Contains(readFile(t, m.Targets[1].Output), "ZIS STUB VECTOR") {
		t.Error("zvte target not built with zvte dispatch")
	}

	sink = &recordingSink{}
	if _, err := BuildAll(context.Background(), m, BuildOptions{Cache: cache}, sink); err != nil {
		t.Fatalf("second BuildAll: %v", err)
	}
	if sink.final("init") != buildpipeline.StatusUpToDate {
		t.Fatalf("second build status = %s", sink.final("init"))
	}
}

func TestBuildAllReportsEveryFailure(t *testing.T) {
	dir := t.TempDir()
	header := writeFile(t, filepath.Join(dir, "zisstubs.h"), dupHeader)
	m := &project.Manifest{
		Generator: project.Generator{Header: header, Strict: true},
		Targets: []project.Target{
			{Name: "a", Mode: stubs.OutputInit, Output: filepath.Join(dir, "a.c")},
			{Name: "b", Mode: stubs.OutputInit, Output: filepath.Join(dir, "b.c")},
		},
	}
	sink := &recordingSink{}
	results, err := BuildAll(context.Background(), m, BuildOptions{}, sink)
	if !errors.Is(err, stubs.ErrDuplicateSymbol) {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "target a:") || !strings.Contains(err.Error(), "target b:") {
		t.Fatalf("error = %v", err)
	}
	for _, r := range results {
		if r.Result == nil || !r.Result.Bag.HasErrors() {
			t.Errorf("%s: missing diagnostics", r.Target.Name)
		}
		if sink.final(r.Target.Name) != buildpipeline.StatusError {
			t.Errorf("%s final status = %s", r.Target.Name, sink.final(r.Target.Name))
		}
	}
}

func TestListCollectsEntries(t *testing.T) {
	header := writeFile(t, filepath.Join(t.TempDir(), "zisstubs.h"), goodHeader)
	res, err := List(context.Background(), Request{Header: header})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Bound != 10 || len(res.Entries) != 2 || res.Entries[1].Symbol != "BAR" || !res.Entries[1].Mapped {
		t.Fatalf("result = %+v", res)
	}
	if err := testkit.CheckEntrySpans(res.Entries, res.FileSet.Get(0)); err != nil {
		t.Fatal(err)
	}
}
