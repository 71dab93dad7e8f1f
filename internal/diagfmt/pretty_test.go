package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/zowe/zss/internal/diag"
	"github.com/zowe/zss/internal/source"
)

const header = "#define MAX_ZIS_STUBS 4\n#define ZIS_STUB_FOO 1 /* fooImpl */\n#define ZIS_STUB_FOO 2 /* barImpl */\n"

func duplicateBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	fs.SetBaseDir("/home/user/zss")
	id := fs.Add("/home/user/zss/h/zisstubs.h", []byte(header), 0)
	// line 2 starts at 24, line 3 at 61
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.StbDuplicateSymbol,
		source.Span{File: id, Start: 61, End: 97}, "duplicate symbol FOO").
		WithNote(source.Span{File: id, Start: 24, End: 60}, "first declared here"))
	return bag, fs
}

func TestPrettyPlain(t *testing.T) {
	bag, fs := duplicateBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true})

	want := strings.Join([]string{
		"h/zisstubs.h:3:1: ERROR STB2001: duplicate symbol FOO",
		"3 | #define ZIS_STUB_FOO 2 /* barImpl */",
		"  | ^" + strings.Repeat("~", 35),
		"  note: h/zisstubs.h:2:1: first declared here",
		"2 | #define ZIS_STUB_FOO 1 /* fooImpl */",
		"  | ^" + strings.Repeat("~", 35),
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("pretty mismatch\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestPrettyPathModes(t *testing.T) {
	bag, fs := duplicateBag(t)
	tests := []struct {
		mode     PathMode
		contains string
	}{
		{PathModeAbsolute, "/home/user/zss/h/zisstubs.h:3:1"},
		{PathModeRelative, "h/zisstubs.h:3:1"},
		{PathModeBasename, "zisstubs.h:3:1"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
		if !strings.HasPrefix(buf.String(), tt.contains) {
			t.Errorf("mode %d: got %q", tt.mode, buf.String())
		}
		if strings.Contains(buf.String(), "note:") {
			t.Errorf("notes shown without ShowNotes")
		}
	}
}

func TestPrettyContextAndColor(t *testing.T) {
	bag, fs := duplicateBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, Color: true})
	out := buf.String()
	if !strings.Contains(out, "2 |") || !strings.Contains(out, "3 |") {
		t.Fatalf("context line missing:\n%s", out)
	}
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("expected ANSI escapes:\n%s", out)
	}
}

func TestJSON(t *testing.T) {
	bag, fs := duplicateBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true, PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "STB2001" || d.Location.File != "zisstubs.h" || d.Location.StartLine != 3 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.StartLine != 2 {
		t.Fatalf("notes = %+v", d.Notes)
	}

	buf.Reset()
	if err := JSON(&buf, bag, fs, JSONOpts{Max: 1}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "start_line") || strings.Contains(buf.String(), "notes") {
		t.Fatalf("positions or notes leaked:\n%s", buf.String())
	}
}

func TestPrettyWithoutLocation(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: source.NoFile}, "open h/zisstubs.h: no such file or directory"))
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	if got, want := buf.String(), "ERROR IO4001: open h/zisstubs.h: no such file or directory\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
