package source

import (
	"path/filepath"
	"testing"
)

func TestFileSetLoadNormalizes(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("v.h", []byte("a\nbb\nccc"), FileVirtual)
	f := fs.Get(id)
	if len(f.LineIdx) != 2 {
		t.Fatalf("LineIdx = %v", f.LineIdx)
	}
	start, end := fs.Resolve(Span{File: id, Start: 5, End: 7})
	if start != (LineCol{Line: 3, Col: 1}) || end != (LineCol{Line: 3, Col: 3}) {
		t.Fatalf("Resolve = %+v %+v", start, end)
	}
	if got := f.GetLine(2); got != "bb" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(9); got != "" {
		t.Fatalf("GetLine(9) = %q", got)
	}
	if got := f.LineSpan(2); got != (Span{File: id, Start: 2, End: 4}) {
		t.Fatalf("LineSpan(2) = %+v", got)
	}
	if got := f.LineSpan(3); got != (Span{File: id, Start: 5, End: 8}) {
		t.Fatalf("LineSpan(3) = %+v", got)
	}
	if got := f.LineSpan(7); !got.Empty() || got.Start != 8 {
		t.Fatalf("LineSpan(7) = %+v", got)
	}
	if fs.Get(FileID(42)) != nil {
		t.Fatalf("unknown id must resolve to nil")
	}
}

func TestFileSetAllocatesFreshIDs(t *testing.T) {
	fs := NewFileSet()
	first := fs.Add("dir/../h.h", []byte("1"), FileVirtual)
	second := fs.Add("h.h", []byte("2"), FileVirtual)
	if first == second {
		t.Fatalf("Add must allocate a fresh id")
	}
	if got := fs.Get(first).Path; got != "h.h" {
		t.Fatalf("Path = %q, want the cleaned path", got)
	}
}

func TestDisplayPath(t *testing.T) {
	base := t.TempDir()
	fs := NewFileSet()
	fs.SetBaseDir(base)
	id := fs.Add(filepath.Join(base, "h", "zisstubs.h"), []byte("x\n"), 0)
	if got := fs.DisplayPath(id); got != "h/zisstubs.h" {
		t.Fatalf("DisplayPath = %q", got)
	}
	virt := fs.Add("<stdin>", nil, FileVirtual)
	if got := fs.DisplayPath(virt); got != "<stdin>" {
		t.Fatalf("virtual DisplayPath = %q", got)
	}
}

func TestParseEncoding(t *testing.T) {
	cases := []struct {
		in   string
		want Encoding
		ok   bool
	}{
		{"", EncodingUTF8, true},
		{"UTF-8", EncodingUTF8, true},
		{"ebcdic", EncodingEBCDIC, true},
		{"IBM-1047", EncodingEBCDIC, true},
		{"latin1", EncodingUTF8, false},
	}
	for _, tc := range cases {
		got, err := ParseEncoding(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Errorf("ParseEncoding(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Fatalf("Cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 100}); got != a {
		t.Fatalf("cross-file Cover = %v", got)
	}
}

func TestNoFileNeverResolves(t *testing.T) {
	fs := NewFileSet()
	fs.Add("a.h", []byte("x\n"), FileVirtual)
	if fs.Get(NoFile) != nil || fs.DisplayPath(NoFile) != "" {
		t.Fatal("NoFile resolved to a file")
	}
}
