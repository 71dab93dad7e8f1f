package diag

import (
	"testing"

	"github.com/zowe/zss/internal/source"
)

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		HdrMalformedStub:   "HDR1001",
		StbDuplicateSymbol: "STB2001",
		EmtOffsetRange:     "EMT3001",
		IOWriteError:       "IO4002",
		PrjBadManifest:     "PRJ5001",
		UnknownCode:        "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if got := StbBoundTooLow.String(); got != "[STB2003]: MAX_ZIS_STUBS too low" {
		t.Errorf("String() = %q", got)
	}
}

func TestCodeSeverity(t *testing.T) {
	cases := map[Code]Severity{
		HdrSkippedStub:     SevWarning,
		HdrLongSymbol:      SevWarning,
		HdrMalformedStub:   SevError,
		StbDuplicateSymbol: SevError,
		EmtOffsetRange:     SevError,
		PrjOutputConflict:  SevError,
		StbInfo:            SevInfo,
		PrjInfo:            SevInfo,
		UnknownCode:        SevError,
	}
	for code, want := range cases {
		if got := code.Severity(); got != want {
			t.Errorf("%s.Severity() = %s, want %s", code.ID(), got, want)
		}
	}
	if got := Severity(9).String(); got != "UNKNOWN" {
		t.Errorf("Severity(9) = %q", got)
	}
}

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(New(SevWarning, HdrSkippedStub, source.Span{Start: 20}, "b")) {
		t.Fatal("first Add rejected")
	}
	bag.Add(NewError(StbDuplicateSymbol, source.Span{Start: 5}, "a"))
	if bag.Add(NewError(StbDuplicateIndex, source.Span{Start: 1}, "c")) {
		t.Fatal("Add past limit accepted")
	}
	bag.Sort()
	if bag.Items()[0].Message != "a" || !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatalf("items = %+v", bag.Items())
	}

	other := NewBag(0)
	other.Add(NewError(StbDuplicateSymbol, source.Span{Start: 5}, "a"))
	bag.Merge(other)
	if bag.Len() != 3 {
		t.Fatalf("Merge: len = %d", bag.Len())
	}
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("Dedup: len = %d", bag.Len())
	}
}

func TestReportBuilder(t *testing.T) {
	bag := NewBag(0)
	r := BagReporter{Bag: bag}
	Report(r, HdrLongSymbol, source.Span{}, "long").
		WithNote(source.Span{Start: 1}, "here").
		Emit()
	if bag.Len() != 1 || len(bag.Items()[0].Notes) != 1 || bag.Items()[0].Severity != SevWarning {
		t.Fatalf("items = %+v", bag.Items())
	}
	// nop reporter swallows everything
	Report(NopReporter{}, StbDuplicateIndex, source.Span{}, "x").Emit()
}

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("zisstubs.h", []byte("#define MAX_ZIS_STUBS 2\n#define ZIS_STUB_A 1 /* a */\n#define ZIS_STUB_A 2 /* b */\n"), source.FileVirtual)
	second := source.Span{File: id, Start: 24, End: 52}
	third := source.Span{File: id, Start: 53, End: 81}

	diags := []Diagnostic{
		NewError(StbDuplicateSymbol, third, "duplicate symbol A").WithNote(second, "first declared here"),
		New(SevWarning, HdrSkippedStub, source.Span{File: id, Start: 0, End: 5}, "line\r\nbreak"),
	}
	want := "warning HDR1002 zisstubs.h:1:1 line break\n" +
		"error STB2001 zisstubs.h:3:1 duplicate symbol A"
	if got := FormatShortDiagnostics(diags, fs, false); got != want {
		t.Fatalf("without notes:\nwant:\n%s\ngot:\n%s", want, got)
	}

	want = "warning HDR1002 zisstubs.h:1:1 line break\n" +
		"note STB2001 zisstubs.h:2:1 first declared here\n" +
		"error STB2001 zisstubs.h:3:1 duplicate symbol A"
	if got := FormatShortDiagnostics(diags, fs, true); got != want {
		t.Fatalf("with notes:\nwant:\n%s\ngot:\n%s", want, got)
	}
	if got := FormatShortDiagnostics(nil, fs, true); got != "" {
		t.Fatalf("empty input = %q", got)
	}
}
