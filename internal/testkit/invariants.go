package testkit

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"github.com/zowe/zss/internal/source"
	"github.com/zowe/zss/internal/stubs"
)

// CheckEntrySpans runs a minimal set of span invariants on scanned entries:
// 1) every span is non-empty and within the header content
// 2) every span covers exactly one line that declares the entry's symbol
// 3) spans strictly increase, matching header order
func CheckEntrySpans(entries []stubs.Entry, sf *source.File) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var prev source.Span
	for i, e := range entries {
		sp := e.Span
		if sp.File != sf.ID {
			return fmt.Errorf("%s: span file mismatch: got=%d want=%d", e.Symbol, sp.File, sf.ID)
		}
		if sp.End <= sp.Start {
			return fmt.Errorf("%s: empty span %v", e.Symbol, sp)
		}
		if sp.End > lenContent {
			return fmt.Errorf("%s: span end beyond content: %d > %d", e.Symbol, sp.End, lenContent)
		}
		text := string(sf.Content[sp.Start:sp.End])
		if strings.ContainsRune(text, '\n') {
			return fmt.Errorf("%s: span %v crosses a line break", e.Symbol, sp)
		}
		if !strings.Contains(text, "ZIS_STUB_"+e.Symbol) {
			return fmt.Errorf("%s: span %v does not cover its declaration: %q", e.Symbol, sp, text)
		}
		if i > 0 && sp.Start <= prev.Start {
			return fmt.Errorf("%s: span %v not after previous entry %v", e.Symbol, sp, prev)
		}
		prev = sp
	}
	return nil
}
