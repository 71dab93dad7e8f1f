package stubs

import (
	"github.com/zowe/zss/internal/source"
)

// Table accumulates what one pass has seen so far. It is created fresh for
// every run and never shared.
type Table struct {
	maxStubs  int
	boundSpan source.Span
	boundSeen bool

	symbols   map[string]source.Span
	functions map[string]source.Span
	indices   map[int]source.Span
	admitted  int
}

// NewTable returns an empty table with a bound of 0.
func NewTable() *Table {
	return &Table{
		symbols:   make(map[string]source.Span),
		functions: make(map[string]source.Span),
		indices:   make(map[int]source.Span),
	}
}

// SetBound records a MAX_ZIS_STUBS value. The last one wins.
func (t *Table) SetBound(n int, at source.Span) {
	t.maxStubs = n
	t.boundSpan = at
	t.boundSeen = true
}

// Bound returns the MAX_ZIS_STUBS value currently in force.
func (t *Table) Bound() int {
	return t.maxStubs
}

// Len returns the number of admitted entries.
func (t *Table) Len() int {
	return t.admitted
}

// Admit validates e against everything seen so far and records it.
// Checks run in a fixed order: symbol, function name, bound, index.
func (t *Table) Admit(e Entry) error {
	if prior, dup := t.symbols[e.Symbol]; dup {
		return &Error{Kind: KindDuplicateSymbol, Span: e.Span, Symbol: e.Symbol, Prior: prior, PriorNote: "first declared here"}
	}
	t.symbols[e.Symbol] = e.Span

	if prior, dup := t.functions[e.Function]; dup {
		return &Error{Kind: KindDuplicateFunction, Span: e.Span, Function: e.Function, Prior: prior, PriorNote: "first declared here"}
	}
	t.functions[e.Function] = e.Span

	if e.Index+1 > t.maxStubs {
		err := &Error{Kind: KindBoundTooLow, Span: e.Span, Index: e.Index, Bound: t.maxStubs}
		if t.boundSeen {
			err.Prior = t.boundSpan
			err.PriorNote = "MAX_ZIS_STUBS declared here"
		}
		return err
	}

	if prior, dup := t.indices[e.Index]; dup {
		return &Error{Kind: KindDuplicateIndex, Span: e.Span, Index: e.Index, Prior: prior, PriorNote: "first declared here"}
	}
	t.indices[e.Index] = e.Span

	t.admitted++
	return nil
}
