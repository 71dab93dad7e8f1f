package stubs

import (
	"errors"
	"fmt"

	"github.com/zowe/zss/internal/diag"
	"github.com/zowe/zss/internal/source"
)

var (
	ErrMalformed         = errors.New("malformed stub declaration")
	ErrBadBound          = errors.New("invalid MAX_ZIS_STUBS")
	ErrDuplicateSymbol   = errors.New("duplicate symbol")
	ErrDuplicateFunction = errors.New("duplicate function name")
	ErrBoundTooLow       = errors.New("MAX_ZIS_STUBS too low")
	ErrDuplicateIndex    = errors.New("duplicate index")
	ErrOffsetRange       = errors.New("slot offset out of range")

	// ErrUnknownDispatch and ErrUnknownOutput signal a caller bug, not bad input.
	ErrUnknownDispatch = errors.New("unknown dispatch mode")
	ErrUnknownOutput   = errors.New("unknown output mode")
)

// Kind identifies which header rule an Error violates.
type Kind uint8

const (
	KindMalformed Kind = iota + 1
	KindBadBound
	KindDuplicateSymbol
	KindDuplicateFunction
	KindBoundTooLow
	KindDuplicateIndex
	KindOffsetRange
)

// Error is a fatal header problem. It unwraps to the matching Err* sentinel.
type Error struct {
	Kind     Kind
	Span     source.Span // offending line
	Line     uint32
	Text     string // raw line, for malformed declarations
	Symbol   string
	Function string
	Index    int
	Bound    int

	// Prior points at the declaration the error relates to: the first
	// use of a duplicated name or index, or the bound in force.
	Prior     source.Span
	PriorNote string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMalformed:
		return fmt.Sprintf("malformed stub declaration '%s'", e.Text)
	case KindBadBound:
		return fmt.Sprintf("invalid MAX_ZIS_STUBS value in '%s'", e.Text)
	case KindDuplicateSymbol:
		return "duplicate symbol " + e.Symbol
	case KindDuplicateFunction:
		return "duplicate function name " + e.Function
	case KindBoundTooLow:
		return fmt.Sprintf("MAX_ZIS_STUBS %d is too low for index %d", e.Bound, e.Index)
	case KindDuplicateIndex:
		return fmt.Sprintf("duplicate index %d", e.Index)
	case KindOffsetRange:
		return fmt.Sprintf("index %d needs slot offset X'%X', beyond the displacement limit X'%X'", e.Index, e.Index*slotSize, maxDisplacement)
	default:
		return "stub header error"
	}
}

func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindMalformed:
		return ErrMalformed
	case KindBadBound:
		return ErrBadBound
	case KindDuplicateSymbol:
		return ErrDuplicateSymbol
	case KindDuplicateFunction:
		return ErrDuplicateFunction
	case KindBoundTooLow:
		return ErrBoundTooLow
	case KindDuplicateIndex:
		return ErrDuplicateIndex
	case KindOffsetRange:
		return ErrOffsetRange
	}
	return nil
}

// Code maps the error onto its diagnostic code.
func (e *Error) Code() diag.Code {
	switch e.Kind {
	case KindMalformed:
		return diag.HdrMalformedStub
	case KindBadBound:
		return diag.HdrBadBound
	case KindDuplicateSymbol:
		return diag.StbDuplicateSymbol
	case KindDuplicateFunction:
		return diag.StbDuplicateFunction
	case KindBoundTooLow:
		return diag.StbBoundTooLow
	case KindDuplicateIndex:
		return diag.StbDuplicateIndex
	case KindOffsetRange:
		return diag.EmtOffsetRange
	}
	return diag.UnknownCode
}

// Diagnostic converts the error into a diagnostic at its code's severity.
func (e *Error) Diagnostic() diag.Diagnostic {
	code := e.Code()
	d := diag.New(code.Severity(), code, e.Span, e.Error())
	if e.PriorNote != "" {
		d = d.WithNote(e.Prior, e.PriorNote)
	}
	return d
}
