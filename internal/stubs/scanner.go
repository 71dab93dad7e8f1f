package stubs

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/zowe/zss/internal/diag"
	"github.com/zowe/zss/internal/source"
)

// labelWidth is the HLASM name field the emitters truncate symbols to.
const labelWidth = 8

// LineSource is a one-shot sequence of header lines. Next returns io.EOF
// at the end. *source.LineReader implements it.
type LineSource interface {
	Next() (source.Line, error)
	Close() error
}

// ScanOptions tunes a Scanner.
type ScanOptions struct {
	// Lenient skips malformed stub declarations with a warning instead of
	// failing the run.
	Lenient bool
	// Reporter receives warnings. Fatal problems are returned, not reported.
	Reporter diag.Reporter
	// OnBound is called for every MAX_ZIS_STUBS line.
	OnBound func(n int, line source.Line)
}

// Scanner turns a LineSource into validated entries, one per Next call.
type Scanner struct {
	src   LineSource
	opts  ScanOptions
	table *Table
	lines uint32
	err   error
}

// NewScanner wraps src. The caller must Close the scanner.
func NewScanner(src LineSource, opts ScanOptions) *Scanner {
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	return &Scanner{
		src:   src,
		opts:  opts,
		table: NewTable(),
	}
}

// Table exposes the accumulated state, e.g. for the final bound.
func (s *Scanner) Table() *Table {
	return s.table
}

// Lines returns how many lines have been consumed.
func (s *Scanner) Lines() uint32 {
	return s.lines
}

// Next returns the next admitted entry, io.EOF after the last line, or the
// first fatal error. Errors are sticky.
func (s *Scanner) Next() (Entry, error) {
	if s.err != nil {
		return Entry{}, s.err
	}
	for {
		line, err := s.src.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				err = fmt.Errorf("read header: %w", err)
			}
			s.err = err
			return Entry{}, err
		}
		s.lines++

		decl := Match(line.Text)
		switch decl.Kind {
		case DeclNone:
			continue

		case DeclBound:
			if decl.BoundErr != nil {
				return Entry{}, s.fail(&Error{Kind: KindBadBound}, line)
			}
			s.table.SetBound(decl.Bound, line.Span)
			if s.opts.OnBound != nil {
				s.opts.OnBound(decl.Bound, line)
			}
			continue

		case DeclMalformed:
			if !s.opts.Lenient {
				return Entry{}, s.fail(&Error{Kind: KindMalformed}, line)
			}
			diag.Report(s.opts.Reporter, diag.HdrSkippedStub, line.Span,
				fmt.Sprintf("skipping malformed stub declaration '%s'", line.Text)).Emit()
			continue

		case DeclStub:
			entry := Entry{
				Symbol:   decl.Symbol,
				Index:    decl.Index,
				Function: decl.Function,
				Mapped:   decl.Mapped,
				Span:     line.Span,
			}
			if err := s.table.Admit(entry); err != nil {
				var stubErr *Error
				if errors.As(err, &stubErr) {
					return Entry{}, s.fail(stubErr, line)
				}
				s.err = err
				return Entry{}, err
			}
			if utf8.RuneCountInString(entry.Symbol) > labelWidth {
				diag.Report(s.opts.Reporter, diag.HdrLongSymbol, line.Span,
					fmt.Sprintf("symbol %s is longer than %d characters and will be truncated", entry.Symbol, labelWidth)).Emit()
			}
			return entry, nil
		}
	}
}

func (s *Scanner) fail(e *Error, line source.Line) error {
	e.Span = line.Span
	e.Line = line.Num
	e.Text = line.Text
	s.err = e
	return e
}

// Close releases the line source.
func (s *Scanner) Close() error {
	return s.src.Close()
}
