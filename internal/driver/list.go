package driver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zowe/zss/internal/diag"
	"github.com/zowe/zss/internal/source"
	"github.com/zowe/zss/internal/stubs"
	"github.com/zowe/zss/internal/trace"
)

// ListResult is the validated stub table of one header.
type ListResult struct {
	FileSet *source.FileSet
	Bag     *diag.Bag
	Entries []stubs.Entry
	Bound   int
}

// List validates the header like Generate does but collects the entries
// instead of emitting them. Mode, Dispatch, Output and Cache are ignored.
func List(ctx context.Context, req Request) (*ListResult, error) {
	res := &ListResult{FileSet: source.NewFileSet(), Bag: diag.NewBag(req.MaxDiagnostics)}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "list", trace.CurrentSpan(ctx))
	defer span.End(req.displayName())

	lines, err := openHeader(&req, res.FileSet)
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, noSpan, err.Error()))
		return res, err
	}
	sc := stubs.NewScanner(lines, stubs.ScanOptions{
		Lenient:  req.Lenient,
		Reporter: diag.BagReporter{Bag: res.Bag},
	})
	defer sc.Close()

	for {
		e, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var stubErr *stubs.Error
			if errors.As(err, &stubErr) {
				res.Bag.Add(stubErr.Diagnostic())
			} else {
				res.Bag.Add(diag.NewError(diag.IOLoadFileError, noSpan, err.Error()))
			}
			return res, fmt.Errorf("%s: %w", req.displayName(), err)
		}
		res.Entries = append(res.Entries, e)
	}
	res.Bound = sc.Table().Bound()
	return res, nil
}
