package main

import (
	"errors"
	"fmt"
	"io"

	"fortio.org/safecast"

	"github.com/zowe/zss/internal/diag"
	"github.com/zowe/zss/internal/diagfmt"
	"github.com/zowe/zss/internal/project"
	"github.com/zowe/zss/internal/source"
)

// reportDiagnostics renders bag to w. Warnings alone are dropped with --quiet.
func reportDiagnostics(w io.Writer, fs *source.FileSet, bag *diag.Bag, g globalOptions) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	if g.quiet && !bag.HasErrors() {
		return nil
	}
	bag.Sort()
	if g.diagFormat == "json" {
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeAuto,
			IncludeNotes:     true,
		})
	}
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     g.color,
		PathMode:  diagfmt.PathModeAuto,
		ShowNotes: true,
	})
	return nil
}

// failure turns a generation error into the command's return value.
// Errors already in the bag are reported, not repeated.
func failure(err error, bag *diag.Bag) error {
	if err == nil {
		return nil
	}
	if bag != nil && bag.HasErrors() {
		return errReported
	}
	return err
}

// reportManifestError renders a zisstub.toml problem as a diagnostic that
// points at the offending line when its position is known.
func reportManifestError(w io.Writer, err error, g globalOptions) error {
	var merr *project.ManifestError
	if !errors.As(err, &merr) {
		return err
	}
	fs := source.NewFileSet()
	bag := diag.NewBag(g.maxDiagnostics)
	span := source.Span{File: source.NoFile}
	if id, loadErr := fs.Load(merr.Path); loadErr == nil {
		line, convErr := safecast.Conv[uint32](merr.Line)
		if convErr != nil {
			return fmt.Errorf("%w (line %d)", err, merr.Line)
		}
		if line > 0 {
			span = fs.Get(id).LineSpan(line)
		} else {
			span = source.Span{File: id}
		}
	}
	msg := merr.Msg
	if span.File == source.NoFile {
		msg = merr.Error()
	}
	bag.Add(diag.NewError(merr.Code, span, msg))
	if rerr := reportDiagnostics(w, fs, bag, g); rerr != nil {
		return rerr
	}
	return errReported
}
