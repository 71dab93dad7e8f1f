package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/zowe/zss/internal/buildpipeline"
	"github.com/zowe/zss/internal/diag"
	"github.com/zowe/zss/internal/observ"
	"github.com/zowe/zss/internal/project"
	"github.com/zowe/zss/internal/source"
	"github.com/zowe/zss/internal/stubs"
	"github.com/zowe/zss/internal/trace"
)

// StdinName is the header argument that reads Request.Input.
const StdinName = "-"

var noSpan = source.Span{File: source.NoFile}

// Request describes one generation.
type Request struct {
	Header   string    // header path, or StdinName
	Input    io.Reader // read when Header is StdinName
	Encoding source.Encoding
	Mode     stubs.OutputMode
	Dispatch stubs.DispatchMode
	Lenient  bool

	Output string    // destination path; empty writes to Writer on success
	Writer io.Writer // defaults to io.Discard

	MaxDiagnostics int
	Cache          *DiskCache // nil disables the cache
	Force          bool       // regenerate even when the cache says up to date
	Timer          *observ.Timer
}

// Result describes what a generation did. It is returned even on failure
// so the caller can render Bag against FileSet.
type Result struct {
	FileSet  *source.FileSet
	Bag      *diag.Bag
	Entries  int
	Bound    int
	Digest   project.Digest // SHA-256 of the artifact
	UpToDate bool           // served from the cache, nothing written
	Timings  buildpipeline.Timings
}

func (req *Request) displayName() string {
	if req.Header == StdinName {
		return "<stdin>"
	}
	return req.Header
}

// Generate reads the header once and writes one artifact. Nothing is
// published unless the whole header is valid.
func Generate(ctx context.Context, req Request) (*Result, error) {
	res := &Result{FileSet: source.NewFileSet(), Bag: diag.NewBag(req.MaxDiagnostics)}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)

	// open
	openSpan := trace.Begin(tracer, trace.ScopePass, observ.PhaseOpen, parent)
	openIdx := req.Timer.Begin(observ.PhaseOpen)
	start := time.Now()
	key, useCache := cacheKeyFor(&req)
	if useCache && !req.Force {
		var payload DiskPayload
		if ok, err := req.Cache.Get(key, &payload); err == nil && ok && upToDate(&payload, req.Output) {
			res.UpToDate = true
			res.Entries = payload.Entries
			res.Bound = payload.Bound
			res.Digest = payload.OutputDigest
			res.Timings.Set(buildpipeline.StageOpen, time.Since(start))
			req.Timer.End(openIdx, "up to date")
			openSpan.WithExtra("cache", "hit").End(req.displayName())
			return res, nil
		}
	}
	lines, err := openHeader(&req, res.FileSet)
	res.Timings.Set(buildpipeline.StageOpen, time.Since(start))
	req.Timer.End(openIdx, req.displayName())
	if err != nil {
		openSpan.Fail(err.Error())
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, noSpan, err.Error()))
		return res, err
	}
	openSpan.End(req.displayName())

	// generate
	genSpan := trace.Begin(tracer, trace.ScopePass, observ.PhaseGenerate, parent)
	genIdx := req.Timer.Begin(observ.PhaseGenerate)
	start = time.Now()
	var art *artifact
	if req.Output != "" {
		if art, err = newFileArtifact(req.Output); err != nil {
			_ = lines.Close()
			req.Timer.End(genIdx, "")
			genSpan.Fail(err.Error())
			res.Bag.Add(diag.NewError(diag.IOWriteError, noSpan, err.Error()))
			return res, err
		}
	} else {
		w := req.Writer
		if w == nil {
			w = io.Discard
		}
		art = newWriterArtifact(w)
	}

	n, bound, err := emit(tracer, genSpan.ID(), &req, lines, art, res.Bag)
	res.Entries, res.Bound = n, bound
	res.Timings.Set(buildpipeline.StageGenerate, time.Since(start))
	req.Timer.End(genIdx, strconv.Itoa(n)+" entries")
	genSpan.WithExtra("entries", strconv.Itoa(n)).WithExtra("bound", strconv.Itoa(bound))
	if err != nil {
		art.Abort()
		genSpan.Fail(err.Error())
		var stubErr *stubs.Error
		switch {
		case errors.As(err, &stubErr):
			res.Bag.Add(stubErr.Diagnostic())
		case art.failed(err):
			res.Bag.Add(diag.NewError(diag.IOWriteError, noSpan, err.Error()))
		default:
			res.Bag.Add(diag.NewError(diag.IOLoadFileError, noSpan, err.Error()))
		}
		return res, fmt.Errorf("%s: %w", req.displayName(), err)
	}
	genSpan.End("")

	// publish
	pubSpan := trace.Begin(tracer, trace.ScopePass, observ.PhasePublish, parent)
	pubIdx := req.Timer.Begin(observ.PhasePublish)
	start = time.Now()
	err = art.Commit()
	res.Timings.Set(buildpipeline.StagePublish, time.Since(start))
	req.Timer.End(pubIdx, req.Output)
	if err != nil {
		pubSpan.Fail(err.Error())
		res.Bag.Add(diag.NewError(diag.IOWriteError, noSpan, err.Error()))
		return res, err
	}
	pubSpan.End(req.Output)
	res.Digest = art.Digest()

	if useCache {
		f := res.FileSet.Get(0)
		payload := &DiskPayload{
			Header:        req.Header,
			Output:        req.Output,
			Entries:       res.Entries,
			Bound:         res.Bound,
			HeaderHash:    project.Digest(f.Hash),
			OutputDigest:  res.Digest,
			GeneratedUnix: time.Now().Unix(),
		}
		if err := req.Cache.Put(key, payload); err != nil {
			res.Bag.Add(diag.New(diag.SevWarning, diag.IOWriteError, noSpan, "cache not updated: "+err.Error()))
		}
	}
	return res, nil
}

// emit runs the scanner into the artifact and always closes lines.
func emit(tracer trace.Tracer, span uint64, req *Request, lines *source.LineReader, art *artifact, bag *diag.Bag) (n, bound int, err error) {
	sc := stubs.NewScanner(lines, stubs.ScanOptions{
		Lenient:  req.Lenient,
		Reporter: diag.BagReporter{Bag: bag},
	})
	defer func() {
		if cerr := sc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	em, err := stubs.NewEmitter(art, req.Mode, req.Dispatch)
	if err != nil {
		return 0, 0, err
	}
	var onEntry func(stubs.Entry)
	if tracer.Level().ShouldEmit(trace.ScopeEntry) {
		onEntry = func(e stubs.Entry) {
			trace.Point(tracer, trace.ScopeEntry, e.Symbol, "index "+strconv.Itoa(e.Index), span)
		}
	}
	n, err = stubs.Generate(sc, em, onEntry)
	return n, sc.Table().Bound(), err
}

func openHeader(req *Request, fs *source.FileSet) (*source.LineReader, error) {
	if req.Header == StdinName {
		if req.Input == nil {
			return nil, errors.New("no input for <stdin>")
		}
		return fs.Reader("<stdin>", req.Input, req.Encoding), nil
	}
	return fs.Open(req.Header, req.Encoding)
}

// cacheKeyFor returns the cache key when the request can use the cache:
// a file header, a file output and an open cache.
func cacheKeyFor(req *Request) (project.Digest, bool) {
	if req.Cache == nil || req.Output == "" || req.Header == StdinName {
		return project.Digest{}, false
	}
	sum, err := source.HashFile(req.Header)
	if err != nil {
		// openHeader reports it
		return project.Digest{}, false
	}
	return CacheKey(project.Digest(sum), req.Mode, req.Dispatch, req.Encoding, req.Lenient, req.Output), true
}
