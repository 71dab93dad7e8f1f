package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zowe/zss/internal/buildpipeline"
	"github.com/zowe/zss/internal/observ"
	"github.com/zowe/zss/internal/project"
	"github.com/zowe/zss/internal/trace"
)

// BuildOptions tunes BuildAll.
type BuildOptions struct {
	Jobs           int  // parallel targets; <= 0 means GOMAXPROCS
	Lenient        bool // overrides [generator].strict when set
	Force          bool
	MaxDiagnostics int
	Cache          *DiskCache // used only when the manifest enables it
	Timer          *observ.Timer
}

// TargetResult pairs a manifest target with its generation outcome.
type TargetResult struct {
	Target  project.Target
	Result  *Result
	Err     error
	Elapsed time.Duration
}

// BuildAll generates every target of m in parallel. Each target reads the
// header on its own, so targets share no state. A failing target does not
// stop the others; the returned error joins all target errors.
func BuildAll(ctx context.Context, m *project.Manifest, opts BuildOptions, sink buildpipeline.ProgressSink) ([]TargetResult, error) {
	if sink == nil {
		sink = buildpipeline.NopSink{}
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)

	for _, t := range m.Targets {
		sink.OnEvent(buildpipeline.Event{Target: t.Name, Status: buildpipeline.StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	cache := opts.Cache
	if !m.Generator.Cache {
		cache = nil
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]TargetResult, len(m.Targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(m.Targets))))

	for i, t := range m.Targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = TargetResult{Target: t, Err: err}
				return err
			}
			span := trace.Begin(tracer, trace.ScopeTarget, "target:"+t.Name, parent)
			tctx := trace.WithSpan(gctx, span)
			sink.OnEvent(buildpipeline.Event{Target: t.Name, Stage: buildpipeline.StageGenerate, Status: buildpipeline.StatusWorking})

			start := time.Now()
			res, err := Generate(tctx, Request{
				Header:         m.Generator.Header,
				Encoding:       m.Generator.Encoding,
				Mode:           t.Mode,
				Dispatch:       t.Dispatch,
				Lenient:        opts.Lenient || !m.Generator.Strict,
				Output:         t.Output,
				MaxDiagnostics: opts.MaxDiagnostics,
				Cache:          cache,
				Force:          opts.Force,
				Timer:          opts.Timer,
			})
			elapsed := time.Since(start)
			results[i] = TargetResult{Target: t, Result: res, Err: err, Elapsed: elapsed}

			status := buildpipeline.StatusDone
			switch {
			case err != nil:
				status = buildpipeline.StatusError
			case res.UpToDate:
				status = buildpipeline.StatusUpToDate
			}
			sink.OnEvent(buildpipeline.Event{Target: t.Name, Stage: buildpipeline.StagePublish, Status: status, Err: err, Elapsed: elapsed})
			if err != nil {
				span.Fail(t.Output)
			} else {
				span.WithExtra("status", string(status)).End(t.Output)
			}
			// header problems belong to the target; only cancellation aborts the build
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("target %s: %w", r.Target.Name, r.Err))
		}
	}
	return results, errors.Join(errs...)
}
