package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zowe/zss/internal/buildpipeline"
	"github.com/zowe/zss/internal/driver"
	"github.com/zowe/zss/internal/observ"
	"github.com/zowe/zss/internal/project"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Generate every target listed in zisstub.toml",
		Long: `Find zisstub.toml in dir or one of its parents and generate each
[[target]] it lists. Targets run in parallel; a failing target does not
stop the others.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
	cmd.Flags().Bool("force", false, "regenerate targets the cache reports as up to date")
	cmd.Flags().Int("jobs", 0, "max parallel targets (0=auto)")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) (err error) {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	dir := "."
	if len(args) > 0 && args[0] != "" {
		dir = args[0]
	}
	m, ok, err := project.LoadFrom(dir)
	if err != nil {
		return reportManifestError(cmd.ErrOrStderr(), err, g)
	}
	if !ok {
		return fmt.Errorf("no %s found in %s or any parent directory", project.ManifestName, dir)
	}
	if g.encodingSet {
		m.Generator.Encoding = g.encoding
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()

	opts := driver.BuildOptions{
		Jobs:           jobs,
		Lenient:        g.lenient,
		Force:          force,
		MaxDiagnostics: g.maxDiagnostics,
	}
	if g.timings {
		opts.Timer = observ.NewTimer()
	}
	if m.Generator.Cache {
		cache, cacheErr := driver.OpenDiskCache("zisstub")
		if cacheErr != nil && !g.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: generation cache disabled: %v\n", cacheErr)
		}
		opts.Cache = cache
	}

	var (
		results  []driver.TargetResult
		buildErr error
	)
	switch {
	case g.quiet:
		results, buildErr = driver.BuildAll(cmd.Context(), m, opts, buildpipeline.NopSink{})
	case shouldUseTUI(mode):
		results, buildErr = runBuildWithUI(cmd.Context(), "zisstub build", m, opts)
	default:
		results, buildErr = driver.BuildAll(cmd.Context(), m, opts, &buildpipeline.LineSink{W: cmd.OutOrStdout()})
	}

	reported := false
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		if err := reportDiagnostics(cmd.ErrOrStderr(), r.Result.FileSet, r.Result.Bag, g); err != nil {
			return err
		}
		reported = reported || r.Result.Bag.HasErrors()
	}
	if g.timings {
		for _, r := range results {
			if r.Result != nil {
				printStageTimings(cmd.ErrOrStderr(), r.Target.Name, r.Result.Timings)
			}
		}
		fmt.Fprint(cmd.ErrOrStderr(), opts.Timer.Summary())
	}

	if buildErr == nil {
		return nil
	}
	if errors.Is(buildErr, context.Canceled) || !reported {
		return buildErr
	}
	return errReported
}
