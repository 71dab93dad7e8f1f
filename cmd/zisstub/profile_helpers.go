package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zowe/zss/internal/prof"
)

// stopProfiling is replaced by setupProfiling and called once the command
// has finished, whatever its outcome.
var stopProfiling = func() error { return nil }

// setupProfiling inspects persistent profiling flags and enables the
// corresponding profilers.
func setupProfiling(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()

	cpuProfile, err := pf.GetString("cpu-profile")
	if err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := pf.GetString("mem-profile")
	if err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := pf.GetString("runtime-trace")
	if err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if cpuProfile == "" && memProfile == "" && tracePath == "" {
		return nil
	}

	session, err := prof.Start(prof.Paths{CPU: cpuProfile, Mem: memProfile, Trace: tracePath})
	if err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	stopProfiling = session.Stop
	return nil
}
