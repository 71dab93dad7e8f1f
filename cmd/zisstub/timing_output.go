package main

import (
	"fmt"
	"io"
	"time"

	"github.com/zowe/zss/internal/buildpipeline"
)

// printStageTimings prints one line per target with its stage durations.
func printStageTimings(out io.Writer, target string, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	fmt.Fprintf(out, "%s:", target)
	for _, stage := range []buildpipeline.Stage{buildpipeline.StageOpen, buildpipeline.StageGenerate, buildpipeline.StagePublish} {
		if timings.Has(stage) {
			fmt.Fprintf(out, " %s %.1f ms", stage, toMillis(timings.Duration(stage)))
		}
	}
	fmt.Fprintf(out, " (total %.1f ms)\n", toMillis(timings.Sum(buildpipeline.StageOpen, buildpipeline.StageGenerate, buildpipeline.StagePublish)))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
