package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zowe/zss/internal/buildpipeline"
	"github.com/zowe/zss/internal/driver"
	"github.com/zowe/zss/internal/project"
	"github.com/zowe/zss/internal/ui"
)

type buildOutcome struct {
	results []driver.TargetResult
	err     error
}

// runBuildWithUI runs BuildAll in the background and renders its events
// until the build finishes.
func runBuildWithUI(ctx context.Context, title string, m *project.Manifest, opts driver.BuildOptions) ([]driver.TargetResult, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		results, err := driver.BuildAll(ctx, m, opts, buildpipeline.ChannelSink{Ch: events})
		outcomeCh <- buildOutcome{results: results, err: err}
		close(events)
	}()

	names := make([]string, 0, len(m.Targets))
	for _, t := range m.Targets {
		names = append(names, t.Name)
	}
	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so the build goroutine never blocks on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
