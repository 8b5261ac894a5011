package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sift/internal/driver"
	"sift/internal/ui"
)

type analyzeOutcome struct {
	result *driver.Result
	err    error
}

// runAnalyzeWithUI runs the analysis behind a progress view. The view may
// quit early on ctrl+c; remaining events are drained so workers never block.
func runAnalyzeWithUI(ctx context.Context, in driver.Input, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		res, err := driver.Analyze(ctx, in, opts, driver.ChannelSink{Ch: events})
		outcomeCh <- analyzeOutcome{result: res, err: err}
		close(events)
	}()

	files := make([]string, len(in.Files))
	for i, f := range in.Files {
		files[i] = f.Path
	}
	model := ui.NewProgressModel("sift", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
