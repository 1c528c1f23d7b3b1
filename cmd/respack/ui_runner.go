package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"respack/internal/pipeline"
	"respack/internal/ui"
)

type packOutcome struct {
	result pipeline.PackResult
	err    error
}

func runPackWithUI(ctx context.Context, title string, req *pipeline.PackRequest) (pipeline.PackResult, error) {
	if req == nil {
		return pipeline.PackResult{}, fmt.Errorf("missing pack request")
	}
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan packOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Pack(ctx, &reqCopy)
		outcomeCh <- packOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
