package aapt

import (
	"context"
	"testing"
)

// scriptedRunner dispatches to a behavior function and records every call.
type scriptedRunner struct {
	calls  [][]string
	handle func(name string, args []string) (stdout, stderr []byte, err error)
}

func (s *scriptedRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	if s.handle == nil {
		return nil, nil, nil
	}
	return s.handle(name, args)
}

func TestFilterStderr(t *testing.T) {
	in := []byte("warn: ignoring configuration 'sw600dp' for styleable/Toolbar\n" +
		"error: resource color/missing not found\n" +
		"note: ignoring configuration 'v21' for attribute/tint\n")
	got := string(filterStderr(in))
	want := "error: resource color/missing not found"
	if got != want {
		t.Errorf("filterStderr = %q, want %q", got, want)
	}

	if out := filterStderr([]byte("ignoring configuration 'x' for attribute/y\n")); out != nil {
		t.Errorf("all-noise stderr = %q, want nil", out)
	}
}
