// Package tool runs external binaries behind a seam the tests can replace.
package tool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes one external command and returns its captured output.
// Implementations must not retry; a non-zero exit is fatal for the run.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// CommandError wraps a failed invocation with its trimmed stderr so callers
// can surface a useful diagnostic instead of "exit status 1".
func CommandError(name string, args []string, stderr []byte, err error) error {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return fmt.Errorf("%s: %w", name, err)
	}
	return fmt.Errorf("%s: %s: %w", name, msg, err)
}

// FormatCommand renders a command line for progress/debug output.
func FormatCommand(name string, args []string) string {
	return name + " " + strings.Join(args, " ")
}
