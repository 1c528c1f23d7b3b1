package main

import (
	"fmt"
	"os"
	"strings"
)

type uiMode int

const (
	uiAuto uiMode = iota
	uiForced
	uiDisabled
)

// parseUIMode accepts auto, on/always, and off/never.
func parseUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiAuto, nil
	case "on", "always":
		return uiForced, nil
	case "off", "never":
		return uiDisabled, nil
	}
	return uiAuto, fmt.Errorf("invalid --ui value %q (expected auto, on, or off)", value)
}

// wantTUI resolves auto against whether stdout is a terminal.
func (m uiMode) wantTUI() bool {
	switch m {
	case uiForced:
		return true
	case uiDisabled:
		return false
	}
	return isTerminal(os.Stdout)
}
