package main

import (
	"errors"

	"github.com/spf13/pflag"

	"respack/internal/diag"
)

// The manifest supplies defaults; a flag the user actually set wins.

func stringFlagOr(flags *pflag.FlagSet, name, fallback string) string {
	if flags.Changed(name) {
		v, _ := flags.GetString(name)
		return v
	}
	return fallback
}

func stringsFlagOr(flags *pflag.FlagSet, name string, fallback []string) []string {
	if flags.Changed(name) {
		v, _ := flags.GetStringSlice(name)
		return v
	}
	return fallback
}

func boolFlagOr(flags *pflag.FlagSet, name string, fallback bool) bool {
	if flags.Changed(name) {
		v, _ := flags.GetBool(name)
		return v
	}
	return fallback
}

func intFlagOr(flags *pflag.FlagSet, name string, fallback int) int {
	if flags.Changed(name) {
		v, _ := flags.GetInt(name)
		return v
	}
	return fallback
}

// pathFlagOr resolves an output path: explicit flag as given, manifest value
// anchored at the manifest's output dir.
func pathFlagOr(flags *pflag.FlagSet, manifest *projectManifest, name, fallback string) string {
	if flags.Changed(name) {
		v, _ := flags.GetString(name)
		return v
	}
	return manifest.outputPath(fallback)
}

func errAsDiagnostic(err error) (*diag.Diagnostic, bool) {
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
