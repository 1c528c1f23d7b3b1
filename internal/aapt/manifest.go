package aapt

import (
	"fmt"
	"os"
	"strings"

	"respack/internal/diag"
)

// CheckManifest diffs the normalized manifest produced by the link against a
// checked-in expectation file. The result is a warning by default so churn
// in upstream manifests does not break every developer at once; strict mode
// turns it into a failure for the builders that gate on it.
//
// A nil return with ok=false never happens: either the manifests match
// (nil, true), differ (diagnostic, false), or reading failed (error, false).
func CheckManifest(actualPath, expectedPath string, strict bool) (*diag.Diagnostic, bool, error) {
	actual, err := os.ReadFile(actualPath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read manifest %q: %w", actualPath, err)
	}
	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		return nil, false, diag.Errorf(diag.InputMissingManifest, expectedPath,
			"manifest expectation file not readable")
	}

	delta := diffLines(string(expected), string(actual))
	if delta == "" {
		return nil, true, nil
	}
	if strict {
		d := diag.Errorf(diag.PolicyManifest, actualPath,
			"manifest does not match expectation %s", expectedPath)
		return d.WithNote(delta), false, nil
	}
	w := diag.Warningf(diag.PolicyManifest, actualPath,
		"manifest does not match expectation %s", expectedPath)
	return w.WithNote(delta), false, nil
}

// diffLines returns a minimal line-level delta, empty when equal. Lines only
// in expected are prefixed "-", lines only in actual "+". Order within each
// side is preserved; this is a presence diff, not an alignment diff.
func diffLines(expected, actual string) string {
	if expected == actual {
		return ""
	}
	expLines := strings.Split(expected, "\n")
	actLines := strings.Split(actual, "\n")
	expSet := make(map[string]int, len(expLines))
	for _, l := range expLines {
		expSet[l]++
	}
	actSet := make(map[string]int, len(actLines))
	for _, l := range actLines {
		actSet[l]++
	}

	var b strings.Builder
	for _, l := range expLines {
		if actSet[l] == 0 {
			b.WriteString("- " + l + "\n")
		}
	}
	for _, l := range actLines {
		if expSet[l] == 0 {
			b.WriteString("+ " + l + "\n")
		}
	}
	if b.Len() == 0 {
		// Same line multiset, different order or counts.
		b.WriteString("line ordering differs\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
