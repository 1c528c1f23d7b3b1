package aapt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"respack/internal/diag"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCheckManifest(t *testing.T) {
	const manifest = "<manifest package=\"org.example\">\n<application/>\n</manifest>\n"

	t.Run("match", func(t *testing.T) {
		actual := writeManifest(t, "actual.xml", manifest)
		expected := writeManifest(t, "expected.xml", manifest)
		d, ok, err := CheckManifest(actual, expected, true)
		if err != nil || !ok || d != nil {
			t.Fatalf("CheckManifest = %v, %v, %v, want nil, true, nil", d, ok, err)
		}
	})

	t.Run("mismatch is a warning by default", func(t *testing.T) {
		actual := writeManifest(t, "actual.xml", manifest)
		expected := writeManifest(t, "expected.xml", "<manifest package=\"org.other\"/>\n")
		d, ok, err := CheckManifest(actual, expected, false)
		if err != nil || ok {
			t.Fatalf("CheckManifest err=%v ok=%v", err, ok)
		}
		if d == nil || d.Severity != diag.SevWarning || d.Code != diag.PolicyManifest {
			t.Fatalf("diagnostic = %+v, want PolicyManifest warning", d)
		}
		if len(d.Notes) == 0 {
			t.Errorf("diagnostic carries no diff note")
		}
	})

	t.Run("strict upgrades to error", func(t *testing.T) {
		actual := writeManifest(t, "actual.xml", manifest)
		expected := writeManifest(t, "expected.xml", "<manifest/>\n")
		d, ok, err := CheckManifest(actual, expected, true)
		if err != nil || ok {
			t.Fatalf("CheckManifest err=%v ok=%v", err, ok)
		}
		if d == nil || d.Severity != diag.SevError {
			t.Fatalf("diagnostic = %+v, want error severity", d)
		}
	})

	t.Run("missing expectation file", func(t *testing.T) {
		actual := writeManifest(t, "actual.xml", manifest)
		_, _, err := CheckManifest(actual, filepath.Join(t.TempDir(), "nope.xml"), false)
		var d *diag.Diagnostic
		if !errors.As(err, &d) || d.Code != diag.InputMissingManifest {
			t.Fatalf("error = %v, want InputMissingManifest", err)
		}
	})
}
