package aapt

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"respack/internal/diag"
)

// writeZip creates a zip at path with entries in the given order.
func writeZip(path string, names []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := zip.NewWriter(f)
	for _, name := range names {
		e, err := w.Create(name)
		if err != nil {
			return err
		}
		if _, err := e.Write([]byte("data:" + name)); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

func TestCompileDeps(t *testing.T) {
	outDir := t.TempDir()
	depA := filepath.Join(t.TempDir(), "lib_a")
	depB := filepath.Join(t.TempDir(), "lib_b")

	r := &scriptedRunner{handle: func(_ string, args []string) ([]byte, []byte, error) {
		// args: compile --dir <dep> -o <zip>
		out := args[len(args)-1]
		if err := writeZip(out, []string{"values_z.arsc.flat", "values_a.arsc.flat"}); err != nil {
			return nil, nil, err
		}
		return nil, []byte("ignoring configuration 'v21' for attribute/x\n"), nil
	}}

	partials, err := CompileDeps(context.Background(), r, "aapt2", []string{depA, depB}, outDir, 1)
	if err != nil {
		t.Fatalf("CompileDeps: %v", err)
	}
	want := []string{
		filepath.Join(outDir, "lib_a.zip"),
		filepath.Join(outDir, "lib_b.zip"),
	}
	if len(partials) != 2 || partials[0] != want[0] || partials[1] != want[1] {
		t.Fatalf("partials = %v, want %v", partials, want)
	}

	// Entries must come back sorted regardless of production order.
	names := zipNames(t, partials[0])
	if len(names) != 2 || names[0] != "values_a.arsc.flat" || names[1] != "values_z.arsc.flat" {
		t.Errorf("partial entries = %v, want sorted", names)
	}
}

func TestCompileDepsFailure(t *testing.T) {
	r := &scriptedRunner{handle: func(_ string, args []string) ([]byte, []byte, error) {
		return nil, []byte("error: invalid resource\n"), errors.New("exit status 1")
	}}
	_, err := CompileDeps(context.Background(), r, "aapt2", []string{t.TempDir()}, t.TempDir(), 1)
	var d *diag.Diagnostic
	if !errors.As(err, &d) || d.Code != diag.ToolCompileFailed {
		t.Fatalf("error = %v, want ToolCompileFailed", err)
	}
}
