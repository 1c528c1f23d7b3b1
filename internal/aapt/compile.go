package aapt

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"respack/internal/diag"
	"respack/internal/tool"
)

// DefaultCompileJobs bounds the per-dependency compile pool.
const DefaultCompileJobs = 10

// CompileDeps compiles each dependency directory into its own partial zip
// under outDir and returns the partial paths in dependency order. The
// compiles are independent, so they fan out over a bounded pool; results
// land in per-index slots and the slice order never depends on scheduling.
//
// aapt2 writes partial zip entries in filesystem order, which varies across
// machines. Each partial is rewritten with its entries sorted by name so
// the link inputs, and therefore the link output, are reproducible.
func CompileDeps(ctx context.Context, r tool.Runner, binary string, depDirs []string, outDir string, jobs int) ([]string, error) {
	if jobs <= 0 {
		jobs = DefaultCompileJobs
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create partials dir: %w", err)
	}
	partials := make([]string, len(depDirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(depDirs), 1)))
	for i, dir := range depDirs {
		i, dir := i, dir
		g.Go(func() error {
			out := filepath.Join(outDir, filepath.Base(dir)+".zip")
			args := []string{"compile", "--dir", dir, "-o", out}
			_, stderr, err := r.Run(gctx, binary, args...)
			if err != nil {
				return diag.Wrap(diag.ToolCompileFailed, dir,
					tool.CommandError(binary, args, filterStderr(stderr), err))
			}
			if err := sortZipEntries(out); err != nil {
				return fmt.Errorf("failed to canonicalize %q: %w", out, err)
			}
			partials[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return partials, nil
}

// sortZipEntries rewrites the archive with entries ordered by name and
// timestamps zeroed. Compression is dropped; partials are link inputs, not
// shipped artifacts.
func sortZipEntries(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return err
	}

	files := make([]*zip.File, len(r.File))
	copy(files, r.File)
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	tmp, err := os.CreateTemp(filepath.Dir(path), ".partial-*")
	if err != nil {
		r.Close()
		return err
	}
	w := zip.NewWriter(tmp)
	for _, f := range files {
		hdr := &zip.FileHeader{Name: f.Name, Method: zip.Store}
		dst, err := w.CreateHeader(hdr)
		if err == nil {
			var src io.ReadCloser
			src, err = f.Open()
			if err == nil {
				_, err = io.Copy(dst, src)
				src.Close()
			}
		}
		if err != nil {
			w.Close()
			tmp.Close()
			os.Remove(tmp.Name())
			r.Close()
			return err
		}
	}
	r.Close()
	if err := w.Close(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
