// Package merge implements the resource merge-and-normalize transforms: one
// ephemeral workspace per packaging run, a fixed transform sequence, and a
// rename ledger entry for every path that changes identity.
package merge

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"respack/internal/diag"
)

// ExtractDeps unpacks every dependency resource archive into its own
// subdirectory of depsDir and returns the subdirectories in input order.
// Each dependency is isolated so the transforms can treat (dir, rel-path)
// as a stable identity.
func ExtractDeps(archives []string, depsDir string) ([]string, error) {
	seen := make(map[string]string, len(archives))
	dirs := make([]string, 0, len(archives))
	for _, archive := range archives {
		name := strings.TrimSuffix(filepath.Base(archive), ".zip")
		if prev, ok := seen[name]; ok {
			return nil, diag.Errorf(diag.MergeWorkspaceConflict, archive,
				"dependency archive name collides with %q", prev)
		}
		seen[name] = archive
		dir := filepath.Join(depsDir, name)
		if err := extractZip(archive, dir); err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

func extractZip(archive, dir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		if os.IsNotExist(err) {
			return diag.Errorf(diag.InputMissingArchive, archive, "dependency archive not found")
		}
		return diag.Wrap(diag.InputBadArchive, archive, err)
	}
	defer r.Close()
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rel := filepath.FromSlash(f.Name)
		dst := filepath.Join(dir, rel)
		if !strings.HasPrefix(dst, filepath.Clean(dir)+string(os.PathSeparator)) {
			return diag.Errorf(diag.InputBadArchive, archive, "entry %q escapes the extraction root", f.Name)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return fmt.Errorf("failed to create %q: %w", filepath.Dir(dst), err)
		}
		if err := extractFile(f, dst); err != nil {
			return diag.Wrap(diag.InputBadArchive, archive, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dst string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ListFiles returns every regular file under root as a slash-separated
// path relative to root, sorted for deterministic traversal.
func ListFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	return os.Rename(src, dst)
}
