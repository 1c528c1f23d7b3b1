// Package ledger records resource path renames so the original identity of
// every merged file can be recovered downstream.
//
// Each entry maps a file's final resident path back to its path in the
// original dependency archive. The consolidated ledger is newline-delimited
// text, one "Rename:<new>,<orig>" record per line, deduplicated and sorted
// for byte-identical output across runs.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"respack/internal/diag"
)

// Entry maps a renamed path back to its original relative path.
type Entry struct {
	NewPath      string
	OriginalPath string
}

func (e Entry) line() string {
	return fmt.Sprintf("Rename:%s,%s", e.NewPath, e.OriginalPath)
}

// Set accumulates rename entries for one packaging run. New paths are unique
// across the whole set; recording a second origin for the same new path is a
// bug in the calling transform, not something to paper over.
type Set struct {
	byNew map[string]string
}

func NewSet() *Set {
	return &Set{byNew: make(map[string]string)}
}

// Add records newPath -> originalPath. Re-adding the identical pair is a
// no-op (transforms with a documented "already exists, skip" rule re-observe
// their own renames); a conflicting pair is an error.
func (s *Set) Add(newPath, originalPath string) error {
	if prev, ok := s.byNew[newPath]; ok {
		if prev == originalPath {
			return nil
		}
		return diag.Errorf(diag.MergeLedgerCollision, newPath,
			"rename target already mapped to %q, refusing to remap to %q", prev, originalPath)
	}
	s.byNew[newPath] = originalPath
	return nil
}

// Merge folds other into s, with the same collision rules as Add.
func (s *Set) Merge(other *Set) error {
	if other == nil {
		return nil
	}
	for _, e := range other.Entries() {
		if err := s.Add(e.NewPath, e.OriginalPath); err != nil {
			return err
		}
	}
	return nil
}

func (s *Set) Len() int {
	return len(s.byNew)
}

// Lookup returns the original path recorded for newPath.
func (s *Set) Lookup(newPath string) (string, bool) {
	orig, ok := s.byNew[newPath]
	return orig, ok
}

// Entries returns the recorded renames sorted by new path.
func (s *Set) Entries() []Entry {
	out := make([]Entry, 0, len(s.byNew))
	for newPath, orig := range s.byNew {
		out = append(out, Entry{NewPath: newPath, OriginalPath: orig})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NewPath < out[j].NewPath })
	return out
}

// WriteConsolidated writes one merge ledger combining this run's entries
// with any sidecar ledger files shipped alongside the dependency archives.
// Sidecar lines are deduplicated by exact line equality; the output is
// sorted lexicographically. The written file is write-once per run.
func WriteConsolidated(path string, run *Set, sidecars []string) error {
	lines := make(map[string]bool)
	for _, sidecar := range sidecars {
		if err := readSidecar(sidecar, lines); err != nil {
			return err
		}
	}
	if run != nil {
		for _, e := range run.Entries() {
			lines[e.line()] = true
		}
	}
	sorted := make([]string, 0, len(lines))
	for line := range lines {
		sorted = append(sorted, line)
	}
	sort.Strings(sorted)

	var b strings.Builder
	for _, line := range sorted {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write merge ledger %q: %w", path, err)
	}
	return nil
}

// SidecarPath returns the conventional ledger sidecar location for a
// dependency archive: "<archive>.info".
func SidecarPath(archive string) string {
	return archive + ".info"
}

func readSidecar(path string, into map[string]bool) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Sidecars are optional; most dependencies never rename.
			return nil
		}
		return fmt.Errorf("failed to read ledger sidecar %q: %w", path, err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		into[line] = true
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read ledger sidecar %q: %w", path, err)
	}
	return nil
}
