package merge

import (
	"os"
	"path/filepath"
	"strings"

	"respack/internal/diag"
	"respack/internal/ledger"
	"respack/internal/locale"
	"respack/internal/respath"
)

// NormalizeLocaleDirs rewrites locale-qualified string resource directories
// to their canonical platform qualifiers and records every move in the
// ledger.
//
// Older platform releases only support two-letter codes, sometimes obsolete
// ones, so dependencies ship a mix of spellings for the same locale. The
// rewrite rules live in internal/locale; this pass only applies them:
//
//   - unsupported qualifiers are left untouched (not an error: the
//     directory simply is not a locale we govern),
//   - a destination that already exists is skipped (some libraries provide
//     both values-nb/ and values-no/ with identical content),
//   - a rename that resolves to its own source is a logic error and fails
//     the run.
//
// Running the pass twice on an already-normalized tree is a no-op.
func NormalizeLocaleDirs(depDirs []string, led *ledger.Set) error {
	for _, dir := range depDirs {
		files, err := ListFiles(dir)
		if err != nil {
			return err
		}
		for _, rel := range files {
			loc, ok := respath.StringsLocale(rel)
			if !ok {
				continue
			}
			normalized, ok := locale.Normalize(loc)
			if !ok || normalized == loc {
				continue
			}
			rel2 := strings.Replace(rel, "values-"+loc, "values-"+normalized, 1)
			if rel2 == rel {
				return diag.Errorf(diag.ConfigSelfRename, rel,
					"could not substitute locale %s for %s", loc, normalized)
			}
			src := filepath.Join(dir, filepath.FromSlash(rel))
			dst := filepath.Join(dir, filepath.FromSlash(rel2))
			if _, err := os.Stat(dst); err == nil {
				continue
			}
			if err := moveFile(src, dst); err != nil {
				return err
			}
			if err := led.Add(rel2, rel); err != nil {
				return err
			}
		}
	}
	return nil
}
