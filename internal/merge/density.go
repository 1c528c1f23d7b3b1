package merge

import (
	"os"
	"path/filepath"
	"strings"

	"respack/internal/diag"
	"respack/internal/ledger"
)

// Image extensions eligible for the mdpi bucket migration.
var migratableExts = map[string]bool{
	".png":  true,
	".webp": true,
}

// MigrateMdpi moves raster images from drawable-*-mdpi-* directories into
// the analogous directory without the density qualifier. mdpi is the
// baseline density, so a density-agnostic bucket serves the same pixels to
// every older platform that mishandles qualified mdpi directories. This is
// a compatibility rule for the one legacy bucket, not general density
// collapsing.
//
// A destination file that already exists means an upstream invariant was
// violated (two transforms produced the same migrated path) and fails the
// run.
func MigrateMdpi(depDir string, led *ledger.Set) error {
	entries, err := os.ReadDir(depDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		comps := strings.Split(entry.Name(), "-")
		if comps[0] != "drawable" || !contains(comps, "mdpi") {
			continue
		}
		dstComps := make([]string, 0, len(comps)-1)
		for _, c := range comps {
			if c != "mdpi" {
				dstComps = append(dstComps, c)
			}
		}
		dstDir := strings.Join(dstComps, "-")
		srcPath := filepath.Join(depDir, entry.Name())
		files, err := os.ReadDir(srcPath)
		if err != nil {
			return err
		}
		for _, f := range files {
			if f.IsDir() || !migratableExts[strings.ToLower(filepath.Ext(f.Name()))] {
				continue
			}
			srcRel := entry.Name() + "/" + f.Name()
			dstRel := dstDir + "/" + f.Name()
			dst := filepath.Join(depDir, dstDir, f.Name())
			if _, err := os.Stat(dst); err == nil {
				return diag.Errorf(diag.MergeDensityCollision, dstRel,
					"migration target already exists for %s", srcRel)
			}
			if err := moveFile(filepath.Join(srcPath, f.Name()), dst); err != nil {
				return err
			}
			if err := led.Add(dstRel, srcRel); err != nil {
				return err
			}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
