package merge

import (
	"path/filepath"
	"strings"

	"respack/internal/ledger"
)

const (
	taiwanQualifier   = "zh-rTW"
	hongKongQualifier = "zh-rHK"
)

// DuplicateHongKong copies every Taiwanese resource into a Hong-Kong
// specific directory. The platform has no native zh-HK resources, so the
// runtime falls back to zh-TW content when the device locale is set to
// zh-HK; duplicating keeps that behavior after locale filtering.
//
// The copy is recorded in the ledger so the duplicated files trace back to
// their zh-rTW originals. The caller must have rejected configurations that
// also allow-list an HK locale explicitly.
func DuplicateHongKong(depDirs []string, led *ledger.Set) error {
	for _, dir := range depDirs {
		files, err := ListFiles(dir)
		if err != nil {
			return err
		}
		for _, rel := range files {
			if !strings.Contains(rel, taiwanQualifier) {
				continue
			}
			hkRel := strings.ReplaceAll(rel, taiwanQualifier, hongKongQualifier)
			src := filepath.Join(dir, filepath.FromSlash(rel))
			dst := filepath.Join(dir, filepath.FromSlash(hkRel))
			if err := copyFile(src, dst); err != nil {
				return err
			}
			if err := led.Add(hkRel, rel); err != nil {
				return err
			}
		}
	}
	return nil
}
