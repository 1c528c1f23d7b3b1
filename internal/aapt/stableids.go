package aapt

import (
	"fmt"
	"os"
	"regexp"
)

// Emit-ids lines are "<package>:<type>/<name> = 0x<id>".
var stableIDPackage = regexp.MustCompile(`(?m)^.*?:`)

// RewriteStableIDs copies an emit-ids file produced by another target's
// link, substituting pkg for the original package prefix on every line.
// Linking against another package's stable IDs keeps resource IDs constant
// across the two targets, which incremental installers rely on.
func RewriteStableIDs(src, dst, pkg string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read stable ids %q: %w", src, err)
	}
	rewritten := stableIDPackage.ReplaceAll(data, []byte(pkg+":"))
	if err := os.WriteFile(dst, rewritten, 0o600); err != nil {
		return fmt.Errorf("failed to write stable ids %q: %w", dst, err)
	}
	return nil
}
