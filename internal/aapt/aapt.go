// Package aapt drives the external aapt2 binary: per-dependency compilation,
// the final link, optional convert and optimize passes, and the package
// identity checks on the linked archive. Every invocation goes through
// tool.Runner so tests never need the real binary.
package aapt

import (
	"regexp"
	"strings"
)

// aapt2 warns about resource configurations it resolves on its own; the
// warnings are noise at our call sites and are stripped before stderr is
// attached to a diagnostic.
var ignorableStderr = regexp.MustCompile(`ignoring configuration .* for (styleable|attribute)`)

// filterStderr drops the known-harmless warning lines, returning what
// remains.
func filterStderr(stderr []byte) []byte {
	var kept []string
	for _, line := range strings.Split(string(stderr), "\n") {
		if strings.TrimSpace(line) == "" || ignorableStderr.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return nil
	}
	return []byte(strings.Join(kept, "\n"))
}
