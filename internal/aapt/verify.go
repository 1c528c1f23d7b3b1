package aapt

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"fortio.org/safecast"

	"respack/internal/diag"
	"respack/internal/tool"
)

const (
	// DefaultPackageID is the application package ID space.
	DefaultPackageID uint8 = 0x7f
	// SharedPackageID is what shared libraries link as; the platform
	// assigns the real ID at install time.
	SharedPackageID uint8 = 0x00
)

// IdentityPolicy decides which package ID the linked archive must report.
type IdentityPolicy struct {
	// ExplicitID is a "0xNN" override.
	ExplicitID string
	// PackageName and IDTable resolve an ID by name. A non-empty table is
	// authoritative, even over ExplicitID; a name absent from it is fatal.
	PackageName string
	IDTable     map[string]uint8
	// SharedResources switches the default from 0x7f to 0x00.
	SharedResources bool
}

// Resolve returns the package ID the policy expects.
func (p IdentityPolicy) Resolve() (uint8, error) {
	if len(p.IDTable) > 0 {
		id, ok := p.IDTable[p.PackageName]
		if !ok {
			return 0, diag.Errorf(diag.ConfigMissingKey, p.PackageName,
				"package name not present in the id table")
		}
		return id, nil
	}
	if p.ExplicitID != "" {
		v, err := strconv.ParseUint(p.ExplicitID, 0, 64)
		if err != nil {
			return 0, diag.Errorf(diag.ConfigBadValue, p.ExplicitID, "invalid package id")
		}
		id, err := safecast.Convert[uint8](v)
		if err != nil {
			return 0, diag.Errorf(diag.ConfigBadValue, p.ExplicitID, "package id out of range")
		}
		return id, nil
	}
	if p.SharedResources {
		return SharedPackageID, nil
	}
	return DefaultPackageID, nil
}

var dumpPackageID = regexp.MustCompile(`Package name=\S+ id=0x([0-9a-fA-F]{2})`)

// ExtractPackageID reads the package ID the linked archive actually carries,
// via aapt2 dump.
func ExtractPackageID(ctx context.Context, r tool.Runner, binary, archive string) (uint8, error) {
	args := []string{"dump", "resources", archive}
	stdout, stderr, err := r.Run(ctx, binary, args...)
	if err != nil {
		return 0, diag.Wrap(diag.ToolDumpFailed, archive,
			tool.CommandError(binary, args, filterStderr(stderr), err))
	}
	m := dumpPackageID.FindSubmatch(stdout)
	if m == nil {
		return 0, diag.Errorf(diag.ToolDumpFailed, archive,
			"no package id in dump output")
	}
	v, err := strconv.ParseUint(string(m[1]), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("failed to parse package id %q: %w", m[1], err)
	}
	return uint8(v), nil
}

// VerifyPackageID compares the archive's reported package ID against the
// policy expectation. A mismatch means the archive must not ship.
func VerifyPackageID(ctx context.Context, r tool.Runner, binary, archive string, policy IdentityPolicy) error {
	want, err := policy.Resolve()
	if err != nil {
		return err
	}
	got, err := ExtractPackageID(ctx, r, binary, archive)
	if err != nil {
		return err
	}
	if got != want {
		return diag.Errorf(diag.PolicyPackageID, archive,
			"linked package id 0x%02x, expected 0x%02x", got, want)
	}
	return nil
}
