package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersionDefaults(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if !strings.Contains(Version, ".") {
		t.Errorf("Version %q is not dotted", Version)
	}
}

func TestVersionOverride(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	}()

	// Simulates build-time ldflags.
	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2026-01-15T10:30:00Z"

	if Version != "1.2.3" || GitCommit != "abc123def456" || BuildDate != "2026-01-15T10:30:00Z" {
		t.Errorf("override failed: %q %q %q", Version, GitCommit, BuildDate)
	}
}

func TestPretty(t *testing.T) {
	origNoColor := color.NoColor
	color.NoColor = true
	origVersion := Version
	defer func() {
		color.NoColor = origNoColor
		Version = origVersion
	}()

	Version = "1.4.2-dev"
	if got := Pretty(); got != "1.4.2-dev" {
		t.Errorf("Pretty() = %q, want %q", got, "1.4.2-dev")
	}
	Version = ""
	if got := Pretty(); got != "dev" {
		t.Errorf("Pretty() with empty version = %q, want %q", got, "dev")
	}
	Version = "snapshot"
	if got := Pretty(); got != "snapshot" {
		t.Errorf("Pretty() with non-triplet version = %q, want %q", got, "snapshot")
	}
}
