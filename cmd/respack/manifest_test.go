package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifestFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "respack.toml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

const validManifest = `
[package]
name = "org.example.app"

[output]
dir = "out"
archive = "resources.ap_"
ledger = "merge.ledger"

[locales]
allow = ["en-US", "fr"]

[webp]
enabled = true
`

func TestLoadProjectConfig(t *testing.T) {
	cfg, err := loadProjectConfig(writeManifestFile(t, validManifest))
	if err != nil {
		t.Fatalf("loadProjectConfig: %v", err)
	}
	if cfg.Package.Name != "org.example.app" {
		t.Errorf("package name = %q", cfg.Package.Name)
	}
	if len(cfg.Locales.Allow) != 2 || cfg.Locales.Allow[0] != "en-US" {
		t.Errorf("locales = %v", cfg.Locales.Allow)
	}
	if !cfg.Webp.Enabled {
		t.Errorf("webp not enabled")
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing package",
			content: "[output]\narchive = \"a.ap_\"\n",
			wantErr: "missing [package]",
		},
		{
			name:    "missing package name",
			content: "[package]\nid = \"0x7e\"\n[output]\narchive = \"a.ap_\"\n",
			wantErr: "missing [package].name",
		},
		{
			name:    "missing output archive",
			content: "[package]\nname = \"a\"\n[output]\ndir = \"out\"\n",
			wantErr: "missing [output].archive",
		},
		{
			name:    "id and shared contradict",
			content: "[package]\nname = \"a\"\nid = \"0x7e\"\nshared = true\n[output]\narchive = \"a.ap_\"\n",
			wantErr: "mutually exclusive",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadProjectConfig(writeManifestFile(t, tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestOutputPathAnchoring(t *testing.T) {
	m := &projectManifest{
		Root:   filepath.FromSlash("/proj"),
		Config: projectConfig{Output: outputSection{Dir: "gen"}},
	}
	got := m.outputPath("resources.ap_")
	want := filepath.Join(filepath.FromSlash("/proj"), "gen", "resources.ap_")
	if got != want {
		t.Errorf("outputPath = %q, want %q", got, want)
	}
	if m.outputPath("") != "" {
		t.Errorf("empty rel should stay empty")
	}
}
