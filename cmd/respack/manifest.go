package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package packageSection `toml:"package"`
	Locales localesSection `toml:"locales"`
	Filter  filterSection  `toml:"filter"`
	Webp    webpSection    `toml:"webp"`
	Sdk     sdkSection     `toml:"sdk"`
	Output  outputSection  `toml:"output"`
}

type packageSection struct {
	Name    string            `toml:"name"`
	ID      string            `toml:"id"`
	IDTable map[string]string `toml:"id_table"`
	Shared  bool              `toml:"shared"`
}

type localesSection struct {
	Allow         []string `toml:"allow"`
	Shared        []string `toml:"shared"`
	SharedSymbols string   `toml:"shared_symbols"`
	HongKong      bool     `toml:"hong_kong"`
}

type filterSection struct {
	Blacklist  string   `toml:"blacklist"`
	Exceptions []string `toml:"exceptions"`
}

type webpSection struct {
	Enabled    bool     `toml:"enabled"`
	Exclusions []string `toml:"exclusions"`
	Jobs       int      `toml:"jobs"`
}

type sdkSection struct {
	Min      string   `toml:"min"`
	Target   string   `toml:"target"`
	Includes []string `toml:"includes"`
}

type outputSection struct {
	Dir     string `toml:"dir"`
	Archive string `toml:"archive"`
	Arsc    string `toml:"arsc"`
	Ledger  string `toml:"ledger"`
	Depfile string `toml:"depfile"`
	Summary string `toml:"summary"`
}

func findRespackToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "respack.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findRespackToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return projectConfig{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if meta.IsDefined("package", "id") && meta.IsDefined("package", "shared") && cfg.Package.Shared {
		return projectConfig{}, fmt.Errorf("%s: [package].id and [package].shared are mutually exclusive", path)
	}
	if !meta.IsDefined("output") {
		return projectConfig{}, fmt.Errorf("%s: missing [output]", path)
	}
	if !meta.IsDefined("output", "archive") || strings.TrimSpace(cfg.Output.Archive) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [output].archive", path)
	}
	return cfg, nil
}

// outputPath anchors a manifest-relative output path at the output dir.
func (m *projectManifest) outputPath(rel string) string {
	if rel == "" {
		return ""
	}
	if filepath.IsAbs(rel) {
		return rel
	}
	base := m.Root
	if m.Config.Output.Dir != "" {
		base = filepath.Join(m.Root, filepath.FromSlash(m.Config.Output.Dir))
	}
	return filepath.Join(base, filepath.FromSlash(rel))
}
