package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove the output directory for a respack project",
	Long:  "Remove the output directory declared in respack.toml, plus any pinned debug workspace.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func runClean(_ *cobra.Command, args []string) error {
	baseDir := "."
	if len(args) > 0 && args[0] != "" {
		baseDir = args[0]
	}
	manifest, ok, err := loadProjectManifest(baseDir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no respack.toml found under %q", baseDir)
	}
	outDir := filepath.Join(manifest.Root, filepath.FromSlash(manifest.Config.Output.Dir))
	if manifest.Config.Output.Dir == "" {
		return fmt.Errorf("%s: [output].dir not set; nothing to clean", manifest.Path)
	}
	info, err := os.Stat(outDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(os.Stdout, "output directory not found")
			return nil
		}
		return fmt.Errorf("failed to stat %q: %w", outDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", outDir)
	}
	if err := os.RemoveAll(outDir); err != nil {
		return fmt.Errorf("failed to remove %q: %w", outDir, err)
	}
	fmt.Fprintf(os.Stdout, "removed %s\n", outDir)
	return nil
}
