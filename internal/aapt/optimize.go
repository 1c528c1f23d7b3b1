package aapt

import (
	"context"
	"fmt"
	"os"
	"strings"

	"respack/internal/diag"
	"respack/internal/tool"
)

// OptimizeConfig drives the optional size-reduction pass.
type OptimizeConfig struct {
	Binary string
	Input  string
	Output string

	// ResourcesConfig is the obfuscation exemption file. When RTxt is also
	// set the id-type resources listed there are appended as exemptions:
	// obfuscating an id changes the key the platform inflater resolves at
	// runtime, so id names must survive verbatim.
	ResourcesConfig string
	RTxt            string

	// ShortenPaths collapses res/ paths and writes the translation map.
	ShortenPaths bool
	PathMapOut   string
}

// Optimize runs aapt2 optimize with resource-name obfuscation and optional
// path shortening.
func Optimize(ctx context.Context, r tool.Runner, cfg OptimizeConfig) error {
	resourcesConfig := cfg.ResourcesConfig
	if cfg.RTxt != "" {
		extended, err := appendIDExemptions(cfg.ResourcesConfig, cfg.RTxt)
		if err != nil {
			return err
		}
		defer os.Remove(extended)
		resourcesConfig = extended
	}

	args := []string{"optimize", "--collapse-resource-names"}
	if resourcesConfig != "" {
		args = append(args, "--resources-config-path", resourcesConfig)
	}
	if cfg.ShortenPaths {
		args = append(args, "--shorten-resource-paths")
		if cfg.PathMapOut != "" {
			args = append(args, "--resource-path-shortening-map", cfg.PathMapOut)
		}
	}
	args = append(args, "-o", cfg.Output, cfg.Input)

	_, stderr, err := r.Run(ctx, cfg.Binary, args...)
	if err != nil {
		return diag.Wrap(diag.ToolOptimizeFailed, cfg.Output,
			tool.CommandError(cfg.Binary, args, filterStderr(stderr), err))
	}
	return nil
}

// appendIDExemptions writes a temporary resources config combining the
// caller's file (possibly empty) with one "id/<name>#no_obfuscate" line per
// id resource in the R.txt.
func appendIDExemptions(base, rtxt string) (string, error) {
	var b strings.Builder
	if base != "" {
		data, err := os.ReadFile(base)
		if err != nil {
			return "", fmt.Errorf("failed to read resources config %q: %w", base, err)
		}
		b.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			b.WriteByte('\n')
		}
	}
	names, err := ResourceNames(rtxt, "id")
	if err != nil {
		return "", err
	}
	for _, name := range names {
		fmt.Fprintf(&b, "id/%s#no_obfuscate\n", name)
	}

	tmp, err := os.CreateTemp("", "resources-config-*.txt")
	if err != nil {
		return "", err
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
