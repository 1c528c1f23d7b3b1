package aapt

import (
	"context"

	"respack/internal/diag"
	"respack/internal/tool"
)

// LinkConfig is the full flag surface of the final link. Zero values mean
// "flag absent"; the argument builder emits nothing for them.
type LinkConfig struct {
	Binary   string
	Manifest string
	Output   string
	// ProtoFormat emits the proto resource table instead of the binary one.
	ProtoFormat bool

	MinSdkVersion    string
	TargetSdkVersion string
	Includes         []string
	VersionCode      string
	VersionName      string

	ProguardOut     string
	EmitIdsOut      string
	TextSymbolsOut  string
	StableIdsFile   string
	RenamePackage   string
	PackageID       string
	SharedLib       bool
	NoXmlNamespaces bool

	Partials []string
}

// Args builds the aapt2 command line for the link phase. The flag order is
// fixed so the invocation is reproducible and diffable in build logs.
func (c LinkConfig) Args() []string {
	args := []string{"link", "--auto-add-overlay", "--no-version-vectors"}
	if c.MinSdkVersion != "" {
		args = append(args, "--min-sdk-version", c.MinSdkVersion)
	}
	if c.TargetSdkVersion != "" {
		args = append(args, "--target-sdk-version", c.TargetSdkVersion)
	}
	for _, inc := range c.Includes {
		args = append(args, "-I", inc)
	}
	if c.VersionCode != "" {
		args = append(args, "--version-code", c.VersionCode)
	}
	if c.VersionName != "" {
		args = append(args, "--version-name", c.VersionName)
	}
	if c.ProguardOut != "" {
		args = append(args, "--proguard", c.ProguardOut)
	}
	if c.EmitIdsOut != "" {
		args = append(args, "--emit-ids", c.EmitIdsOut)
	}
	if c.TextSymbolsOut != "" {
		args = append(args, "--output-text-symbols", c.TextSymbolsOut)
	}
	if c.SharedLib {
		args = append(args, "--shared-lib")
	}
	if c.NoXmlNamespaces {
		args = append(args, "--no-xml-namespaces")
	}
	if c.PackageID != "" {
		args = append(args, "--package-id", c.PackageID, "--allow-reserved-package-id")
	}
	if c.StableIdsFile != "" {
		args = append(args, "--stable-ids", c.StableIdsFile)
	}
	if c.RenamePackage != "" {
		args = append(args, "--rename-manifest-package", c.RenamePackage)
	}
	args = append(args, "--manifest", c.Manifest)
	for _, p := range c.Partials {
		args = append(args, "-R", p)
	}
	if c.ProtoFormat {
		args = append(args, "--proto-format")
	}
	return append(args, "-o", c.Output)
}

// Link runs the final link.
func Link(ctx context.Context, r tool.Runner, cfg LinkConfig) error {
	args := cfg.Args()
	_, stderr, err := r.Run(ctx, cfg.Binary, args...)
	if err != nil {
		return diag.Wrap(diag.ToolLinkFailed, cfg.Output,
			tool.CommandError(cfg.Binary, args, filterStderr(stderr), err))
	}
	return nil
}

// Convert translates a proto-format archive into the binary resource table
// format. Used when a run wants both output flavors from a single link.
func Convert(ctx context.Context, r tool.Runner, binary, input, output string) error {
	args := []string{"convert", "--output-format", "binary", "-o", output, input}
	_, stderr, err := r.Run(ctx, binary, args...)
	if err != nil {
		return diag.Wrap(diag.ToolConvertFailed, output,
			tool.CommandError(binary, args, filterStderr(stderr), err))
	}
	return nil
}
