package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"respack/internal/aapt"
	"respack/internal/diag"
	"respack/internal/merge"
	"respack/internal/pipeline"
)

var packCmd = &cobra.Command{
	Use:   "pack [flags] <dep.zip>...",
	Short: "Merge dependency resources and produce the linked archive",
	Long:  "Merge dependency resource archives, normalize locales, apply the keep and locale policies, recompress images, and drive aapt2 through compile, link, and optimize.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  packExecution,
}

func packExecution(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	manifest, manifestFound, err := loadProjectManifest(".")
	if err != nil {
		return err
	}
	if !manifestFound {
		manifest = &projectManifest{Root: "."}
	}
	cfg := manifest.Config

	req := &pipeline.PackRequest{Archives: args}

	req.Aapt2, _ = flags.GetString("aapt2")
	req.Cwebp, _ = flags.GetString("cwebp")
	req.WorkDir, _ = flags.GetString("debug-dir")
	if req.WorkDir == "" {
		// The original tool honored an ambient debug location; keep it as
		// a default for the flag.
		req.WorkDir = os.Getenv("RESPACK_DEBUG_DIR")
	}

	req.Locales = stringsFlagOr(flags, "locales", cfg.Locales.Allow)
	req.SharedLocales = stringsFlagOr(flags, "shared-locales", cfg.Locales.Shared)
	req.SharedSymbols = stringFlagOr(flags, "shared-symbols", cfg.Locales.SharedSymbols)
	req.HongKongCompat = boolFlagOr(flags, "hk-compat", cfg.Locales.HongKong)

	req.Blacklist = stringFlagOr(flags, "blacklist", cfg.Filter.Blacklist)
	req.Exceptions = stringsFlagOr(flags, "exception", cfg.Filter.Exceptions)

	req.Recompress = boolFlagOr(flags, "webp", cfg.Webp.Enabled)
	req.WebpExclusions = stringsFlagOr(flags, "webp-exclusion", cfg.Webp.Exclusions)
	req.RecompressJobs = intFlagOr(flags, "webp-jobs", cfg.Webp.Jobs)
	if noCache, _ := flags.GetBool("no-cache"); req.Recompress && !noCache {
		cache, err := merge.OpenCache("respack")
		if err != nil {
			return fmt.Errorf("failed to open recompression cache: %w", err)
		}
		req.RecompressCache = cache
	}

	req.CompileJobs, _ = flags.GetInt("jobs")

	req.Link.Manifest, _ = flags.GetString("manifest")
	if req.Link.Manifest == "" {
		return fmt.Errorf("--manifest is required")
	}
	req.Link.Output = pathFlagOr(flags, manifest, "out", cfg.Output.Archive)
	req.Link.ProtoFormat, _ = flags.GetBool("proto")
	req.Link.MinSdkVersion = stringFlagOr(flags, "min-sdk", cfg.Sdk.Min)
	req.Link.TargetSdkVersion = stringFlagOr(flags, "target-sdk", cfg.Sdk.Target)
	req.Link.Includes = stringsFlagOr(flags, "include", cfg.Sdk.Includes)
	req.Link.VersionCode, _ = flags.GetString("version-code")
	req.Link.VersionName, _ = flags.GetString("version-name")
	req.Link.ProguardOut, _ = flags.GetString("proguard")
	req.Link.EmitIdsOut, _ = flags.GetString("emit-ids")
	req.Link.TextSymbolsOut, _ = flags.GetString("output-text-symbols")
	req.Link.RenamePackage, _ = flags.GetString("rename-package")
	req.Link.SharedLib = boolFlagOr(flags, "shared-resources", cfg.Package.Shared)
	req.Link.NoXmlNamespaces, _ = flags.GetBool("no-xml-namespaces")

	req.ArscOutput = pathFlagOr(flags, manifest, "arsc", cfg.Output.Arsc)
	if req.ArscOutput != "" && !req.Link.ProtoFormat {
		return fmt.Errorf("--arsc requires --proto")
	}

	explicitID := stringFlagOr(flags, "package-id", cfg.Package.ID)
	if explicitID != "" && req.Link.SharedLib {
		return diag.Errorf(diag.ConfigContradiction, explicitID,
			"--package-id and --shared-resources are mutually exclusive")
	}
	idTable, err := parseIDTable(cfg.Package.IDTable)
	if err != nil {
		return err
	}
	req.Identity = aapt.IdentityPolicy{
		ExplicitID:      explicitID,
		PackageName:     cfg.Package.Name,
		IDTable:         idTable,
		SharedResources: req.Link.SharedLib,
	}
	req.Link.PackageID = explicitID

	if stableIDs, _ := flags.GetString("stable-ids"); stableIDs != "" {
		rewritten := stableIDs
		if pkg, _ := flags.GetString("stable-ids-package"); pkg != "" {
			rewritten = req.Link.Output + ".stable-ids"
			if err := aapt.RewriteStableIDs(stableIDs, rewritten, pkg); err != nil {
				return err
			}
			defer os.Remove(rewritten)
		}
		req.Link.StableIdsFile = rewritten
	}

	if optimize, _ := flags.GetBool("optimize"); optimize {
		resourcesConfig, _ := flags.GetString("resources-config")
		rtxt, _ := flags.GetString("rtxt")
		shorten, _ := flags.GetBool("shorten-paths")
		pathMap, _ := flags.GetString("path-map")
		req.Optimize = &aapt.OptimizeConfig{
			ResourcesConfig: resourcesConfig,
			RTxt:            rtxt,
			ShortenPaths:    shorten,
			PathMapOut:      pathMap,
		}
	}

	req.ExpectedManifest, _ = flags.GetString("expected-manifest")
	req.ActualManifest, _ = flags.GetString("actual-manifest")
	req.StrictManifest, _ = flags.GetBool("strict-manifest")
	if req.ExpectedManifest != "" && req.ActualManifest == "" {
		req.ActualManifest = req.Link.Manifest
	}

	req.LedgerOut = pathFlagOr(flags, manifest, "ledger", cfg.Output.Ledger)
	req.Depfile = pathFlagOr(flags, manifest, "depfile", cfg.Output.Depfile)
	req.SummaryOut = pathFlagOr(flags, manifest, "summary", cfg.Output.Summary)

	uiValue, _ := flags.GetString("ui")
	mode, err := parseUIMode(uiValue)
	if err != nil {
		return err
	}

	var result pipeline.PackResult
	if mode.wantTUI() {
		result, err = runPackWithUI(cmd.Context(), "respack pack", req)
	} else {
		result, err = pipeline.Pack(cmd.Context(), req)
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	// Warnings render in bag order, not arrival order, so repeat runs
	// produce identical output.
	warnings := diag.NewBag()
	for _, w := range result.Warnings {
		warnings.Add(*w)
	}
	diag.RenderBag(os.Stderr, warnings)
	if err != nil {
		if d, ok := errAsDiagnostic(err); ok {
			diag.Render(os.Stderr, d)
		}
		return err
	}

	if showTimings {
		printStageTimings(os.Stdout, result.Timings)
	}
	if !quiet {
		for _, p := range result.Published {
			fmt.Fprintf(os.Stdout, "published %s\n", p)
		}
		if len(result.Published) == 0 {
			fmt.Fprintln(os.Stdout, "outputs unchanged")
		}
	}
	return nil
}

func parseIDTable(table map[string]string) (map[string]uint8, error) {
	if len(table) == 0 {
		return nil, nil
	}
	out := make(map[string]uint8, len(table))
	for name, hex := range table {
		v, err := strconv.ParseUint(hex, 0, 8)
		if err != nil {
			return nil, diag.Errorf(diag.ConfigBadValue, name, "invalid package id %q in id table", hex)
		}
		out[name] = uint8(v)
	}
	return out, nil
}

func init() {
	packCmd.Flags().String("aapt2", "aapt2", "path to the aapt2 binary")
	packCmd.Flags().String("cwebp", "cwebp", "path to the cwebp binary")
	packCmd.Flags().String("debug-dir", "", "pin the workspace to this directory and keep it")
	packCmd.Flags().Int("jobs", 0, "parallel aapt2 compile jobs (0 = default)")
	packCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")

	packCmd.Flags().StringSlice("locales", nil, "locale allow-list (canonical names)")
	packCmd.Flags().StringSlice("shared-locales", nil, "shared-resources locale allow-list")
	packCmd.Flags().String("shared-symbols", "", "R.txt with the shared string symbols")
	packCmd.Flags().Bool("hk-compat", false, "duplicate zh-TW resources for zh-HK devices")

	packCmd.Flags().String("blacklist", "", "resource path blacklist regex")
	packCmd.Flags().StringSlice("exception", nil, "glob rescuing blacklisted paths")

	packCmd.Flags().Bool("webp", false, "recompress PNGs to lossless WebP")
	packCmd.Flags().StringSlice("webp-exclusion", nil, "extra regex of PNGs to leave alone")
	packCmd.Flags().Int("webp-jobs", 0, "parallel cwebp jobs (0 = default)")
	packCmd.Flags().Bool("no-cache", false, "disable the recompression cache")

	packCmd.Flags().String("manifest", "", "AndroidManifest.xml for the link")
	packCmd.Flags().String("out", "", "linked archive output path")
	packCmd.Flags().Bool("proto", false, "emit the proto resource table format")
	packCmd.Flags().String("arsc", "", "additional binary-format archive (requires --proto)")
	packCmd.Flags().String("min-sdk", "", "minimum SDK version")
	packCmd.Flags().String("target-sdk", "", "target SDK version")
	packCmd.Flags().StringSlice("include", nil, "framework include (android.jar)")
	packCmd.Flags().String("version-code", "", "version code for the link")
	packCmd.Flags().String("version-name", "", "version name for the link")
	packCmd.Flags().String("proguard", "", "proguard keep rules output")
	packCmd.Flags().String("emit-ids", "", "emit-ids output path")
	packCmd.Flags().String("output-text-symbols", "", "R.txt output path")
	packCmd.Flags().String("rename-package", "", "rename the manifest package")
	packCmd.Flags().Bool("shared-resources", false, "link as a shared resource library")
	packCmd.Flags().Bool("no-xml-namespaces", false, "strip XML namespace information")
	packCmd.Flags().String("package-id", "", "explicit package id (0xNN)")
	packCmd.Flags().String("stable-ids", "", "stable ids file from a previous link")
	packCmd.Flags().String("stable-ids-package", "", "substitute this package into --stable-ids lines")

	packCmd.Flags().Bool("optimize", false, "run aapt2 optimize on the linked archive")
	packCmd.Flags().String("resources-config", "", "obfuscation exemption file for optimize")
	packCmd.Flags().String("rtxt", "", "R.txt whose id resources are exempted from obfuscation")
	packCmd.Flags().Bool("shorten-paths", false, "shorten resource paths during optimize")
	packCmd.Flags().String("path-map", "", "path shortening map output")

	packCmd.Flags().String("expected-manifest", "", "manifest expectation file to diff against")
	packCmd.Flags().String("actual-manifest", "", "normalized manifest to check (defaults to --manifest)")
	packCmd.Flags().Bool("strict-manifest", false, "treat manifest expectation mismatches as errors")

	packCmd.Flags().String("ledger", "", "consolidated rename ledger output")
	packCmd.Flags().String("depfile", "", "ninja depfile output")
	packCmd.Flags().String("summary", "", "msgpack run summary output")
}
