// Package pipeline orchestrates one packaging run: extract, normalize,
// filter, recompress, ledger, compile, link, verify, publish. Any stage
// failure aborts the run and nothing is published.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"respack/internal/aapt"
	"respack/internal/diag"
	"respack/internal/ledger"
	"respack/internal/locale"
	"respack/internal/merge"
	"respack/internal/tool"
)

// PackRequest configures one packaging run. Output paths are the final
// locations; the pipeline stages everything in the workspace and publishes
// at the end.
type PackRequest struct {
	Archives []string

	Aapt2  string
	Cwebp  string
	Runner tool.Runner

	// WorkDir, when set, pins the workspace to an inspectable location and
	// disables cleanup. Empty means a throwaway temp dir.
	WorkDir string

	// Locale policy. Names are canonical (en-US style); empty Locales
	// means keep every locale.
	Locales        []string
	SharedLocales  []string
	SharedSymbols  string
	HongKongCompat bool

	// Keep policy.
	Blacklist  string
	Exceptions []string

	// Recompression.
	Recompress      bool
	WebpExclusions  []string
	RecompressJobs  int
	RecompressCache *merge.Cache

	CompileJobs int

	Link aapt.LinkConfig

	// ArscOutput requests an additional binary-format archive converted
	// from a proto-format link output.
	ArscOutput string

	// Optimize, when non-nil, runs the size-reduction pass on the linked
	// archive before publish.
	Optimize *aapt.OptimizeConfig

	Identity aapt.IdentityPolicy

	ExpectedManifest string
	ActualManifest   string
	StrictManifest   bool

	LedgerOut  string
	Depfile    string
	SummaryOut string

	Progress ProgressSink
}

// PackResult captures run artifacts, timings, and non-fatal diagnostics.
type PackResult struct {
	Published []string
	Warnings  []*diag.Diagnostic
	Timings   Timings
	Counts    TransformCounts
	WorkDir   string
}

// TransformCounts summarizes what the merge transforms did.
type TransformCounts struct {
	Dependencies int
	Renames      int
	Deleted      int
	Recompressed int
}

// Pack runs the whole pipeline.
func Pack(ctx context.Context, req *PackRequest) (PackResult, error) {
	var result PackResult
	if req == nil {
		return result, fmt.Errorf("missing pack request")
	}
	if req.Runner == nil {
		req.Runner = tool.ExecRunner{}
	}
	if len(req.Archives) == 0 {
		return result, diag.Errorf(diag.ConfigMissingKey, "", "no dependency archives given")
	}

	work, cleanup, err := workspace(req.WorkDir)
	if err != nil {
		return result, err
	}
	result.WorkDir = work
	defer cleanup()

	pub := newPublisher(filepath.Join(work, "stage"))
	if err := os.MkdirAll(pub.dir, 0o750); err != nil {
		return result, fmt.Errorf("failed to create staging dir: %w", err)
	}

	led := ledger.NewSet()
	depDirs, err := runStage(req, &result, StageExtract, func() ([]string, error) {
		return merge.ExtractDeps(req.Archives, filepath.Join(work, "deps"))
	})
	if err != nil {
		return result, err
	}
	result.Counts.Dependencies = len(depDirs)

	policy, err := localePolicy(req)
	if err != nil {
		return result, err
	}

	if _, err := runStage(req, &result, StageNormalize, func() (struct{}, error) {
		if req.HongKongCompat {
			if err := merge.DuplicateHongKong(depDirs, led); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, merge.NormalizeLocaleDirs(depDirs, led)
	}); err != nil {
		return result, err
	}

	deleted, err := runStage(req, &result, StageFilter, func() (int, error) {
		if err := merge.FilterLocales(depDirs, policy); err != nil {
			return 0, err
		}
		return applyKeepFilter(depDirs, req)
	})
	if err != nil {
		return result, err
	}
	result.Counts.Deleted = deleted

	recompressed, err := runStage(req, &result, StageRecompress, func() (int, error) {
		return recompressImages(ctx, req, depDirs, led)
	})
	if err != nil {
		return result, err
	}
	result.Counts.Recompressed = recompressed

	if _, err := runStage(req, &result, StageDensity, func() (struct{}, error) {
		for _, dir := range depDirs {
			if err := merge.MigrateMdpi(dir, led); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	}); err != nil {
		return result, err
	}
	result.Counts.Renames = led.Len()

	if _, err := runStage(req, &result, StageLedger, func() (struct{}, error) {
		if req.LedgerOut == "" {
			return struct{}{}, nil
		}
		sidecars := make([]string, len(req.Archives))
		for i, a := range req.Archives {
			sidecars[i] = ledger.SidecarPath(a)
		}
		staged := pub.stage(req.LedgerOut)
		return struct{}{}, ledger.WriteConsolidated(staged, led, sidecars)
	}); err != nil {
		return result, err
	}

	partials, err := runStage(req, &result, StageCompile, func() ([]string, error) {
		return aapt.CompileDeps(ctx, req.Runner, req.Aapt2, depDirs,
			filepath.Join(work, "partials"), req.CompileJobs)
	})
	if err != nil {
		return result, err
	}

	linkOut, err := runStage(req, &result, StageLink, func() (string, error) {
		return linkAndConvert(ctx, req, pub, partials)
	})
	if err != nil {
		return result, err
	}

	if req.Optimize != nil {
		if _, err := runStage(req, &result, StageOptimize, func() (struct{}, error) {
			return struct{}{}, optimizeArchive(ctx, req, pub, linkOut)
		}); err != nil {
			return result, err
		}
	}

	if _, err := runStage(req, &result, StageVerify, func() (struct{}, error) {
		if err := aapt.VerifyPackageID(ctx, req.Runner, req.Aapt2, linkOut, req.Identity); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, checkManifest(req, &result)
	}); err != nil {
		return result, err
	}

	published, err := runStage(req, &result, StagePublish, func() ([]string, error) {
		return pub.publish()
	})
	if err != nil {
		return result, err
	}
	result.Published = published

	if req.Depfile != "" {
		if err := writeDepfile(req); err != nil {
			return result, err
		}
	}
	if req.SummaryOut != "" {
		if err := writeSummary(req.SummaryOut, &result); err != nil {
			return result, err
		}
	}
	return result, nil
}

// runStage wraps one phase with progress events and timing capture.
func runStage[T any](req *PackRequest, result *PackResult, stage Stage, fn func() (T, error)) (T, error) {
	start := time.Now()
	emit(req.Progress, stage, StatusWorking, nil, 0)
	out, err := fn()
	elapsed := time.Since(start)
	result.Timings.Set(stage, elapsed)
	if err != nil {
		emit(req.Progress, stage, StatusError, err, elapsed)
		return out, err
	}
	emit(req.Progress, stage, StatusDone, nil, elapsed)
	return out, nil
}

func emit(sink ProgressSink, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func workspace(pinned string) (string, func(), error) {
	if pinned != "" {
		if err := os.MkdirAll(pinned, 0o750); err != nil {
			return "", nil, fmt.Errorf("failed to create workspace %q: %w", pinned, err)
		}
		return pinned, func() {}, nil
	}
	dir, err := os.MkdirTemp("", "respack-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

func localePolicy(req *PackRequest) (merge.LocalePolicy, error) {
	var pol merge.LocalePolicy
	if req.HongKongCompat {
		for _, name := range append(append([]string{}, req.Locales...), req.SharedLocales...) {
			if strings.Contains(name, "HK") {
				return pol, diag.Errorf(diag.ConfigContradiction, name,
					"locale allow-list names an HK locale while zh-HK compatibility is on")
			}
		}
	}
	if len(req.Locales) > 0 {
		wanted, err := locale.ExpandAllowlist(req.Locales, req.HongKongCompat)
		if err != nil {
			return pol, diag.Wrap(diag.ConfigBadValue, strings.Join(req.Locales, ","), err)
		}
		pol.Wanted = wanted
	}
	if len(req.SharedLocales) > 0 {
		// Duplicated zh-rHK files must land in both partitions so the
		// filter leaves them untouched.
		shared, err := locale.ExpandAllowlist(req.SharedLocales, req.HongKongCompat)
		if err != nil {
			return pol, diag.Wrap(diag.ConfigBadValue, strings.Join(req.SharedLocales, ","), err)
		}
		pol.Shared = shared
	}
	if req.SharedSymbols != "" {
		names, err := aapt.SharedStringNames(req.SharedSymbols)
		if err != nil {
			return pol, err
		}
		pol.SharedNames = names
	}
	return pol, nil
}

// applyKeepFilter deletes the files the keep predicate rejects and returns
// how many were removed.
func applyKeepFilter(depDirs []string, req *PackRequest) (int, error) {
	cfg := merge.KeepConfig{Exceptions: req.Exceptions}
	if req.Blacklist != "" {
		re, err := regexp.Compile(req.Blacklist)
		if err != nil {
			return 0, diag.Wrap(diag.ConfigBadValue, req.Blacklist, err)
		}
		cfg.Blacklist = re
	}
	keep, err := merge.BuildKeepPredicate(depDirs, cfg)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, dir := range depDirs {
		files, err := merge.ListFiles(dir)
		if err != nil {
			return deleted, err
		}
		for _, rel := range files {
			if keep(rel) {
				continue
			}
			if err := os.Remove(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
				return deleted, err
			}
			deleted++
		}
	}
	return deleted, nil
}

func recompressImages(ctx context.Context, req *PackRequest, depDirs []string, led *ledger.Set) (int, error) {
	if !req.Recompress {
		return 0, nil
	}
	extra := make([]*regexp.Regexp, 0, len(req.WebpExclusions))
	for _, pat := range req.WebpExclusions {
		re, err := regexp.Compile(pat)
		if err != nil {
			return 0, diag.Wrap(diag.ConfigBadValue, pat, err)
		}
		extra = append(extra, re)
	}
	var images []merge.Image
	for _, dir := range depDirs {
		files, err := merge.ListFiles(dir)
		if err != nil {
			return 0, err
		}
		// Every surviving PNG is a candidate, wherever it lives; the
		// exclusion patterns are the only gate.
		for _, rel := range files {
			if strings.HasSuffix(rel, ".png") {
				images = append(images, merge.Image{Root: dir, Rel: rel})
			}
		}
	}
	before := led.Len()
	err := merge.Recompress(ctx, req.Runner, merge.RecompressOptions{
		Binary:          req.Cwebp,
		ExtraExclusions: extra,
		Jobs:            req.RecompressJobs,
		Cache:           req.RecompressCache,
	}, images, led)
	if err != nil {
		return 0, err
	}
	return led.Len() - before, nil
}

func linkAndConvert(ctx context.Context, req *PackRequest, pub *publisher, partials []string) (string, error) {
	cfg := req.Link
	cfg.Binary = req.Aapt2
	cfg.Partials = partials
	final := cfg.Output
	cfg.Output = pub.stage(final)
	for _, p := range []*string{&cfg.ProguardOut, &cfg.EmitIdsOut, &cfg.TextSymbolsOut} {
		if *p != "" {
			*p = pub.stage(*p)
		}
	}
	if err := aapt.Link(ctx, req.Runner, cfg); err != nil {
		return "", err
	}
	if req.ArscOutput != "" {
		if !req.Link.ProtoFormat {
			return "", diag.Errorf(diag.ConfigContradiction, req.ArscOutput,
				"arsc conversion requires a proto-format link output")
		}
		if err := aapt.Convert(ctx, req.Runner, req.Aapt2, cfg.Output, pub.stage(req.ArscOutput)); err != nil {
			return "", err
		}
	}
	return cfg.Output, nil
}

func optimizeArchive(ctx context.Context, req *PackRequest, pub *publisher, linkOut string) error {
	cfg := *req.Optimize
	cfg.Binary = req.Aapt2
	cfg.Input = linkOut
	cfg.Output = linkOut + ".opt"
	if cfg.PathMapOut != "" {
		cfg.PathMapOut = pub.stage(cfg.PathMapOut)
	}
	if err := aapt.Optimize(ctx, req.Runner, cfg); err != nil {
		return err
	}
	// The optimized archive replaces the staged link output in place.
	return os.Rename(cfg.Output, linkOut)
}

func checkManifest(req *PackRequest, result *PackResult) error {
	if req.ExpectedManifest == "" {
		return nil
	}
	d, ok, err := aapt.CheckManifest(req.ActualManifest, req.ExpectedManifest, req.StrictManifest)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if d.Severity == diag.SevError {
		return d
	}
	result.Warnings = append(result.Warnings, d)
	return nil
}

// writeDepfile records, in ninja depfile syntax, which inputs the primary
// output depends on.
func writeDepfile(req *PackRequest) error {
	deps := append([]string{}, req.Archives...)
	for _, a := range req.Archives {
		if _, err := os.Stat(ledger.SidecarPath(a)); err == nil {
			deps = append(deps, ledger.SidecarPath(a))
		}
	}
	if req.SharedSymbols != "" {
		deps = append(deps, req.SharedSymbols)
	}
	if req.Link.Manifest != "" {
		deps = append(deps, req.Link.Manifest)
	}
	line := req.Link.Output + ": " + strings.Join(deps, " ") + "\n"
	if err := os.WriteFile(req.Depfile, []byte(line), 0o600); err != nil {
		return fmt.Errorf("failed to write depfile %q: %w", req.Depfile, err)
	}
	return nil
}
