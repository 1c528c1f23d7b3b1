package merge

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"respack/internal/diag"
	"respack/internal/ledger"
	"respack/internal/tool"
)

// DefaultRecompressJobs bounds the recompression worker pool.
const DefaultRecompressJobs = 10

// Images that must stay PNG. 9-patch images carry stretch metadata the
// alternate format cannot hold; the rest is a hand-maintained list of
// assets known to misrender after conversion on specific legacy devices.
var defaultRecompressExclusions = []*regexp.Regexp{
	regexp.MustCompile(`\.9\.png$`),
	regexp.MustCompile(`star_gray\.png$`),
	regexp.MustCompile(`daydream_icon_.*\.png$`),
}

// Image is one candidate raster file: the dependency directory it lives in
// and its path relative to that directory.
type Image struct {
	Root string
	Rel  string
}

// RecompressOptions configures the PNG to WebP conversion pass.
type RecompressOptions struct {
	// Binary is the cwebp executable path.
	Binary string
	// ExtraExclusions extends the built-in must-stay-PNG patterns.
	ExtraExclusions []*regexp.Regexp
	// Jobs bounds the worker pool; zero means DefaultRecompressJobs.
	Jobs int
	// Cache, when set, reuses prior conversions keyed by input content.
	Cache *Cache
}

// Recompress converts every eligible image to lossless WebP in place,
// replacing the original file and recording the rename. Conversions are
// independent, so they fan out over a bounded worker pool; the pass fails
// if any single conversion fails, and ledger entries are folded in by a
// single goroutine after all workers join so ordering stays deterministic.
func Recompress(ctx context.Context, r tool.Runner, opts RecompressOptions, images []Image, led *ledger.Set) error {
	exclusions := append([]*regexp.Regexp{}, defaultRecompressExclusions...)
	exclusions = append(exclusions, opts.ExtraExclusions...)

	var work []Image
	for _, img := range images {
		if strings.HasSuffix(img.Rel, ".png") && !matchesAny(img.Rel, exclusions) {
			work = append(work, img)
		}
	}
	if len(work) == 0 {
		return nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = DefaultRecompressJobs
	}

	// Result slots are indexed per goroutine, no mutex needed.
	type rename struct{ newRel, oldRel string }
	results := make([]rename, len(work))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(work)))
	for i, img := range work {
		i, img := i, img
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			webpRel := strings.TrimSuffix(img.Rel, ".png") + ".webp"
			src := filepath.Join(img.Root, filepath.FromSlash(img.Rel))
			dst := filepath.Join(img.Root, filepath.FromSlash(webpRel))
			if err := convertImage(gctx, r, opts, src, dst); err != nil {
				return err
			}
			if err := os.Remove(src); err != nil {
				return err
			}
			results[i] = rename{newRel: webpRel, oldRel: img.Rel}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		if err := led.Add(res.newRel, res.oldRel); err != nil {
			return err
		}
	}
	return nil
}

func convertImage(ctx context.Context, r tool.Runner, opts RecompressOptions, src, dst string) error {
	args := []string{src, "-mt", "-quiet", "-m", "6", "-q", "100", "-lossless", "-o", dst}

	var key [sha256.Size]byte
	if opts.Cache != nil {
		data, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		key = cacheKey(data, args[1:len(args)-2])
		if cached, ok := opts.Cache.Load(key); ok {
			return os.WriteFile(dst, cached, 0o600)
		}
	}

	_, stderr, err := r.Run(ctx, opts.Binary, args...)
	if err != nil {
		return diag.Wrap(diag.ToolRecompressFailed, src, tool.CommandError(opts.Binary, args, stderr, err))
	}

	if opts.Cache != nil {
		data, err := os.ReadFile(dst)
		if err != nil {
			return err
		}
		// Cache write failures are not fatal; the conversion already
		// succeeded.
		_ = opts.Cache.Store(key, args[1:len(args)-2], data)
	}
	return nil
}

func matchesAny(rel string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(rel) {
			return true
		}
	}
	return false
}
