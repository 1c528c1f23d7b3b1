package merge

import (
	"path"
	"regexp"

	"respack/internal/respath"
)

// KeepConfig describes the blacklist-with-exceptions policy.
type KeepConfig struct {
	// Blacklist drops matching paths. Nil means no blacklist.
	Blacklist *regexp.Regexp
	// Exceptions are glob patterns that rescue blacklisted paths.
	Exceptions []string
}

// BuildKeepPredicate returns the function deciding which resource files
// survive the merge. The predicate never mutates the filesystem; the
// orchestrator performs the deletion pass.
//
// Rules, in order:
//
//   - dotfiles are always dropped,
//   - without a blacklist everything else is kept,
//   - blacklisted paths are rescued when they are mipmaps (launcher icons
//     must never disappear) or match an exception glob,
//   - density consistency: a drawable name that survives the naive rules
//     under any density bucket is kept under every bucket, because the
//     densities are derivatives of one logical asset and must not be
//     partially present.
//
// The closure is computed once over the dependency directories as they
// exist when this function is called; run it after the locale passes and
// before the deletion pass.
func BuildKeepPredicate(depDirs []string, cfg KeepConfig) (func(rel string) bool, error) {
	naive := func(rel string) bool {
		if respath.IsDotfile(rel) {
			return false
		}
		if cfg.Blacklist == nil {
			return true
		}
		return !cfg.Blacklist.MatchString(rel) ||
			respath.IsMipmap(rel) ||
			matchesGlob(rel, cfg.Exceptions)
	}
	if cfg.Blacklist == nil {
		return naive, nil
	}

	// Names of drawables kept by the naive rules under at least one
	// density bucket.
	survivors := make(map[string]bool)
	for _, dir := range depDirs {
		files, err := ListFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, rel := range files {
			if respath.IsDrawable(rel) && naive(rel) {
				survivors[respath.Name(rel)] = true
			}
		}
	}

	return func(rel string) bool {
		if naive(rel) {
			return true
		}
		return respath.IsDrawable(rel) && survivors[respath.Name(rel)]
	}, nil
}

// matchesGlob reports whether rel matches any pattern, trying the full
// relative path first and the bare file name second, so exception lists can
// use either form.
func matchesGlob(rel string, patterns []string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		if ok, _ := path.Match(p, rel); ok {
			return true
		}
		if ok, _ := path.Match(p, base); ok {
			return true
		}
	}
	return false
}
