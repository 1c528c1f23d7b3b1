// Package respath classifies Android resource-relative paths.
//
// A resource path has the shape <type>(-<qualifier>)*/<name>.<ext>, rooted at
// a resource directory. Classification is pure: no path here is ever touched
// on disk. Paths without a typed directory segment are "ungoverned" and must
// pass through every transform unchanged.
package respath

import (
	"path"
	"regexp"
	"strings"
)

// Info is the parsed form of a well-formed resource path.
type Info struct {
	Type       string   // "values", "drawable", "layout", ...
	Qualifiers []string // config qualifiers in source order, may be empty
	Name       string   // base name without extension
	Ext        string   // extension including the dot, may be empty
}

var (
	drawableRe = regexp.MustCompile(`(^|[/-])drawable[/-]`)
	mipmapRe   = regexp.MustCompile(`(^|[/-])mipmap[/-]`)
	typeRe     = regexp.MustCompile(`^[a-z]+$`)
	regionRe   = regexp.MustCompile(`^r[A-Z]{2}$`)
	langRe     = regexp.MustCompile(`^[a-z]{2,3}$`)
)

// Density buckets recognized in directory qualifiers.
var densities = map[string]bool{
	"ldpi":    true,
	"mdpi":    true,
	"tvdpi":   true,
	"hdpi":    true,
	"xhdpi":   true,
	"xxhdpi":  true,
	"xxxhdpi": true,
	"nodpi":   true,
	"anydpi":  true,
}

// Two- and three-letter qualifiers that are valid configs but not languages.
var notALanguage = map[string]bool{
	"car": true,
}

// Classify parses a slash-separated resource-relative path. ok is false for
// ungoverned paths (no typed directory segment).
func Classify(rel string) (Info, bool) {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	dir, file := path.Split(rel)
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" || file == "" {
		return Info{}, false
	}
	// Only the innermost directory carries the type and qualifiers.
	if i := strings.LastIndexByte(dir, '/'); i >= 0 {
		dir = dir[i+1:]
	}
	comps := splitQualifiers(dir)
	if !typeRe.MatchString(comps[0]) {
		return Info{}, false
	}
	ext := path.Ext(file)
	return Info{
		Type:       comps[0],
		Qualifiers: comps[1:],
		Name:       strings.TrimSuffix(file, ext),
		Ext:        ext,
	}, true
}

// splitQualifiers splits a directory name on '-' while keeping BCP-47
// "b+lang+Script" qualifiers intact (they never contain '-').
func splitQualifiers(dir string) []string {
	return strings.Split(dir, "-")
}

// StringsLocale reports whether rel is a locale-qualified string resource
// file (values-<locale>/<file>.xml) and returns the locale qualifier.
func StringsLocale(rel string) (string, bool) {
	info, ok := Classify(rel)
	if !ok || info.Type != "values" || info.Ext != ".xml" {
		return "", false
	}
	if len(info.Qualifiers) == 0 {
		return "", false
	}
	q := info.Qualifiers[0]
	if strings.HasPrefix(q, "b+") {
		return q, true
	}
	if !langRe.MatchString(q) || notALanguage[q] {
		return "", false
	}
	if len(info.Qualifiers) > 1 && regionRe.MatchString(info.Qualifiers[1]) {
		return q + "-" + info.Qualifiers[1], true
	}
	return q, true
}

// Density returns the density bucket named in the directory qualifiers of
// rel, if any.
func Density(rel string) (string, bool) {
	info, ok := Classify(rel)
	if !ok {
		return "", false
	}
	for _, q := range info.Qualifiers {
		if densities[q] {
			return q, true
		}
	}
	return "", false
}

// IsDrawable reports whether rel lives in a drawable directory.
func IsDrawable(rel string) bool {
	return drawableRe.MatchString(rel)
}

// IsMipmap reports whether rel lives in a mipmap directory.
func IsMipmap(rel string) bool {
	return mipmapRe.MatchString(rel)
}

// Name returns the bare resource name used for blacklist and exception
// matching: the base file name without its extension.
func Name(rel string) string {
	base := path.Base(strings.ReplaceAll(rel, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// IsDotfile reports whether the file component starts with a dot
// (e.g. ".gitkeep"). Dotfiles are never packaged.
func IsDotfile(rel string) bool {
	base := path.Base(strings.ReplaceAll(rel, "\\", "/"))
	return strings.HasPrefix(base, ".")
}
