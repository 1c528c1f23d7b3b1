// Package locale converts between canonical language tags and Android
// resource locale qualifiers.
//
// The two representations must interconvert losslessly for every supported
// locale; anything the platform side cannot express is rejected rather than
// silently dropped. Older platform releases only understand ISO 639-1
// two-letter codes, sometimes obsolete ones, which is where most of the
// mapping below comes from.
package locale

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Historic qualifiers the platform kept for compatibility. Modern codes for
// Hebrew, Indonesian and Yiddish must be expressed with their obsolete
// variants in resource directory names.
var canonicalToAndroid = map[string]string{
	"he":  "iw",
	"id":  "in",
	"yi":  "ji",
	"fil": "tl",
}

var androidToCanonical = map[string]string{
	"iw": "he",
	"in": "id",
	"ji": "yi",
	"tl": "fil",
	// Norwegian macrolanguage strings belong under Bokmål, the principal
	// dialect.
	"no": "nb",
}

var regionRe = regexp.MustCompile(`^[A-Z]{2}$`)

// ToCanonical converts an Android locale qualifier (e.g. "en-rUS", "iw",
// "b+sr+Latn") to its canonical language-tag form. ok is false for
// qualifiers that do not name a supported locale.
func ToCanonical(qualifier string) (string, bool) {
	if qualifier == "" {
		return "", false
	}
	if strings.HasPrefix(qualifier, "b+") {
		tag := strings.ReplaceAll(qualifier[2:], "+", "-")
		if _, err := language.Parse(tag); err != nil {
			return "", false
		}
		return tag, true
	}
	lang := qualifier
	region := ""
	if i := strings.Index(qualifier, "-r"); i >= 0 {
		lang = qualifier[:i]
		region = qualifier[i+2:]
		if !regionRe.MatchString(region) {
			return "", false
		}
	}
	if mapped, ok := androidToCanonical[lang]; ok {
		lang = mapped
	}
	if _, err := language.ParseBase(lang); err != nil {
		return "", false
	}
	if region != "" {
		return lang + "-" + region, true
	}
	return lang, true
}

// ToAndroid converts a canonical language tag to the Android qualifier the
// platform expects. ok is false for tags that cannot be expressed.
func ToAndroid(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if _, err := language.Parse(name); err != nil {
		return "", false
	}
	parts := strings.Split(name, "-")
	lang := parts[0]
	if mapped, ok := canonicalToAndroid[lang]; ok {
		lang = mapped
	}
	switch {
	case len(parts) == 1:
		return lang, true
	case len(parts) == 2 && regionRe.MatchString(parts[1]):
		return lang + "-r" + parts[1], true
	default:
		// Script or extension subtags only fit the BCP-47 directory form.
		rest := append([]string{lang}, parts[1:]...)
		return "b+" + strings.Join(rest, "+"), true
	}
}

// Normalize maps an observed qualifier to its canonical platform qualifier
// by round-tripping through the canonical tag form. ok is false when the
// qualifier is not a supported locale; such directories are left alone.
func Normalize(qualifier string) (string, bool) {
	canonical, ok := ToCanonical(qualifier)
	if !ok {
		return "", false
	}
	normalized, ok := ToAndroid(canonical)
	if !ok {
		return "", false
	}
	return normalized, true
}

// Mapping is one legacy rewrite rule.
type Mapping struct {
	Canonical string
	Android   string
}

// LegacyMappings returns the fixed canonical-to-qualifier exception table,
// sorted by canonical name. Debug output only; conversion goes through
// ToAndroid and ToCanonical.
func LegacyMappings() []Mapping {
	out := make([]Mapping, 0, len(canonicalToAndroid)+1)
	for canonical, android := range canonicalToAndroid {
		out = append(out, Mapping{Canonical: canonical, Android: android})
	}
	out = append(out, Mapping{Canonical: "nb", Android: "no"})
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical < out[j].Canonical })
	return out
}

// ExpandAllowlist converts canonical locale names to the set of Android
// qualifiers to keep, always including the bare-language fallback. With
// hongKong set, zh-rHK is added so duplicated zh-rTW resources survive
// filtering; combining that with an explicit HK entry in the allow-list is a
// configuration contradiction.
func ExpandAllowlist(names []string, hongKong bool) (map[string]bool, error) {
	out := make(map[string]bool, 2*len(names))
	for _, name := range names {
		if hongKong && strings.Contains(name, "HK") {
			return nil, fmt.Errorf("locale allow-list already contains %q; remove it or drop the zh-HK compatibility flag", name)
		}
		qualifier, ok := ToAndroid(name)
		if !ok {
			return nil, fmt.Errorf("unsupported locale name %q in allow-list", name)
		}
		if strings.Contains(qualifier, "-") && !strings.Contains(qualifier, "-r") {
			return nil, fmt.Errorf("unsupported locale name %q in allow-list", name)
		}
		out[qualifier] = true
		// Keep the non-regional fall-back alongside regional entries.
		lang, _, _ := strings.Cut(qualifier, "-")
		out[lang] = true
	}
	if hongKong {
		out["zh-rHK"] = true
	}
	return out, nil
}
