package merge

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"respack/internal/respath"
)

// LocalePolicy is the reconciled pair of locale-inclusion policies. Wanted
// and Shared hold Android locale qualifiers; SharedNames holds the string
// resource names that belong to the shared subset.
//
// A nil Wanted means "keep every observed locale"; a nil Shared means
// "same as Wanted". With both nil the filter is a no-op.
type LocalePolicy struct {
	Wanted      map[string]bool
	Shared      map[string]bool
	SharedNames map[string]bool
}

// FilterLocales deletes or rewrites locale-qualified string files so that
// every observed locale lands in exactly one partition:
//
//   - wanted and shared: kept untouched,
//   - wanted only: rewritten, dropping shared-subset names,
//   - shared only: rewritten, keeping only shared-subset names,
//   - neither: deleted.
//
// Each locale's outcome depends only on its own membership, so iteration
// order cannot change the result. Files are rewritten with a stable filter
// over the source element order; a file left with zero entries still
// exists, deliberately (pruning empties is not this pass's job).
func FilterLocales(depDirs []string, pol LocalePolicy) error {
	if pol.Wanted == nil && pol.Shared == nil {
		return nil
	}

	localeFiles := make(map[string][]string)
	for _, dir := range depDirs {
		files, err := ListFiles(dir)
		if err != nil {
			return err
		}
		for _, rel := range files {
			loc, ok := respath.StringsLocale(rel)
			if !ok {
				continue
			}
			localeFiles[loc] = append(localeFiles[loc], filepath.Join(dir, filepath.FromSlash(rel)))
		}
	}

	wanted := pol.Wanted
	if wanted == nil {
		wanted = make(map[string]bool, len(localeFiles))
		for loc := range localeFiles {
			wanted[loc] = true
		}
	}
	shared := pol.Shared
	if shared == nil {
		shared = wanted
	}

	for loc, paths := range localeFiles {
		switch {
		case wanted[loc] && shared[loc]:
			// Keep everything.
		case !wanted[loc] && !shared[loc]:
			for _, p := range paths {
				if err := os.Remove(p); err != nil {
					return fmt.Errorf("failed to remove %q: %w", p, err)
				}
			}
		case shared[loc]:
			for _, p := range paths {
				if err := filterStringsXML(p, func(name string) bool { return pol.SharedNames[name] }); err != nil {
					return err
				}
			}
		default:
			for _, p := range paths {
				if err := filterStringsXML(p, func(name string) bool { return !pol.SharedNames[name] }); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

type resourcesDoc struct {
	XMLName xml.Name       `xml:"resources"`
	Attrs   []xml.Attr     `xml:",any,attr"`
	Entries []resourceElem `xml:",any"`
}

type resourceElem struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}

// filterStringsXML rewrites a strings.xml-style file in place, keeping only
// <string> entries whose name attribute satisfies keep. Non-string elements
// pass through. Element order is preserved; nothing is re-sorted, so the
// output is byte-stable for a given input.
func filterStringsXML(path string, keep func(name string) bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", path, err)
	}
	var doc resourcesDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %q: %w", path, err)
	}
	prefixes := nsPrefixes(&doc)

	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString("<resources")
	for _, a := range doc.Attrs {
		writeAttr(&b, a, prefixes)
	}
	b.WriteString(">\n")
	for _, e := range doc.Entries {
		if e.XMLName.Local == "string" && !keep(elemName(e)) {
			continue
		}
		b.WriteString("  <")
		b.WriteString(e.XMLName.Local)
		for _, a := range e.Attrs {
			writeAttr(&b, a, prefixes)
		}
		b.WriteString(">")
		b.WriteString(e.Inner)
		b.WriteString("</")
		b.WriteString(e.XMLName.Local)
		b.WriteString(">\n")
	}
	b.WriteString("</resources>\n")

	if err := os.WriteFile(path, b.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to rewrite %q: %w", path, err)
	}
	return nil
}

func elemName(e resourceElem) string {
	for _, a := range e.Attrs {
		if a.Name.Local == "name" {
			return a.Value
		}
	}
	return ""
}

// nsPrefixes maps each declared namespace URL back to its prefix. The parser
// resolves prefixed attribute names to the URL, so serialization needs the
// inverse to reproduce the source form.
func nsPrefixes(doc *resourcesDoc) map[string]string {
	prefixes := make(map[string]string)
	collect := func(attrs []xml.Attr) {
		for _, a := range attrs {
			if a.Name.Space == "xmlns" {
				prefixes[a.Value] = a.Name.Local
			}
		}
	}
	collect(doc.Attrs)
	for _, e := range doc.Entries {
		collect(e.Attrs)
	}
	return prefixes
}

func writeAttr(b *bytes.Buffer, a xml.Attr, prefixes map[string]string) {
	b.WriteByte(' ')
	switch {
	case a.Name.Space == "":
	case a.Name.Space == "xmlns":
		b.WriteString("xmlns:")
	default:
		prefix := a.Name.Space
		if p, ok := prefixes[a.Name.Space]; ok {
			prefix = p
		}
		b.WriteString(prefix)
		b.WriteByte(':')
	}
	b.WriteString(a.Name.Local)
	b.WriteString(`="`)
	b.WriteString(escapeAttr(a.Value))
	b.WriteByte('"')
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
