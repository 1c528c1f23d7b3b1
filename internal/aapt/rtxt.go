package aapt

import (
	"bufio"
	"errors"
	"os"
	"sort"
	"strings"

	"respack/internal/diag"
)

// ResourceNames parses an R.txt symbol table and returns the names of the
// resources with the given type, sorted. R.txt lines look like
//
//	int string app_name 0x7f0b0011
//	int[] styleable Toolbar { 0x010100af, ... }
//
// Malformed lines are skipped; a missing file is a distinct input error.
func ResourceNames(path, resType string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, diag.Errorf(diag.InputMissingSymbolTable, path, "symbol table not found")
		}
		return nil, err
	}
	defer f.Close()

	seen := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		if fields[1] == resType {
			seen[fields[2]] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SharedStringNames returns the string-type resource names from a shared
// symbol table, as a set. These are the names governed by the shared-locale
// partition of the string filter.
func SharedStringNames(path string) (map[string]bool, error) {
	names, err := ResourceNames(path, "string")
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set, nil
}
