package aapt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOptimizeAppendsIDExemptions(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "resources.cfg")
	if err := os.WriteFile(base, []byte("string/app_name#no_obfuscate"), 0o600); err != nil {
		t.Fatal(err)
	}

	var captured string
	r := &scriptedRunner{handle: func(_ string, args []string) ([]byte, []byte, error) {
		for i, a := range args {
			if a == "--resources-config-path" {
				data, err := os.ReadFile(args[i+1])
				if err != nil {
					return nil, nil, err
				}
				captured = string(data)
			}
		}
		return nil, nil, nil
	}}

	cfg := OptimizeConfig{
		Binary:          "aapt2",
		Input:           "in.ap_",
		Output:          "out.ap_",
		ResourcesConfig: base,
		RTxt:            writeRTxt(t),
		ShortenPaths:    true,
		PathMapOut:      filepath.Join(dir, "paths.map"),
	}
	if err := Optimize(context.Background(), r, cfg); err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	want := "string/app_name#no_obfuscate\n" +
		"id/fab#no_obfuscate\n" +
		"id/toolbar#no_obfuscate\n"
	if captured != want {
		t.Errorf("resources config =\n%s\nwant\n%s", captured, want)
	}

	call := r.calls[0]
	joined := strings.Join(call, " ")
	for _, frag := range []string{
		"optimize", "--collapse-resource-names", "--shorten-resource-paths",
		"--resource-path-shortening-map", "-o out.ap_ in.ap_",
	} {
		if !strings.Contains(joined, frag) {
			t.Errorf("invocation missing %q: %s", frag, joined)
		}
	}
}
