package merge

import (
	"errors"
	"reflect"
	"testing"

	"respack/internal/diag"
	"respack/internal/ledger"
)

func TestMigrateMdpi(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"drawable-mdpi-v4/icon.png": "pixels",
		"drawable-mdpi/photo.webp":  "pixels",
		"drawable-mdpi/vector.xml":  "<vector/>",
		"drawable-hdpi-v4/icon.png": "pixels",
		"mipmap-mdpi/launcher.png":  "pixels",
	})
	led := ledger.NewSet()
	if err := MigrateMdpi(dir, led); err != nil {
		t.Fatalf("MigrateMdpi: %v", err)
	}

	want := []string{
		"drawable-hdpi-v4/icon.png",
		"drawable-mdpi/vector.xml",
		"drawable-v4/icon.png",
		"drawable/photo.webp",
		"mipmap-mdpi/launcher.png",
	}
	if got := mustList(t, dir); !reflect.DeepEqual(got, want) {
		t.Fatalf("tree after migration = %v, want %v", got, want)
	}

	if orig, ok := led.Lookup("drawable-v4/icon.png"); !ok || orig != "drawable-mdpi-v4/icon.png" {
		t.Errorf("ledger entry = %q, %v", orig, ok)
	}
}

func TestMigrateMdpiCollision(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"drawable-mdpi-v4/icon.png": "migrated",
		"drawable-v4/icon.png":      "already there",
	})
	err := MigrateMdpi(dir, ledger.NewSet())
	var d *diag.Diagnostic
	if !errors.As(err, &d) || d.Code != diag.MergeDensityCollision {
		t.Fatalf("MigrateMdpi error = %v, want MergeDensityCollision", err)
	}
}
