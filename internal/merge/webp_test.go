package merge

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"respack/internal/ledger"
)

func TestRecompress(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"drawable/photo.png":           "png",
		"drawable/frame.9.png":         "png",
		"drawable/star_gray.png":       "png",
		"drawable/daydream_icon_a.png": "png",
		"drawable/custom_skip.png":     "png",
		"drawable/vector.xml":          "<vector/>",
	})
	var images []Image
	for _, rel := range mustList(t, dir) {
		images = append(images, Image{Root: dir, Rel: rel})
	}

	r := &fakeRunner{}
	led := ledger.NewSet()
	opts := RecompressOptions{
		Binary:          "cwebp",
		ExtraExclusions: []*regexp.Regexp{regexp.MustCompile(`custom_skip\.png$`)},
	}
	if err := Recompress(context.Background(), r, opts, images, led); err != nil {
		t.Fatalf("Recompress: %v", err)
	}

	want := []string{
		"drawable/custom_skip.png",
		"drawable/daydream_icon_a.png",
		"drawable/frame.9.png",
		"drawable/photo.webp",
		"drawable/star_gray.png",
		"drawable/vector.xml",
	}
	got := mustList(t, dir)
	if len(got) != len(want) {
		t.Fatalf("tree after recompress = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tree after recompress = %v, want %v", got, want)
		}
	}

	if len(r.calls) != 1 {
		t.Fatalf("converter invoked %d times, want 1", len(r.calls))
	}
	call := r.calls[0]
	if call[0] != "cwebp" || !strings.HasSuffix(call[1], "photo.png") {
		t.Errorf("converter invocation = %v", call)
	}
	wantArgs := []string{"-mt", "-quiet", "-m", "6", "-q", "100", "-lossless", "-o"}
	for i, a := range wantArgs {
		if call[2+i] != a {
			t.Errorf("converter arg %d = %q, want %q", 2+i, call[2+i], a)
		}
	}

	if orig, ok := led.Lookup("drawable/photo.webp"); !ok || orig != "drawable/photo.png" {
		t.Errorf("ledger entry = %q, %v", orig, ok)
	}
}

func TestRecompressFailureAborts(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"drawable/a.png": "png",
		"drawable/b.png": "png",
	})
	var images []Image
	for _, rel := range mustList(t, dir) {
		images = append(images, Image{Root: dir, Rel: rel})
	}

	boom := errors.New("exit status 1")
	r := &fakeRunner{fail: func(args []string) error {
		if strings.HasSuffix(args[0], "b.png") {
			return boom
		}
		return nil
	}}
	led := ledger.NewSet()
	err := Recompress(context.Background(), r, RecompressOptions{Binary: "cwebp"}, images, led)
	if err == nil {
		t.Fatalf("Recompress succeeded with a failing conversion")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error chain lost the converter failure: %v", err)
	}
	if led.Len() != 0 {
		t.Errorf("failed pass recorded %d ledger entries, want 0", led.Len())
	}
}

func TestRecompressCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenCache("respack-test")
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}

	run := func() int {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"drawable/photo.png": "same pixels"})
		r := &fakeRunner{}
		opts := RecompressOptions{Binary: "cwebp", Cache: cache}
		images := []Image{{Root: dir, Rel: "drawable/photo.png"}}
		if err := Recompress(context.Background(), r, opts, images, ledger.NewSet()); err != nil {
			t.Fatalf("Recompress: %v", err)
		}
		if !exists(dir, "drawable/photo.webp") {
			t.Fatalf("converted file missing")
		}
		return len(r.calls)
	}

	if calls := run(); calls != 1 {
		t.Fatalf("cold cache ran converter %d times, want 1", calls)
	}
	if calls := run(); calls != 0 {
		t.Fatalf("warm cache ran converter %d times, want 0", calls)
	}
}
