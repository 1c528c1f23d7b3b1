package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPublisherSkipsUnchangedOutputs(t *testing.T) {
	work := t.TempDir()
	outDir := t.TempDir()
	final := filepath.Join(outDir, "resources.ap_")
	if err := os.WriteFile(final, []byte("same"), 0o600); err != nil {
		t.Fatal(err)
	}
	before, err := os.Stat(final)
	if err != nil {
		t.Fatal(err)
	}

	pub := newPublisher(work)
	if err := os.MkdirAll(work, 0o750); err != nil {
		t.Fatal(err)
	}
	staged := pub.stage(final)
	if err := os.MkdirAll(filepath.Dir(staged), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(staged, []byte("same"), 0o600); err != nil {
		t.Fatal(err)
	}

	published, err := pub.publish()
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(published) != 0 {
		t.Errorf("published = %v, want none for identical content", published)
	}
	after, err := os.Stat(final)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Errorf("unchanged output rewritten")
	}
}

func TestPublisherRewritesChangedOutputs(t *testing.T) {
	work := t.TempDir()
	final := filepath.Join(t.TempDir(), "nested", "out.txt")

	pub := newPublisher(work)
	staged := pub.stage(final)
	if err := os.MkdirAll(filepath.Dir(staged), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(staged, []byte("fresh"), 0o600); err != nil {
		t.Fatal(err)
	}

	published, err := pub.publish()
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(published) != 1 || published[0] != final {
		t.Fatalf("published = %v", published)
	}
	data, err := os.ReadFile(final)
	if err != nil || string(data) != "fresh" {
		t.Fatalf("final content = %q, %v", data, err)
	}

	// Same final path always maps to the same staged slot.
	if again := pub.stage(final); again != staged {
		t.Errorf("stage(%q) returned a second slot", final)
	}
}
