package diag

import (
	"errors"
	"testing"
)

func TestCodeString(t *testing.T) {
	if got := PolicyPackageID.String(); got != "RP4001" {
		t.Errorf("PolicyPackageID.String() = %q, want %q", got, "RP4001")
	}
	if got := UnknownCode.String(); got != "RP0000" {
		t.Errorf("UnknownCode.String() = %q, want %q", got, "RP0000")
	}
}

func TestDiagnosticError(t *testing.T) {
	d := Errorf(InputMissingArchive, "deps/lib.zip", "dependency archive not found")
	want := "RP2001: dependency archive not found: deps/lib.zip"
	if d.Error() != want {
		t.Errorf("Error() = %q, want %q", d.Error(), want)
	}

	noPath := Errorf(ConfigContradiction, "", "package id and shared resources are mutually exclusive")
	if got := noPath.Error(); got != "RP1001: package id and shared resources are mutually exclusive" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("exit status 1")
	d := Wrap(ToolLinkFailed, "out/resources.ap_", cause)
	if !errors.Is(d, cause) {
		t.Error("wrapped diagnostic should match its cause via errors.Is")
	}
	if d.Severity != SevError {
		t.Errorf("Severity = %v, want SevError", d.Severity)
	}
}

func TestWithNote(t *testing.T) {
	d := Warningf(PolicyManifest, "AndroidManifest.xml", "manifest differs from expectation")
	d.WithNote("-uses-sdk").WithNote("+uses-feature")
	if len(d.Notes) != 2 || d.Notes[0].Msg != "-uses-sdk" {
		t.Errorf("Notes = %v", d.Notes)
	}
}

func TestBag(t *testing.T) {
	b := NewBag()
	if b.HasErrors() || b.HasWarnings() || b.Len() != 0 {
		t.Fatal("empty bag should report nothing")
	}

	b.Add(*Warningf(PolicyManifest, "b.xml", "drift"))
	if b.HasErrors() {
		t.Error("warning-only bag should not report errors")
	}
	if !b.HasWarnings() {
		t.Error("bag should report warnings")
	}

	b.Add(*Errorf(MergeDensityCollision, "drawable-v4/icon.png", "destination exists"))
	b.Add(*Errorf(ConfigBadValue, "respack.toml", "bad package id"))
	if !b.HasErrors() {
		t.Error("bag should report errors")
	}

	items := b.Items()
	if len(items) != 3 {
		t.Fatalf("Items() len = %d, want 3", len(items))
	}
	// Sorted by code: 1003, 4002, 5002.
	wantOrder := []Code{ConfigBadValue, PolicyManifest, MergeDensityCollision}
	for i, want := range wantOrder {
		if items[i].Code != want {
			t.Errorf("items[%d].Code = %s, want %s", i, items[i].Code, want)
		}
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
}
