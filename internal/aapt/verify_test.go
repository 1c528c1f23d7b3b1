package aapt

import (
	"context"
	"errors"
	"testing"

	"respack/internal/diag"
)

func TestIdentityPolicyResolve(t *testing.T) {
	tests := []struct {
		name    string
		policy  IdentityPolicy
		want    uint8
		wantErr diag.Code
	}{
		{name: "default", policy: IdentityPolicy{}, want: 0x7f},
		{name: "shared", policy: IdentityPolicy{SharedResources: true}, want: 0x00},
		{name: "explicit", policy: IdentityPolicy{ExplicitID: "0x7e"}, want: 0x7e},
		{
			name: "table beats explicit",
			policy: IdentityPolicy{
				ExplicitID:  "0x02",
				PackageName: "a",
				IDTable:     map[string]uint8{"a": 0x30},
			},
			want: 0x30,
		},
		{
			name: "table lookup",
			policy: IdentityPolicy{
				PackageName: "org.example",
				IDTable:     map[string]uint8{"org.example": 0x30},
			},
			want: 0x30,
		},
		{
			name: "missing table entry",
			policy: IdentityPolicy{
				PackageName: "org.absent",
				IDTable:     map[string]uint8{"org.example": 0x30},
			},
			wantErr: diag.ConfigMissingKey,
		},
		{
			name:    "bad explicit hex",
			policy:  IdentityPolicy{ExplicitID: "0xzz"},
			wantErr: diag.ConfigBadValue,
		},
		{
			name:    "explicit out of range",
			policy:  IdentityPolicy{ExplicitID: "0x1ff"},
			wantErr: diag.ConfigBadValue,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.policy.Resolve()
			if tc.wantErr != 0 {
				var d *diag.Diagnostic
				if !errors.As(err, &d) || d.Code != tc.wantErr {
					t.Fatalf("Resolve error = %v, want code %s", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tc.want {
				t.Errorf("Resolve = 0x%02x, want 0x%02x", got, tc.want)
			}
		})
	}
}

func TestVerifyPackageID(t *testing.T) {
	dump := func(id string) *scriptedRunner {
		return &scriptedRunner{handle: func(_ string, args []string) ([]byte, []byte, error) {
			return []byte("Binary APK\nPackage name=org.example id=" + id + "\n"), nil, nil
		}}
	}

	if err := VerifyPackageID(context.Background(), dump("0x7f"), "aapt2", "out.ap_", IdentityPolicy{}); err != nil {
		t.Fatalf("matching id: %v", err)
	}

	err := VerifyPackageID(context.Background(), dump("0x02"), "aapt2", "out.ap_", IdentityPolicy{})
	var d *diag.Diagnostic
	if !errors.As(err, &d) || d.Code != diag.PolicyPackageID {
		t.Fatalf("mismatch error = %v, want PolicyPackageID", err)
	}

	noID := &scriptedRunner{handle: func(_ string, _ []string) ([]byte, []byte, error) {
		return []byte("Binary APK\n"), nil, nil
	}}
	err = VerifyPackageID(context.Background(), noID, "aapt2", "out.ap_", IdentityPolicy{})
	if !errors.As(err, &d) || d.Code != diag.ToolDumpFailed {
		t.Fatalf("missing-id error = %v, want ToolDumpFailed", err)
	}
}
