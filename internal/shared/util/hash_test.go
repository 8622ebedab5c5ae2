package util

import "testing"

func TestHashOwnerKeyStable(t *testing.T) {
	a := HashOwnerKey("owner-1")
	b := HashOwnerKey("owner-1")
	if a != b {
		t.Fatalf("expected stable hash, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == HashOwnerKey("owner-2") {
		t.Fatalf("expected distinct owners to hash differently")
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "report.csv", want: "report.csv"},
		{in: "  payroll 2026.xlsx ", want: "payroll 2026.xlsx"},
		{in: "a/b.csv", want: "a_b.csv"},
		{in: "../../etc/passwd", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tc := range cases {
		got, err := SanitizeFileName(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("SanitizeFileName(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
