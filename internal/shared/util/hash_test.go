package util

import (
	"errors"
	"strings"
	"testing"
)

func TestFingerprint(t *testing.T) {
	got := Fingerprint("Ada@Example.com")
	if got != Fingerprint("  ada@example.com ") {
		t.Fatalf("expected case and space to be ignored")
	}
	if len(got) != 16 || strings.Trim(got, "0123456789abcdef") != "" {
		t.Fatalf("expected 16 hex characters, got %q", got)
	}
	if got == Fingerprint("grace@example.com") {
		t.Fatalf("distinct inputs must differ")
	}
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"cv.pdf", "cv.pdf", false},
		{" My CV.pdf ", "My CV.pdf", false},
		{"C:\\Users\\ada\\cv.pdf", "cv.pdf", false},
		{"uploads/cv.pdf", "cv.pdf", false},
		{"../cv.pdf", "", true},
		{"dir/", "", true},
		{"cv\x00.pdf", "", true},
		{strings.Repeat("a", 256) + ".pdf", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := CleanFileName(tc.in)
			if tc.err {
				if !errors.Is(err, ErrBadFileName) {
					t.Fatalf("expected ErrBadFileName, got %q %v", got, err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("got %q %v, want %q", got, err, tc.want)
			}
		})
	}
}
