package records

import (
	"testing"
	"unicode/utf8"
)

func TestNormalizeGeoKey(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"pads short code", "6037", "06037", true},
		{"keeps trailing five", "0606037", "06037", true},
		{"census geo id", "0500000US06037", "06037", true},
		{"already five", "48201", "48201", true},
		{"single digit", "1", "00001", true},
		{"trims whitespace", " 1001 ", "01001", true},
		{"blank", "  ", "", false},
		{"non-ascii", "0603é", "", false},
		{"multibyte tail", "US中文", "", false},
		{"punctuation", "06-037", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeGeoKey(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeGeoKey(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("NormalizeGeoKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if ok && len(got) != GeoKeyWidth {
				t.Errorf("len = %d, want %d", len(got), GeoKeyWidth)
			}
			if !utf8.ValidString(got) {
				t.Errorf("NormalizeGeoKey(%q) = %q is not valid UTF-8", tt.in, got)
			}
		})
	}
}
