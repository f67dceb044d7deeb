package normalize

import "testing"

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"78.5", 78.5, true},
		{" 80 ", 80, true},
		{"-1.25", -1.25, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"12abc", 0, false},
	}

	for _, tt := range tests {
		got := ParseNumber(tt.in)
		if got.Valid != tt.valid {
			t.Errorf("ParseNumber(%q).Valid = %v, want %v", tt.in, got.Valid, tt.valid)
			continue
		}
		if got.Valid && got.Float64 != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got.Float64, tt.want)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"$55,000", 55000, true},
		{"55000", 55000, true},
		{"$1,234,567.50", 1234567.5, true},
		{" $ 42,000 ", 42000, true},
		{"€30.000", 30, true},
		{"-", 0, false},
		{"(X)", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got := ParseCurrency(tt.in)
		if got.Valid != tt.valid {
			t.Errorf("ParseCurrency(%q).Valid = %v, want %v", tt.in, got.Valid, tt.valid)
			continue
		}
		if got.Valid && got.Float64 != tt.want {
			t.Errorf("ParseCurrency(%q) = %v, want %v", tt.in, got.Float64, tt.want)
		}
	}
}
