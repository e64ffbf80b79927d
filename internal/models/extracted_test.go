package models

import "testing"

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12", "12"},
		{" 1,5 ", "1.5"},
		{"1.250,75", "1250.75"},
		{"1,250.75", "1250.75"},
		{"90%", "90"},
		{"2 000", "2000"},
	}
	for _, tt := range tests {
		if got := normalizeNumber(tt.in); got != tt.want {
			t.Errorf("normalizeNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
