package models

import "testing"

const fullAddress = "0x5ecfe35245a833bdf3e11c7dce072e41a34d7b29dc2f0890fa89806922644586"

func TestValidAddress(t *testing.T) {
	tests := []struct {
		address string
		want    bool
	}{
		{fullAddress, true},
		{"0x2", true},
		{"0xABCdef", true},
		{"5ecf", false},
		{"0x", false},
		{"0x" + fullAddress[2:] + "0", false},
		{"0xg1", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidAddress(tt.address); got != tt.want {
			t.Errorf("ValidAddress(%q) = %v, want %v", tt.address, got, tt.want)
		}
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{" 0xB0B ", "0xb0b", true},
		{"0XB0B", "0xb0b", true},
		{"bob", "bob", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseAddress(tt.in)
		if got != tt.want || ok != tt.valid {
			t.Errorf("ParseAddress(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.valid)
		}
	}
}
