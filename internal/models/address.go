package models

import "strings"

// NormalizeAddress lowercases a hex address and trims surrounding space.
// Every address entering the system goes through it, so one wallet is one identity.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ValidAddress reports whether address looks like a Sui address or object ID:
// 0x followed by 1-64 hex digits.
func ValidAddress(address string) bool {
	hex, ok := strings.CutPrefix(address, "0x")
	if !ok || len(hex) == 0 || len(hex) > 64 {
		return false
	}
	for _, r := range hex {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F') {
			return false
		}
	}
	return true
}

// ParseAddress normalizes address and reports whether the result is valid.
func ParseAddress(address string) (string, bool) {
	address = NormalizeAddress(address)
	return address, ValidAddress(address)
}
