// Package format renders amounts and addresses for display.
// Balances are accumulated at full precision; rounding happens only here.
package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Default truncation keeps "0x" plus four hex digits and the last four.
const (
	DefaultAddressStart = 6
	DefaultAddressEnd   = 4
)

var (
	mistPerSui = decimal.NewFromInt(1_000_000_000)
	printer    = message.NewPrinter(language.AmericanEnglish)
)

// Currency formats an amount with two decimal places behind a currency symbol.
// An empty symbol means "$".
func Currency(amount float64, symbol string) string {
	if symbol == "" {
		symbol = "$"
	}
	return symbol + decimal.NewFromFloat(amount).StringFixed(2)
}

// TruncateAddress shortens an address to its first start and last end characters.
// Addresses that already fit are returned unchanged.
func TruncateAddress(address string, start, end int) string {
	if address == "" {
		return ""
	}
	if start < 0 || end < 0 || len(address) <= start+end {
		return address
	}
	return address[:start] + "..." + address[len(address)-end:]
}

// ShortAddress truncates with the default widths.
func ShortAddress(address string) string {
	return TruncateAddress(address, DefaultAddressStart, DefaultAddressEnd)
}

// SuiAmount converts a MIST amount (decimal string, as returned by the chain) to SUI
// with thousands separators and between two and six fraction digits.
func SuiAmount(mist string) (string, error) {
	mist = strings.TrimSpace(mist)
	if mist == "" {
		return "0", nil
	}
	d, err := decimal.NewFromString(mist)
	if err != nil {
		return "", fmt.Errorf("invalid MIST amount %q: %w", mist, err)
	}
	if d.IsZero() {
		return "0", nil
	}
	return groupDecimal(d.Div(mistPerSui).Round(6)), nil
}

// groupDecimal renders d with grouped integer digits and 2..6 fraction digits.
func groupDecimal(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(6)
	intPart, frac, _ := strings.Cut(fixed, ".")
	frac = strings.TrimRight(frac, "0")
	for len(frac) < 2 {
		frac += "0"
	}

	whole := decimal.RequireFromString(intPart).IntPart()
	return sign + printer.Sprintf("%d", whole) + "." + frac
}
