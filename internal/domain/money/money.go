// Package money converts between minor-unit integers, the only amount
// representation the ledger stores, and the string forms the gateways
// accept. No float64 appears anywhere on this path.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyExponents maps ISO currency codes to their minor-unit digits.
// Unlisted currencies default to 2.
var currencyExponents = map[string]int32{
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"VND": 0,
	"JPY": 0,
	"KRW": 0,
}

// Exponent returns the number of minor-unit digits for a currency code.
func Exponent(currency string) int32 {
	if exp, ok := currencyExponents[strings.ToUpper(currency)]; ok {
		return exp
	}
	return 2
}

// FormatMinor renders a minor-unit amount as a fixed-decimal major-unit
// string, e.g. 150000 with exponent 2 becomes "1500.00".
func FormatMinor(minor int64, exponent int32) string {
	return decimal.NewFromInt(minor).Shift(-exponent).StringFixed(exponent)
}

// ParseMinor parses a decimal string back into minor units, rejecting
// anything with more precision than the exponent allows.
func ParseMinor(value string, exponent int32) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", value, err)
	}
	minor := d.Shift(exponent)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %q exceeds currency precision", value)
	}
	return minor.IntPart(), nil
}

// ParseMinorUnits parses an amount already expressed in minor units, such as
// the raw integer the redirect gateway echoes back on its callback.
func ParseMinorUnits(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", value, err)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("amount %q is not a whole number of minor units", value)
	}
	return d.IntPart(), nil
}
