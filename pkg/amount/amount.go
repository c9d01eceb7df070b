// Package amount converts between human decimal strings and base-unit
// integer strings. All math is big.Int; floats never touch token amounts.
package amount

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ToBaseUnits converts a decimal amount string to base units at the asset's
// precision. "10" at 6 decimals becomes "10000000".
func ToBaseUnits(decimal string, decimals int) (string, error) {
	if decimals < 0 {
		return "", fmt.Errorf("decimals must be >= 0")
	}
	decimal = strings.TrimSpace(decimal)
	if !decimalPattern.MatchString(decimal) {
		return "", fmt.Errorf("invalid amount %q: expected decimal form like 1.23", decimal)
	}

	parts := strings.SplitN(decimal, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > decimals {
		return "", fmt.Errorf("amount precision exceeds asset decimals (%d)", decimals)
	}

	combined := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	combined = strings.TrimLeft(combined, "0")
	if combined == "" {
		return "0", nil
	}
	if _, ok := new(big.Int).SetString(combined, 10); !ok {
		return "", fmt.Errorf("invalid amount %q", decimal)
	}
	return combined, nil
}

// FromBaseUnits formats a base-unit integer string as a decimal string,
// trimming trailing zeros.
func FromBaseUnits(baseUnits string, decimals int) (string, error) {
	n, ok := new(big.Int).SetString(baseUnits, 10)
	if !ok || n.Sign() < 0 {
		return "", fmt.Errorf("invalid base-unit amount %q", baseUnits)
	}
	if decimals == 0 {
		return n.String(), nil
	}

	s := n.String()
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	if fracPart == "" {
		return intPart, nil
	}
	return intPart + "." + fracPart, nil
}

// IsPositive reports whether a decimal amount string parses to a value
// strictly greater than zero at the given precision.
func IsPositive(decimal string, decimals int) bool {
	base, err := ToBaseUnits(decimal, decimals)
	if err != nil {
		return false
	}
	return base != "0"
}

// HasSufficientBalance reports whether a base-unit balance covers a decimal
// amount at the asset's precision. Used as the client-side pre-check before
// a quote is even requested.
func HasSufficientBalance(balanceBaseUnits, decimal string, decimals int) (bool, error) {
	need, err := ToBaseUnits(decimal, decimals)
	if err != nil {
		return false, err
	}
	have, ok := new(big.Int).SetString(balanceBaseUnits, 10)
	if !ok {
		return false, fmt.Errorf("invalid balance %q", balanceBaseUnits)
	}
	needInt, _ := new(big.Int).SetString(need, 10)
	return have.Cmp(needInt) >= 0, nil
}
