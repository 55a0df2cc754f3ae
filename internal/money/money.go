// Package money converts between user-entered decimal amounts and integer cents.
package money

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ErrInvalidAmount is returned for input that is not a non-negative decimal
// with at most two fractional digits.
var ErrInvalidAmount = errors.New("invalid amount")

var (
	stripper      = strings.NewReplacer(",", "", " ", "")
	amountPattern = regexp.MustCompile(`^\d+(\.\d{0,2})?$`)
)

// ParseCents parses a decimal amount such as "1,234.5" into cents (123450).
// Commas and spaces are ignored. Conversion is exact integer arithmetic.
func ParseCents(input string) (int64, error) {
	cleaned := strings.TrimSpace(stripper.Replace(input))
	if !amountPattern.MatchString(cleaned) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, input)
	}

	whole, frac, _ := strings.Cut(cleaned, ".")
	frac += strings.Repeat("0", 2-len(frac))

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, input)
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)

	if units > (math.MaxInt64-cents)/100 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, input)
	}
	return units*100 + cents, nil
}

// split returns the sign, whole units and remaining cents of an amount.
func split(cents int64) (negative bool, units uint64, rem uint64) {
	abs := uint64(cents)
	if cents < 0 {
		negative = true
		abs = uint64(-(cents + 1)) + 1
	}
	return negative, abs / 100, abs % 100
}

// FormatDecimal renders cents as a plain decimal ("-12.05") that ParseCents
// accepts back for non-negative values.
func FormatDecimal(cents int64) string {
	negative, units, rem := split(cents)
	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%02d", sign, units, rem)
}

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"CAD": "CA$",
	"AUD": "A$",
	"NZD": "NZ$",
	"MXN": "MX$",
	"BRL": "R$",
}

// Symbol returns the display prefix for a currency code.
func Symbol(currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if s, ok := symbols[code]; ok {
		return s
	}
	if code == "" {
		return "$"
	}
	return code + " "
}

// FormatCents renders cents for display with a currency symbol and digit
// grouping, e.g. FormatCents(-123456, "USD") == "-$1,234.56".
func FormatCents(cents int64, currency string) string {
	negative, units, rem := split(cents)
	sign := ""
	if negative {
		sign = "-"
	}
	// units never exceeds MaxInt64/100
	return fmt.Sprintf("%s%s%s.%02d", sign, Symbol(currency), humanize.Comma(int64(units)), rem)
}
