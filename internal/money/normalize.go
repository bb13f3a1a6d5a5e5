// Package money cleans currency-formatted strings and does decimal arithmetic
// on them without going through float64.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var glyphStripper = strings.NewReplacer(
	"₹", "",
	"$", "",
	"€", "",
	"£", "",
	",", "",
)

// NormalizeAmount strips currency glyphs, thousands separators and surrounding
// whitespace. A leading sign and the decimal point are kept. It never fails:
// an input with nothing left yields "0", anything else is returned as cleaned.
func NormalizeAmount(raw string) string {
	s := strings.TrimSpace(glyphStripper.Replace(raw))
	if s == "" {
		return "0"
	}
	return s
}

// Parse is a tolerant decimal parse of a raw or normalized amount; unparsable
// input yields zero and ok=false.
func Parse(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(NormalizeAmount(raw))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// AddFixed returns a+b rounded to two decimals ("2400" + "0" -> "2400.00").
func AddFixed(a, b string) string {
	x, _ := Parse(a)
	y, _ := Parse(b)
	return x.Add(y).StringFixed(2)
}

// Equal compares two amounts numerically; when either side does not parse the
// raw strings are compared instead.
func Equal(a, b string) bool {
	x, okA := Parse(a)
	y, okB := Parse(b)
	if !okA || !okB {
		return a == b
	}
	return x.Equal(y)
}
