// Package financials reads document-level totals (subtotal, discount, tax,
// total) out of extracted text.
package financials

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/money"
)

type field int

const (
	fieldSubtotal field = iota
	fieldDiscount
	fieldTax
	fieldTotal
)

const amountExpr = `([₹$€£]?[\d,]+(?:\.\d+)?)`

type rule struct {
	field   field
	markers []string // lower-case substrings that claim the line
	re      *regexp.Regexp
}

// rules are tried in order; the first whose marker appears claims the line,
// even when its value fails to parse.
var rules = []rule{
	{
		field:   fieldSubtotal,
		markers: []string{"subtotal:", "sub total:", "sub-total:"},
		re:      regexp.MustCompile(`(?i)(?:Subtotal|Sub Total|Sub-total):\s*` + amountExpr),
	},
	{
		field:   fieldDiscount,
		markers: []string{"discount:", "disc:"},
		re:      regexp.MustCompile(`(?i)(?:Discount|Disc):\s*(-?[₹$€£]?-?[\d,]+(?:\.\d+)?)`),
	},
	{
		field:   fieldTax,
		markers: []string{"tax:", "gst:", "vat:"},
		re:      regexp.MustCompile(`(?i)(?:Tax|GST|VAT):?\s*` + amountExpr),
	},
	{
		field:   fieldTotal,
		markers: []string{"total:", "grand total:", "final total:"},
		re:      regexp.MustCompile(`(?i)(?:Total|Grand Total|Final Total):\s*` + amountExpr),
	},
	{
		field:   fieldTax,
		markers: []string{"tax ("},
		re:      regexp.MustCompile(`(?i)Tax\s*\([^)]*\)\s*:?\s*` + amountExpr),
	},
	{
		field:   fieldTax,
		markers: []string{"tax "},
		re:      regexp.MustCompile(`(?i)Tax\s+` + amountExpr),
	},
}

// Extract scans text line by line. A later line overwrites a field set by an
// earlier one, so the last occurrence of each marker wins.
func Extract(text string) entity.FinancialSummary {
	var out entity.FinancialSummary
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, r := range rules {
			if !containsAny(lower, r.markers) {
				continue
			}
			if m := r.re.FindStringSubmatch(line); m != nil {
				set(&out, r.field, money.NormalizeAmount(m[1]))
			}
			break
		}
	}
	return out
}

// Extractor adapts Extract to the orchestrator's extractor interface.
type Extractor struct{}

func (Extractor) Extract(text string) entity.FinancialSummary {
	return Extract(text)
}

func set(s *entity.FinancialSummary, f field, v string) {
	switch f {
	case fieldSubtotal:
		s.Subtotal = v
	case fieldDiscount:
		s.Discount = v
	case fieldTax:
		s.Tax = v
	case fieldTotal:
		s.Total = v
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
