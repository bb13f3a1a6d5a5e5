package llm

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
)

// MaxPromptTextChars caps each document's text in the prompt.
const MaxPromptTextChars = 12000

const replyTemplate = `{
  "differences": [
    {"type": "amount", "poValues": ["subtotal", "discount", "tax", "total"], "invoiceValues": ["subtotal", "discount", "tax", "total"], "match": true},
    {"type": "date", "poValues": ["date"], "invoiceValues": ["date"], "match": true},
    {"type": "description", "poValues": ["PO description"], "invoiceValues": ["Invoice description"], "match": true}
  ],
  "recommendations": ["recommendation"]
}`

// BuildComparisonPrompt renders the single prompt sent to a Reasoner.
func BuildComparisonPrompt(req ComparisonRequest) string {
	parts := []string{
		"You compare a Purchase Order (PO) against an Invoice and report discrepancies.",
		"Return ONLY JSON in exactly this shape, with no prose and no markdown:",
		replyTemplate,
		"The reply must also satisfy this JSON Schema:",
		mustJSON(BuildComparisonJSONSchema()),
		"",
		"Compare: amounts (qty, unit cost, line totals, subtotal, discount, tax, final total), dates, and item descriptions.",
		"Descriptions are compared as exact text: any word difference is a mismatch (\"Neon colors\" vs \"Fluorescent colors\" is a MISMATCH; \"pack of 12\" vs \"pack of 12\" is a MATCH).",
		"Recommendations must be specific and actionable, naming item numbers, e.g. \"Verify quantities for items 202, 203\", \"Review description for item 203 - 'Neon' vs 'Fluorescent'\", or \"All items match perfectly\" when nothing differs.",
		"",
		"PO Text:",
		truncate(req.POText, MaxPromptTextChars),
		"",
		"Invoice Text:",
		truncate(req.InvoiceText, MaxPromptTextChars),
		"",
		"EXTRACTED FINANCIAL INFORMATION:",
		"PO Financials: " + describeFinancials(req.POFinancials),
		"Invoice Financials: " + describeFinancials(req.InvoiceFinancials),
	}
	return strings.Join(parts, "\n")
}

func describeFinancials(f entity.FinancialSummary) string {
	if f.IsEmpty() {
		return "not found"
	}
	val := func(s string) string {
		if s == "" {
			return "n/a"
		}
		return s
	}
	return "Subtotal: " + val(f.Subtotal) +
		", Discount: " + val(f.Discount) +
		", Tax: " + val(f.Tax) +
		", Total: " + val(f.Total)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n...(truncated)"
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
