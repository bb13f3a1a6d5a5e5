package financials

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want entity.FinancialSummary
	}{
		{
			name: "full block",
			text: "Subtotal: $5,500.00\nDiscount: -$275.00\nTax (10%): $522.50\nGrand Total: $5,747.50\n",
			want: entity.FinancialSummary{Subtotal: "5500.00", Discount: "-275.00", Tax: "522.50", Total: "5747.50"},
		},
		{
			name: "alternate spellings",
			text: "SUB-TOTAL: 100\nDisc: 5\nGST: ₹1,800\nFinal Total: 1,895",
			want: entity.FinancialSummary{Subtotal: "100", Discount: "5", Tax: "1800", Total: "1895"},
		},
		{
			name: "last occurrence wins",
			text: "Total: $10\nnotes\nTotal: $20\n",
			want: entity.FinancialSummary{Total: "20"},
		},
		{
			name: "sub total is not read as total",
			text: "Sub Total: 90\n",
			want: entity.FinancialSummary{Subtotal: "90"},
		},
		{
			name: "marker without value contributes nothing",
			text: "Total: $50\nTotal: TBD\n",
			want: entity.FinancialSummary{Total: "50"},
		},
		{
			name: "bare tax amount",
			text: "Tax 12.00\n",
			want: entity.FinancialSummary{Tax: "12.00"},
		},
		{
			name: "vat with currency",
			text: "VAT: £20.00\n",
			want: entity.FinancialSummary{Tax: "20.00"},
		},
		{
			name: "nothing recognisable",
			text: "hello\nworld",
			want: entity.FinancialSummary{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractorAdapter(t *testing.T) {
	got := Extractor{}.Extract("Tax: 7")
	if got.Tax != "7" {
		t.Errorf("tax = %q", got.Tax)
	}
}
