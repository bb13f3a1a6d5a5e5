package lineitems

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/money"
)

func TestExtractTriplet(t *testing.T) {
	text := "PURCHASE ORDER\n301\nDell OptiPlex Desktop - Intel i7, 16GB RAM, 512GB SSD\n2$1200$2400\n"
	got := NewExtractor().Extract(text, constants.DocTypePO)
	want := []entity.LineItem{{
		ItemNo:      "301",
		Description: "Dell OptiPlex Desktop - Intel i7, 16GB RAM, 512GB SSD",
		Qty:         2,
		UnitPrice:   "1200",
		Total:       "2400",
		Discount:    "0.00",
		Subtotal:    "2400",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractSingleLineLayouts(t *testing.T) {
	tests := []struct {
		name string
		line string
		role constants.DocType
		want entity.LineItem
	}{
		{
			name: "compact",
			line: "301Dell OptiPlex Desktop - Intel i7, 16GB RAM, 512GB SSD2$1200$2400",
			role: constants.DocTypePO,
			want: entity.LineItem{ItemNo: "301", Description: "Dell OptiPlex Desktop - Intel i7, 16GB RAM, 512GB SSD",
				Qty: 2, UnitPrice: "1200", Total: "2400", Discount: "0", Subtotal: "2400.00"},
		},
		{
			name: "compact truncated with discount",
			line: "201A4 Printing Paper...10$5$50$0",
			role: constants.DocTypePO,
			want: entity.LineItem{ItemNo: "201", Description: "A4 Printing Paper - 80 GSM, 500 sheets per pack",
				Qty: 10, UnitPrice: "5", Total: "50", Discount: "0", Subtotal: "50.00"},
		},
		{
			name: "spaced with currency",
			line: "302 HP LaserJet Pro Printer 1 $450.00 $450.00",
			role: constants.DocTypePO,
			want: entity.LineItem{ItemNo: "302", Description: "HP LaserJet Pro Printer - Wireless, Duplex Printing",
				Qty: 1, UnitPrice: "450.00", Total: "450.00", Discount: "0", Subtotal: "450.00"},
		},
		{
			name: "spaced with discount column",
			line: "204 Whiteboard Markers 8 $5.00 $40.00 $2.00",
			role: constants.DocTypeInvoice,
			want: entity.LineItem{ItemNo: "204", Description: "Whiteboard Markers - Assorted colors, set of 8",
				Qty: 8, UnitPrice: "5.00", Total: "40.00", Discount: "2.00", Subtotal: "42.00"},
		},
		{
			name: "description ending in a number",
			line: "999 Copy Paper 500 10 5.00 50.00",
			role: constants.DocTypePO,
			want: entity.LineItem{ItemNo: "999", Description: "Copy Paper 500",
				Qty: 10, UnitPrice: "5.00", Total: "50.00", Discount: "0", Subtotal: "50.00"},
		},
		{
			name: "thousands separators",
			line: "999 Server Rack 2 $1,250.00 $2,500.00",
			role: constants.DocTypePO,
			want: entity.LineItem{ItemNo: "999", Description: "Server Rack",
				Qty: 2, UnitPrice: "1250.00", Total: "2500.00", Discount: "0", Subtotal: "2500.00"},
		},
		{
			name: "csv",
			line: "105,Curtain Cleaning,3,150,450",
			role: constants.DocTypePO,
			want: entity.LineItem{ItemNo: "105", Description: "Curtain Cleaning - On-site dry cleaning",
				Qty: 3, UnitPrice: "150", Total: "450", Discount: "0", Subtotal: "450.00"},
		},
		{
			name: "loose item number glued to text",
			line: "777Widget Deluxe 4 10 40",
			role: constants.DocTypePO,
			want: entity.LineItem{ItemNo: "777", Description: "Widget Deluxe",
				Qty: 4, UnitPrice: "10", Total: "40", Discount: "0", Subtotal: "40.00"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewExtractor().Extract(tt.line, tt.role)
			if diff := cmp.Diff([]entity.LineItem{tt.want}, got); diff != "" {
				t.Errorf("Extract(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestExtractCatalogRole(t *testing.T) {
	line := "203 Sticky Notes 5 $3.00 $15.00"
	po := NewExtractor().Extract(line, constants.DocTypePO)
	inv := NewExtractor().Extract(line, constants.DocTypeInvoice)
	if len(po) != 1 || len(inv) != 1 {
		t.Fatalf("expected one item each, got %d and %d", len(po), len(inv))
	}
	if po[0].Description != "Sticky Notes - Neon colors, pack of 12" {
		t.Errorf("po description = %q", po[0].Description)
	}
	if inv[0].Description != "Sticky Notes - Fluorescent colors, pack of 12" {
		t.Errorf("invoice description = %q", inv[0].Description)
	}
}

func TestExtractSkipsNoise(t *testing.T) {
	text := `PURCHASE ORDER
Item Description Qty Price Total
101 Payment due 1 5 5
100 Terms net 30 1 1 1
123 Acc. No: 55 1 1 1
12
301
x
1$1$1
Subtotal: $100
`
	got := NewExtractor().Extract(text, constants.DocTypePO)
	if len(got) != 0 {
		t.Errorf("expected no items, got %+v", got)
	}
}

func TestExtractOrderAndSubtotalInvariant(t *testing.T) {
	text := `INVOICE
Invoice Number: INV-9
301
Dell OptiPlex Desktop - Intel i7, 16GB RAM, 512GB SSD
2$1200$2400
204 Whiteboard Markers 8 $5.00 $40.00 $2.00
105,Curtain Cleaning,3,150,450
Grand Total: $2,892.00
`
	got := NewExtractor().Extract(text, RoleFromText(text))
	wantOrder := []string{"301", "204", "105"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d items, want %d: %+v", len(got), len(wantOrder), got)
	}
	for i, item := range got {
		if item.ItemNo != wantOrder[i] {
			t.Errorf("item %d = %s, want %s", i, item.ItemNo, wantOrder[i])
		}
		if !money.Equal(item.Subtotal, money.AddFixed(item.Total, item.Discount)) {
			t.Errorf("item %s subtotal %s != total %s + discount %s", item.ItemNo, item.Subtotal, item.Total, item.Discount)
		}
	}
}

func TestExtractEmpty(t *testing.T) {
	got := NewExtractor().Extract("", constants.DocTypePO)
	if got == nil || len(got) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", got)
	}
}

func TestCustomCatalog(t *testing.T) {
	e := NewExtractor(WithCatalog(Catalog{"555": {PO: "Custom PO wording", Invoice: "Custom invoice wording"}}))
	got := e.Extract("555 Thing 1 2 2", constants.DocTypeInvoice)
	if len(got) != 1 || got[0].Description != "Custom invoice wording" {
		t.Errorf("got %+v", got)
	}
}

func TestRoleFromText(t *testing.T) {
	if RoleFromText("TAX INVOICE") != constants.DocTypeInvoice {
		t.Error("upper-case INVOICE should pick the invoice role")
	}
	if RoleFromText("Invoice Number: 5") != constants.DocTypeInvoice {
		t.Error("Invoice Number should pick the invoice role")
	}
	if RoleFromText("Purchase Order") != constants.DocTypePO {
		t.Error("default role should be PO")
	}
}
