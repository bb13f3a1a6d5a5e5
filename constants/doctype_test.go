package constants

import "testing"

func TestParseDocType(t *testing.T) {
	tests := []struct {
		in   string
		want DocType
		ok   bool
	}{
		{"PO", DocTypePO, true},
		{" purchase order ", DocTypePO, true},
		{"invoice", DocTypeInvoice, true},
		{"Bill", DocTypeInvoice, true},
		{"mixed", DocTypeMixed, true},
		{"receipt", DocTypeUnknown, false},
		{"", DocTypeUnknown, false},
	}
	for _, tt := range tests {
		got, ok := ParseDocType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDocType(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDocTypesAsStrings(t *testing.T) {
	got := DocTypesAsStrings()
	if len(got) != 4 || got[0] != "PO" || got[1] != "Invoice" {
		t.Errorf("DocTypesAsStrings() = %v", got)
	}
}
