package entity

// FinancialSummary represents document-level totals; absent fields are empty.
type FinancialSummary struct {
	Subtotal string `json:"subtotal,omitempty"`
	Discount string `json:"discount,omitempty"`
	Tax      string `json:"tax,omitempty"`
	Total    string `json:"total,omitempty"`
}

// Values returns the fields in report order: subtotal, discount, tax, total.
func (f FinancialSummary) Values() []string {
	return []string{f.Subtotal, f.Discount, f.Tax, f.Total}
}

// IsEmpty reports whether no field was extracted.
func (f FinancialSummary) IsEmpty() bool {
	return f.Subtotal == "" && f.Discount == "" && f.Tax == "" && f.Total == ""
}
