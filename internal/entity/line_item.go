package entity

// LineItem represents one purchased item row extracted from a document.
// Money fields are normalized decimal strings ("1200", "2400.00").
type LineItem struct {
	ItemNo      string  `json:"itemNo"`
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	UnitPrice   string  `json:"unitPrice"`
	Total       string  `json:"total"`
	Discount    string  `json:"discount"`
	Subtotal    string  `json:"subtotal"`
}
