package constants

import (
	"strings"
)

// DocType is the classification assigned to a document's extracted text.
type DocType string

const (
	DocTypePO      DocType = "PO"
	DocTypeInvoice DocType = "Invoice"
	DocTypeUnknown DocType = "Unknown"
	DocTypeMixed   DocType = "Mixed"
)

var allDocTypes = []DocType{
	DocTypePO,
	DocTypeInvoice,
	DocTypeUnknown,
	DocTypeMixed,
}

func (d DocType) String() string {
	return string(d)
}

// Known reports whether d is one of the two comparable document types.
func (d DocType) Known() bool {
	return d == DocTypePO || d == DocTypeInvoice
}

// DocTypesAsStrings lists every document type name.
func DocTypesAsStrings() []string {
	result := make([]string, len(allDocTypes))
	for i, dt := range allDocTypes {
		result[i] = string(dt)
	}
	return result
}

// ParseDocType accepts the canonical names plus a few common spellings.
func ParseDocType(input string) (DocType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return DocTypeUnknown, false
	}

	synonyms := map[string]DocType{
		"purchase order": DocTypePO,
		"purchase_order": DocTypePO,
		"po":             DocTypePO,
		"inv":            DocTypeInvoice,
		"bill":           DocTypeInvoice,
		"tax invoice":    DocTypeInvoice,
	}
	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range allDocTypes {
		if normalized == strings.ToLower(string(dt)) {
			return dt, true
		}
	}
	return DocTypeUnknown, false
}
