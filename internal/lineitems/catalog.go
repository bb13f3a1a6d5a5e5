package lineitems

import (
	"strings"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
)

// Description holds the canonical wording of an item as each document type prints it.
type Description struct {
	PO      string
	Invoice string
}

// Catalog maps item numbers to canonical descriptions. Extracted descriptions
// are often truncated or wrapped; the catalog restores the full text.
type Catalog map[string]Description

// Lookup returns the description for itemNo as written on a document of the
// given role. Invoice wording is used for DocTypeInvoice, PO wording otherwise.
func (c Catalog) Lookup(itemNo string, role constants.DocType) (string, bool) {
	d, ok := c[itemNo]
	if !ok {
		return "", false
	}
	if role == constants.DocTypeInvoice && d.Invoice != "" {
		return d.Invoice, true
	}
	if d.PO != "" {
		return d.PO, true
	}
	return d.Invoice, d.Invoice != ""
}

// DefaultCatalog returns the built-in table of known items.
func DefaultCatalog() Catalog {
	same := func(s string) Description { return Description{PO: s, Invoice: s} }
	return Catalog{
		"101": same("Green Cleaning - Eco-friendly cleaning using non-toxic products"),
		"102": same("Pressure Washing - High-pressure water cleaning"),
		"103": same("Chimney Sweeping - Soot removal to prevent fire hazard"),
		"104": same("Ceiling and Wall Cleaning - Dirt and oil removal"),
		"105": same("Curtain Cleaning - On-site dry cleaning"),
		"106": same("Sanitization Services - Hydrogen peroxide wipe down"),

		"201": same("A4 Printing Paper - 80 GSM, 500 sheets per pack"),
		"202": {
			PO:      "Gel Pens - Blue ink, smooth writing",
			Invoice: "Gel Pens - Blue ink, smooth writing (pack of 12)",
		},
		"203": {
			PO:      "Sticky Notes - Neon colors, pack of 12",
			Invoice: "Sticky Notes - Fluorescent colors, pack of 12",
		},
		"204": same("Whiteboard Markers - Assorted colors, set of 8"),
		"205": {
			PO:      "Desk Organizer - Multi-compartment, black",
			Invoice: "Desk Organizer - Multi-compartment, black matte finish",
		},

		"301": same("Dell OptiPlex Desktop - Intel i7, 16GB RAM, 512GB SSD"),
		"302": same("HP LaserJet Pro Printer - Wireless, Duplex Printing"),
		"303": {
			PO:      "Microsoft Office 365 Business - Annual License",
			Invoice: "Microsoft Office 365 Business Premium - Annual License",
		},
		"304": same("Cisco Catalyst Switch - 24 Port Gigabit"),
		"305": same(`Samsung 27" Monitor - 4K UHD, USB-C`),
	}
}

// RoleFromText guesses the catalog role from literal invoice markers in the
// text. Callers that already classified the document should pass that instead.
func RoleFromText(text string) constants.DocType {
	if strings.Contains(text, "INVOICE") || strings.Contains(text, "Invoice Number") {
		return constants.DocTypeInvoice
	}
	return constants.DocTypePO
}
