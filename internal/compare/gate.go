package compare

import (
	"github.com/joseph-ayodele/po-invoice-matcher/constants"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
)

const (
	suggestionOnePOOneInvoice = "Please check your documents and ensure one is a Purchase Order and the other is an Invoice."
	suggestionKeywords        = `Please ensure your documents contain keywords like "Purchase Order", "PO-", "Invoice", or "INV-".`
	suggestionSeparate        = "Please separate your documents and provide one complete PO and one complete Invoice."
)

// Validate gates a classified pair. Only {PO, Invoice} in either order passes;
// the checks run in a fixed order so a pair with several problems always
// reports the same code.
func Validate(poType, invoiceType constants.DocType) error {
	switch {
	case poType == constants.DocTypePO && invoiceType == constants.DocTypePO:
		return common.NewAppError(common.CodeInvalidDocumentTypes,
			"Both documents appear to be Purchase Orders (PO). Please provide one PO and one Invoice.", nil).
			WithSuggestion(suggestionOnePOOneInvoice)
	case poType == constants.DocTypeInvoice && invoiceType == constants.DocTypeInvoice:
		return common.NewAppError(common.CodeInvalidDocumentTypes,
			"Both documents appear to be Invoices. Please provide one PO and one Invoice.", nil).
			WithSuggestion(suggestionOnePOOneInvoice)
	case poType == constants.DocTypeUnknown || invoiceType == constants.DocTypeUnknown:
		return common.NewAppError(common.CodeUnknownDocumentTypes,
			"Unable to identify document types. Please ensure your documents contain clear PO or Invoice indicators.", nil).
			WithSuggestion(suggestionKeywords)
	case poType == constants.DocTypeMixed || invoiceType == constants.DocTypeMixed:
		return common.NewAppError(common.CodeMixedDocumentTypes,
			"Documents contain mixed content. Please ensure each document contains only one document type.", nil).
			WithSuggestion(suggestionSeparate)
	case poType.Known() && invoiceType.Known():
		return nil
	default:
		return common.NewAppError(common.CodeUnknownDocumentTypes,
			"Unable to identify document types.", nil).
			WithSuggestion(suggestionKeywords)
	}
}
