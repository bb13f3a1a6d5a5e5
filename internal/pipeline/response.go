package pipeline

import (
	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
)

const previewChars = 200

// Response is the outward shape of one comparison request.
type Response struct {
	Success      bool                     `json:"success"`
	Message      string                   `json:"message"`
	RequestID    string                   `json:"requestId,omitempty"`
	Comparison   *entity.ComparisonReport `json:"comparison,omitempty"`
	POItems      []entity.LineItem        `json:"poItems"`
	InvoiceItems []entity.LineItem        `json:"invoiceItems"`
	Financials   *FinancialsPair          `json:"financials,omitempty"`
	POText       string                   `json:"poText,omitempty"`
	InvoiceText  string                   `json:"invoiceText,omitempty"`
	ParsingInfo  *ParsingInfo             `json:"parsingInfo,omitempty"`
	Error        string                   `json:"error,omitempty"`
	Details      *ErrorDetails            `json:"details,omitempty"`
}

type FinancialsPair struct {
	PO      entity.FinancialSummary `json:"po"`
	Invoice entity.FinancialSummary `json:"invoice"`
}

type ParsingInfo struct {
	POMethod      string `json:"poMethod"`
	InvoiceMethod string `json:"invoiceMethod"`
	POPages       int    `json:"poPages"`
	InvoicePages  int    `json:"invoicePages"`
}

type ErrorDetails struct {
	DetectedTypes DetectedTypes `json:"detectedTypes"`
	Suggestion    string        `json:"suggestion,omitempty"`
}

type DetectedTypes struct {
	PO      string `json:"po"`
	Invoice string `json:"invoice"`
}

// BuildResponse shapes a request outcome. A failed request never carries a
// partial comparison.
func BuildResponse(res *Result, err error) Response {
	if res == nil {
		res = &Result{}
	}
	files := res.FromFiles

	if err != nil {
		out := Response{
			Success:      false,
			Message:      failureMessage(files),
			RequestID:    res.RequestID,
			POItems:      []entity.LineItem{},
			InvoiceItems: []entity.LineItem{},
			Error:        err.Error(),
		}
		if appErr, ok := common.AsAppError(err); ok {
			out.Message = appErr.Message
			out.Error = appErr.Code
			if res.POType != "" || appErr.Suggestion != "" {
				out.Details = &ErrorDetails{
					DetectedTypes: DetectedTypes{PO: res.POType.String(), Invoice: res.InvoiceType.String()},
					Suggestion:    appErr.Suggestion,
				}
			}
		}
		return out
	}

	report := res.Report
	out := Response{
		Success:      true,
		Message:      successMessage(files),
		RequestID:    res.RequestID,
		Comparison:   &report,
		POItems:      nonNil(res.POItems),
		InvoiceItems: nonNil(res.InvoiceItems),
		Financials:   &FinancialsPair{PO: res.POFinancials, Invoice: res.InvoiceFinancials},
		POText:       preview(res.POText),
		InvoiceText:  preview(res.InvoiceText),
	}
	if res.POSource != nil && res.InvoiceSource != nil {
		out.ParsingInfo = &ParsingInfo{
			POMethod:      res.POSource.Method,
			InvoiceMethod: res.InvoiceSource.Method,
			POPages:       res.POSource.Pages,
			InvoicePages:  res.InvoiceSource.Pages,
		}
	}
	return out
}

func successMessage(files bool) string {
	if files {
		return "PDF comparison completed successfully"
	}
	return "Text comparison completed successfully"
}

func failureMessage(files bool) string {
	if files {
		return "PDF comparison failed"
	}
	return "Text comparison failed"
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewChars {
		return s
	}
	return string(r[:previewChars]) + "..."
}

func nonNil(items []entity.LineItem) []entity.LineItem {
	if items == nil {
		return []entity.LineItem{}
	}
	return items
}
