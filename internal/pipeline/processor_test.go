package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/compare"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/extract"
)

const (
	samplePO = `PURCHASE ORDER
PO-1001
101  Office cleaning  2  $100.00  $200.00
Subtotal: $200.00
Total: $220.00
`
	sampleInvoice = `INVOICE
INV-2002
101  Office cleaning  2  $100.00  $200.00
Subtotal: $200.00
Total: $220.00
`
)

type fixedClassifier struct {
	types map[string]constants.DocType
	calls atomic.Int32
}

func (c *fixedClassifier) Classify(text string) constants.DocType {
	c.calls.Add(1)
	if t, ok := c.types[text]; ok {
		return t
	}
	return constants.DocTypeUnknown
}

type countingItems struct{ calls atomic.Int32 }

func (c *countingItems) Extract(string, constants.DocType) []entity.LineItem {
	c.calls.Add(1)
	return nil
}

type countingFinancials struct{ calls atomic.Int32 }

func (c *countingFinancials) Extract(string) entity.FinancialSummary {
	c.calls.Add(1)
	return entity.FinancialSummary{}
}

type mapExtractor map[string]extract.TextExtractionResult

func (m mapExtractor) Extract(_ context.Context, path string) (extract.TextExtractionResult, error) {
	r, ok := m[path]
	if !ok {
		return extract.TextExtractionResult{}, common.NewAppError(common.CodePDFParseFailed, "cannot parse "+path, nil)
	}
	return r, nil
}

func TestCompareTextEndToEnd(t *testing.T) {
	p := NewProcessor(nil, nil)
	res, err := p.CompareText(context.Background(), samplePO, sampleInvoice)
	if err != nil {
		t.Fatalf("CompareText: %v", err)
	}
	if res.POType != constants.DocTypePO || res.InvoiceType != constants.DocTypeInvoice {
		t.Fatalf("types = %s/%s", res.POType, res.InvoiceType)
	}
	if len(res.POItems) != 1 || res.POItems[0].ItemNo != "101" {
		t.Errorf("po items = %+v", res.POItems)
	}
	if len(res.InvoiceItems) != 1 {
		t.Errorf("invoice items = %+v", res.InvoiceItems)
	}
	if diff := cmp.Diff(res.POFinancials, res.InvoiceFinancials); diff != "" {
		t.Errorf("financials differ (-po +invoice):\n%s", diff)
	}
	if !res.Report.OverallFlag {
		t.Errorf("expected a match, got %+v", res.Report)
	}
	if res.RequestID == "" || res.Reasoner != "none" {
		t.Errorf("request id %q reasoner %q", res.RequestID, res.Reasoner)
	}
}

func TestCompareTextKeepsRequestID(t *testing.T) {
	ctx := common.WithRequestID(context.Background(), "req-42")
	res, _ := NewProcessor(nil, nil).CompareText(ctx, samplePO, sampleInvoice)
	if res.RequestID != "req-42" {
		t.Errorf("RequestID = %q", res.RequestID)
	}
}

func TestGateRejectSkipsExtraction(t *testing.T) {
	cls := &fixedClassifier{types: map[string]constants.DocType{
		"a": constants.DocTypePO,
		"b": constants.DocTypePO,
	}}
	items := &countingItems{}
	fin := &countingFinancials{}
	p := NewProcessor(nil, compare.NewEngine(compare.Config{}),
		WithClassifier(cls), WithItemExtractor(items), WithFinancialExtractor(fin))

	res, err := p.CompareText(context.Background(), "a", "b")
	if got := common.ErrorCode(err); got != common.CodeInvalidDocumentTypes {
		t.Fatalf("code = %q (err=%v)", got, err)
	}
	if items.calls.Load() != 0 || fin.calls.Load() != 0 {
		t.Errorf("extractors ran on a rejected pair: items=%d financials=%d",
			items.calls.Load(), fin.calls.Load())
	}
	if cls.calls.Load() != 2 {
		t.Errorf("classifier calls = %d", cls.calls.Load())
	}

	resp := BuildResponse(res, err)
	want := &ErrorDetails{
		DetectedTypes: DetectedTypes{PO: "PO", Invoice: "PO"},
		Suggestion:    "Please check your documents and ensure one is a Purchase Order and the other is an Invoice.",
	}
	if diff := cmp.Diff(want, resp.Details); diff != "" {
		t.Errorf("details mismatch (-want +got):\n%s", diff)
	}
	if resp.Success || resp.Comparison != nil || resp.Error != common.CodeInvalidDocumentTypes {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestMissingDocuments(t *testing.T) {
	cls := &fixedClassifier{}
	p := NewProcessor(nil, nil, WithClassifier(cls))
	_, err := p.CompareText(context.Background(), samplePO, "   \n")
	if got := common.ErrorCode(err); got != common.CodeMissingDocuments {
		t.Fatalf("code = %q", got)
	}
	if cls.calls.Load() != 0 {
		t.Error("classifier ran without both documents")
	}
}

func TestCompareFiles(t *testing.T) {
	src := mapExtractor{
		"po.pdf":  {Path: "po.pdf", Text: samplePO, Pages: 1, SourceType: constants.PDF, Method: "pdftotext"},
		"inv.pdf": {Path: "inv.pdf", Text: sampleInvoice, Pages: 2, SourceType: constants.PDF, Method: "pdf-reader"},
	}
	p := NewProcessor(nil, nil, WithTextExtractor(src))

	res, err := p.CompareFiles(context.Background(), "po.pdf", "inv.pdf")
	if err != nil {
		t.Fatalf("CompareFiles: %v", err)
	}
	resp := BuildResponse(res, nil)
	want := &ParsingInfo{POMethod: "pdftotext", InvoiceMethod: "pdf-reader", POPages: 1, InvoicePages: 2}
	if diff := cmp.Diff(want, resp.ParsingInfo); diff != "" {
		t.Errorf("parsing info mismatch (-want +got):\n%s", diff)
	}
	if resp.Message != "PDF comparison completed successfully" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestCompareFilesExtractionFailure(t *testing.T) {
	cls := &fixedClassifier{}
	src := mapExtractor{"po.pdf": {Text: samplePO}}
	p := NewProcessor(nil, nil, WithTextExtractor(src), WithClassifier(cls))

	res, err := p.CompareFiles(context.Background(), "po.pdf", "scan.pdf")
	if got := common.ErrorCode(err); got != common.CodePDFParseFailed {
		t.Fatalf("code = %q (err=%v)", got, err)
	}
	if cls.calls.Load() != 0 {
		t.Error("classification ran after an extraction failure")
	}
	if resp := BuildResponse(res, err); resp.Success || resp.ParsingInfo != nil {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestCompareFilesWithoutExtractor(t *testing.T) {
	_, err := NewProcessor(nil, nil).CompareFiles(context.Background(), "a.pdf", "b.pdf")
	if got := common.ErrorCode(err); got != common.CodeConfig {
		t.Fatalf("code = %q", got)
	}
}

func TestBuildResponseSuccessShape(t *testing.T) {
	long := strings.Repeat("x", 250)
	res := &Result{
		RequestID:   "r1",
		POText:      long,
		InvoiceText: "short",
		Report:      entity.ComparisonReport{OverallFlag: true},
	}
	resp := BuildResponse(res, nil)
	if len(resp.POText) != 203 || !strings.HasSuffix(resp.POText, "...") {
		t.Errorf("po preview = %d chars", len(resp.POText))
	}
	if resp.InvoiceText != "short" {
		t.Errorf("invoice preview = %q", resp.InvoiceText)
	}

	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"success", "message", "comparison", "poItems", "invoiceItems", "requestId", "financials"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %q in %s", k, b)
		}
	}
	for _, k := range []string{"error", "details", "parsingInfo"} {
		if _, ok := m[k]; ok {
			t.Errorf("unexpected key %q in %s", k, b)
		}
	}
}

func TestBuildResponsePlainError(t *testing.T) {
	resp := BuildResponse(nil, errors.New("disk on fire"))
	if resp.Success || resp.Error != "disk on fire" || resp.Details != nil {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Message != "Text comparison failed" {
		t.Errorf("message = %q", resp.Message)
	}
}

type failingExtractor struct{ err error }

func (f failingExtractor) Extract(context.Context, string) (extract.TextExtractionResult, error) {
	return extract.TextExtractionResult{}, f.err
}

func TestCompareFilesPlainErrorMessage(t *testing.T) {
	p := NewProcessor(nil, nil, WithTextExtractor(failingExtractor{err: errors.New("permission denied")}))
	res, err := p.CompareFiles(context.Background(), "po.pdf", "inv.pdf")
	if err == nil {
		t.Fatal("expected extraction error")
	}
	resp := BuildResponse(res, err)
	if resp.Message != "PDF comparison failed" {
		t.Errorf("message = %q, want PDF comparison failed", resp.Message)
	}
	if resp.ParsingInfo != nil {
		t.Errorf("parsing info on failure: %+v", resp.ParsingInfo)
	}
}
