package compare

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
)

type fakeReasoner struct {
	reply  string
	err    error
	calls  int
	prompt string
}

func (f *fakeReasoner) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.reply, f.err
}

var (
	poFin  = entity.FinancialSummary{Subtotal: "2400", Discount: "0", Tax: "240", Total: "2640"}
	invFin = entity.FinancialSummary{Subtotal: "2400", Discount: "0", Tax: "240", Total: "2640"}
)

func TestValidate(t *testing.T) {
	po, inv, unk, mix := constants.DocTypePO, constants.DocTypeInvoice, constants.DocTypeUnknown, constants.DocTypeMixed
	tests := []struct {
		name     string
		po, inv  constants.DocType
		wantCode string
	}{
		{"po then invoice", po, inv, ""},
		{"invoice then po", inv, po, ""},
		{"both po", po, po, common.CodeInvalidDocumentTypes},
		{"both invoice", inv, inv, common.CodeInvalidDocumentTypes},
		{"unknown first", unk, inv, common.CodeUnknownDocumentTypes},
		{"unknown second", po, unk, common.CodeUnknownDocumentTypes},
		{"mixed", mix, inv, common.CodeMixedDocumentTypes},
		{"unknown beats mixed", unk, mix, common.CodeUnknownDocumentTypes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.po, tt.inv)
			if got := common.ErrorCode(err); got != tt.wantCode {
				t.Fatalf("code = %q, want %q (err=%v)", got, tt.wantCode, err)
			}
			if err != nil {
				appErr, _ := common.AsAppError(err)
				if appErr.Suggestion == "" {
					t.Error("rejection without suggestion")
				}
			}
		})
	}
}

func TestValidateUnknownSuggestion(t *testing.T) {
	appErr, ok := common.AsAppError(Validate(constants.DocTypeUnknown, constants.DocTypeUnknown))
	if !ok {
		t.Fatal("expected AppError")
	}
	if !strings.Contains(appErr.Suggestion, `"INV-"`) {
		t.Errorf("suggestion = %q", appErr.Suggestion)
	}
}

func TestCompareIdentity(t *testing.T) {
	r := &fakeReasoner{reply: "not used"}
	for _, e := range []*Engine{NewEngine(Config{}), NewEngine(Config{Reasoner: r})} {
		got, err := e.Compare(context.Background(), Input{POText: "same text", InvoiceText: "same text"})
		if err != nil {
			t.Fatalf("Compare: %v", err)
		}
		if diff := cmp.Diff(identityReport().Differences, got.Differences); diff != "" {
			t.Errorf("differences mismatch (-want +got):\n%s", diff)
		}
		if !got.OverallFlag {
			t.Error("identity report must be a match")
		}
		if got.Recommendations[0] != RecommendationPerfectMatch {
			t.Errorf("recommendation = %q", got.Recommendations[0])
		}
	}
	if r.calls != 0 {
		t.Errorf("reasoner called %d times for identical texts", r.calls)
	}
}

func TestCompareFallback(t *testing.T) {
	e := NewEngine(Config{})
	got, err := e.Compare(context.Background(), Input{
		POText: "PO", InvoiceText: "INV",
		POFinancials:      entity.FinancialSummary{Subtotal: "2400", Total: "2640"},
		InvoiceFinancials: entity.FinancialSummary{Subtotal: "2400", Total: "2650"},
	})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	want := entity.ComparisonReport{
		Differences: []entity.Difference{
			{
				Type:          entity.DifferenceAmount,
				POValues:      []string{"2400", "-$275", "$522.5", "2640"},
				InvoiceValues: []string{"2400", "-$275", "$522.5", "2650"},
				Match:         false,
			},
			{
				Type:          entity.DifferenceDate,
				POValues:      []string{"12/06/2023"},
				InvoiceValues: []string{"12/06/2023"},
				Match:         true,
			},
		},
		Recommendations: []string{RecommendationManualReview},
		OverallFlag:     false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareFallbackEqualFinancials(t *testing.T) {
	got, err := NewEngine(Config{}).Compare(context.Background(), Input{
		POText: "a", InvoiceText: "b", POFinancials: poFin, InvoiceFinancials: invFin,
	})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !got.OverallFlag || !got.Differences[0].Match {
		t.Errorf("equal financials should match: %+v", got)
	}
	if got.Recommendations[0] != RecommendationManualReview {
		t.Errorf("fallback recommendation = %q", got.Recommendations[0])
	}
}

func TestCompareReasoner(t *testing.T) {
	reply := "```json\n" + `{
  "differences": [
    {"type": "amount", "poValues": ["1"], "invoiceValues": ["2"], "match": true},
    {"type": "Description", "poValues": ["Neon colors"], "invoiceValues": ["Fluorescent colors"], "match": false}
  ],
  "recommendations": ["Review description for item 203"],
  "overallFlag": true
}` + "\n```"
	r := &fakeReasoner{reply: reply}
	got, err := NewEngine(Config{Reasoner: r}).Compare(context.Background(), Input{
		POText: "PO text", InvoiceText: "Invoice text", POFinancials: poFin, InvoiceFinancials: invFin,
	})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if r.calls != 1 {
		t.Fatalf("reasoner calls = %d, want 1", r.calls)
	}
	if !strings.Contains(r.prompt, "PO text") || !strings.Contains(r.prompt, "Subtotal: 2400") {
		t.Error("prompt is missing the document text or financials")
	}
	amount := got.Differences[0]
	if diff := cmp.Diff(poFin.Values(), amount.POValues); diff != "" {
		t.Errorf("amount poValues not overwritten (-want +got):\n%s", diff)
	}
	if !amount.Match {
		t.Error("amount should match when the reasoner and the financials agree")
	}
	if got.Differences[1].Type != entity.DifferenceDescription {
		t.Errorf("type = %q, want lower-cased description", got.Differences[1].Type)
	}
	if got.OverallFlag {
		t.Error("overallFlag must be recomputed, not taken from the reply")
	}
}

func TestCompareReasonerCannotHideAmountMismatch(t *testing.T) {
	r := &fakeReasoner{reply: `{"differences":[{"type":"amount","poValues":[],"invoiceValues":[],"match":true}],"recommendations":["All items match perfectly"]}`}
	mismatched := invFin
	mismatched.Total = "2700"
	got, err := NewEngine(Config{Reasoner: r}).Compare(context.Background(), Input{
		POText: "a", InvoiceText: "b", POFinancials: poFin, InvoiceFinancials: mismatched,
	})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if got.Differences[0].Match || got.OverallFlag {
		t.Errorf("amount mismatch was hidden: %+v", got)
	}
}

func TestCompareReasonerOmitsAmount(t *testing.T) {
	r := &fakeReasoner{reply: `{"differences":[{"type":"date","poValues":["12/06/2023"],"invoiceValues":["12/06/2023"],"match":true}],"recommendations":[]}`}
	got, err := NewEngine(Config{Reasoner: r}).Compare(context.Background(), Input{
		POText: "a", InvoiceText: "b", POFinancials: poFin, InvoiceFinancials: invFin,
	})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(got.Differences) != 2 || got.Differences[0].Type != entity.DifferenceAmount {
		t.Fatalf("amount difference not prepended: %+v", got.Differences)
	}
	if !got.OverallFlag {
		t.Error("expected overall match")
	}
}

func TestCompareReasonerErrors(t *testing.T) {
	tests := []struct {
		name     string
		r        *fakeReasoner
		wantCode string
	}{
		{"call failure", &fakeReasoner{err: errors.New("boom")}, common.CodeReasoningCallFailed},
		{"not json", &fakeReasoner{reply: "I think they match."}, common.CodeReasoningResponseInvalid},
		{"schema violation", &fakeReasoner{reply: `{"differences":[{"type":"amount"}],"recommendations":[]}`}, common.CodeReasoningResponseInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(Config{Reasoner: tt.r}).Compare(context.Background(), Input{POText: "a", InvoiceText: "b"})
			if got := common.ErrorCode(err); got != tt.wantCode {
				t.Fatalf("code = %q, want %q (err=%v)", got, tt.wantCode, err)
			}
			if tt.r.calls != 1 {
				t.Errorf("calls = %d, want exactly 1", tt.r.calls)
			}
		})
	}
}

func TestReasonerName(t *testing.T) {
	if got := NewEngine(Config{}).ReasonerName(); got != "none" {
		t.Errorf("ReasonerName = %q", got)
	}
	if got := NewEngine(Config{Reasoner: &fakeReasoner{}}).ReasonerName(); got != "custom" {
		t.Errorf("ReasonerName = %q", got)
	}
}
