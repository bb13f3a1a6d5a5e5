package llm

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
)

// ErrInvalidResponse marks a reasoner reply that could not be parsed into a
// comparison. Callers map it to REASONING_RESPONSE_INVALID.
var ErrInvalidResponse = errors.New("invalid reasoner response")

// Reasoner is the external judgment service used for qualitative comparison.
// Implementations must honour ctx cancellation.
type Reasoner interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Named is implemented by reasoners that can report a provider/model label
// for logs and run history.
type Named interface {
	Name() string
}

// ReasonerName returns r's label, "none" for a nil reasoner.
func ReasonerName(r Reasoner) string {
	if r == nil {
		return "none"
	}
	if n, ok := r.(Named); ok {
		return n.Name()
	}
	return "custom"
}

// ComparisonRequest carries everything the prompt needs.
type ComparisonRequest struct {
	POText            string
	InvoiceText       string
	POFinancials      entity.FinancialSummary
	InvoiceFinancials entity.FinancialSummary
}

// ComparisonResponse is the validated shape of a reasoner reply. overallFlag is
// deliberately absent: it is always recomputed locally.
type ComparisonResponse struct {
	Differences     []entity.Difference `json:"differences"`
	Recommendations []string            `json:"recommendations"`
}
