// Package pipeline runs a PO/Invoice pair through classification, gating,
// extraction and comparison.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/classify"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/compare"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/extract"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/financials"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/lineitems"
)

type Classifier interface {
	Classify(text string) constants.DocType
}

type ItemExtractor interface {
	Extract(text string, role constants.DocType) []entity.LineItem
}

type FinancialExtractor interface {
	Extract(text string) entity.FinancialSummary
}

// Processor coordinates one comparison request.
type Processor struct {
	Logger     *slog.Logger
	Classifier Classifier
	Items      ItemExtractor
	Financials FinancialExtractor
	Engine     *compare.Engine
	Text       extract.TextExtractor
}

type Option func(*Processor)

func WithClassifier(c Classifier) Option {
	return func(p *Processor) { p.Classifier = c }
}

func WithItemExtractor(x ItemExtractor) Option {
	return func(p *Processor) { p.Items = x }
}

func WithFinancialExtractor(x FinancialExtractor) Option {
	return func(p *Processor) { p.Financials = x }
}

// WithTextExtractor enables CompareFiles.
func WithTextExtractor(t extract.TextExtractor) Option {
	return func(p *Processor) { p.Text = t }
}

func NewProcessor(logger *slog.Logger, engine *compare.Engine, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = compare.NewEngine(compare.Config{Logger: logger})
	}
	p := &Processor{
		Logger:     logger,
		Classifier: classify.New(),
		Items:      lineitems.NewExtractor(lineitems.WithLogger(logger)),
		Financials: financials.Extractor{},
		Engine:     engine,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is everything known about a request. On failure it holds whatever
// was established before the error (at least the request id, and the detected
// types once classification ran).
type Result struct {
	RequestID         string
	POType            constants.DocType
	InvoiceType       constants.DocType
	POText            string
	InvoiceText       string
	POItems           []entity.LineItem
	InvoiceItems      []entity.LineItem
	POFinancials      entity.FinancialSummary
	InvoiceFinancials entity.FinancialSummary
	Report            entity.ComparisonReport
	Reasoner          string
	FromFiles         bool
	POSource          *extract.TextExtractionResult
	InvoiceSource     *extract.TextExtractionResult
	StartedAt         time.Time
	FinishedAt        time.Time
}

// CompareText runs the full comparison on two already extracted texts.
func (p *Processor) CompareText(ctx context.Context, poText, invoiceText string) (*Result, error) {
	ctx, res := p.begin(ctx)
	err := p.run(ctx, res, poText, invoiceText)
	res.FinishedAt = time.Now()
	return res, err
}

// CompareFiles extracts both files concurrently and compares their text. Any
// extraction failure ends the request.
func (p *Processor) CompareFiles(ctx context.Context, poPath, invoicePath string) (*Result, error) {
	ctx, res := p.begin(ctx)
	res.FromFiles = true
	defer func() { res.FinishedAt = time.Now() }()
	log := common.LoggerFromContext(ctx, p.Logger)

	if p.Text == nil {
		return res, common.NewAppError(common.CodeConfig, "no text extractor configured", nil)
	}
	if strings.TrimSpace(poPath) == "" || strings.TrimSpace(invoicePath) == "" {
		return res, missingDocuments()
	}

	var po, inv extract.TextExtractionResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		po, err = p.Text.Extract(gctx, poPath)
		return common.WrapError(err, "extract PO")
	})
	g.Go(func() error {
		var err error
		inv, err = p.Text.Extract(gctx, invoicePath)
		return common.WrapError(err, "extract Invoice")
	})
	if err := g.Wait(); err != nil {
		log.Error("pipeline.extract.failed", "req_id", res.RequestID, "error", err)
		return res, err
	}
	res.POSource, res.InvoiceSource = &po, &inv
	log.Info("pipeline.extract.ok", "req_id", res.RequestID,
		"po_method", po.Method, "po_pages", po.Pages,
		"invoice_method", inv.Method, "invoice_pages", inv.Pages)

	err := p.run(ctx, res, po.Text, inv.Text)
	return res, err
}

func (p *Processor) begin(ctx context.Context) (context.Context, *Result) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.NewString()
		ctx = common.WithRequestID(ctx, rid)
	}
	return ctx, &Result{
		RequestID: rid,
		Reasoner:  p.Engine.ReasonerName(),
		StartedAt: time.Now(),
	}
}

func (p *Processor) run(ctx context.Context, res *Result, poText, invoiceText string) error {
	log := common.LoggerFromContext(ctx, p.Logger)
	start := time.Now()
	log.Info("pipeline.compare.start", "req_id", res.RequestID,
		"po_len", len(poText), "invoice_len", len(invoiceText), "reasoner", res.Reasoner)

	res.POText, res.InvoiceText = poText, invoiceText
	if strings.TrimSpace(poText) == "" || strings.TrimSpace(invoiceText) == "" {
		return missingDocuments()
	}

	res.POType = p.Classifier.Classify(poText)
	res.InvoiceType = p.Classifier.Classify(invoiceText)
	log.Info("pipeline.classify.ok", "req_id", res.RequestID,
		"po_type", res.POType, "invoice_type", res.InvoiceType)

	if err := p.Engine.Validate(res.POType, res.InvoiceType); err != nil {
		log.Warn("pipeline.gate.rejected", "req_id", res.RequestID,
			"code", common.ErrorCode(err), "po_type", res.POType, "invoice_type", res.InvoiceType)
		return err
	}

	// Extraction is pure and per-document; the two sides share nothing.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.POItems = p.Items.Extract(poText, res.POType)
		res.POFinancials = p.Financials.Extract(poText)
	}()
	go func() {
		defer wg.Done()
		res.InvoiceItems = p.Items.Extract(invoiceText, res.InvoiceType)
		res.InvoiceFinancials = p.Financials.Extract(invoiceText)
	}()
	wg.Wait()
	log.Info("pipeline.extract_items.ok", "req_id", res.RequestID,
		"po_items", len(res.POItems), "invoice_items", len(res.InvoiceItems))

	report, err := p.Engine.Compare(ctx, compare.Input{
		POText:            poText,
		InvoiceText:       invoiceText,
		POFinancials:      res.POFinancials,
		InvoiceFinancials: res.InvoiceFinancials,
	})
	if err != nil {
		return err
	}
	res.Report = report
	log.Info("pipeline.compare.done", "req_id", res.RequestID,
		"overall_flag", report.OverallFlag, "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

func missingDocuments() error {
	return common.NewAppError(common.CodeMissingDocuments,
		"Both PO and Invoice are required", nil).
		WithSuggestion("Provide one Purchase Order and one Invoice.")
}
