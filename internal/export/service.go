// Package export renders comparison results and run history as XLSX workbooks.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/pipeline"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/repository"
)

const (
	SheetSummary      = "Summary"
	SheetDifferences  = "Differences"
	SheetPOItems      = "PO Items"
	SheetInvoiceItems = "Invoice Items"
	SheetRuns         = "Runs"
)

// Service produces XLSX bytes for comparison results and stored runs.
type Service struct {
	runs   repository.RunRepository
	logger *slog.Logger
}

// NewService builds an export service; runs may be nil when history is disabled.
func NewService(runs repository.RunRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{runs: runs, logger: logger}
}

// ComparisonXLSX writes one Summary row per result plus its differences and
// line items. Failed results are listed in the summary only.
func (s *Service) ComparisonXLSX(results []Outcome) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetDifferences, SheetPOItems, SheetInvoiceItems} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	summary := newSheetWriter(f, SheetSummary, "Request ID", "Name", "PO Type", "Invoice Type",
		"Overall Match", "Recommendations", "Error")
	diffs := newSheetWriter(f, SheetDifferences, "Request ID", "Type", "PO Values", "Invoice Values", "Match")
	itemHeaders := []string{"Request ID", "Item No", "Description", "Qty", "Unit Price", "Total", "Discount", "Subtotal"}
	poItems := newSheetWriter(f, SheetPOItems, itemHeaders...)
	invItems := newSheetWriter(f, SheetInvoiceItems, itemHeaders...)

	for _, o := range results {
		res := o.Result
		if res == nil {
			res = &pipeline.Result{}
		}
		if o.Err != nil {
			summary.row(res.RequestID, o.Name, res.POType.String(), res.InvoiceType.String(), "", "", o.Err.Error())
			continue
		}
		summary.row(res.RequestID, o.Name, res.POType.String(), res.InvoiceType.String(),
			yesNo(res.Report.OverallFlag), strings.Join(res.Report.Recommendations, "\n"), "")
		for _, d := range res.Report.Differences {
			diffs.row(res.RequestID, string(d.Type), strings.Join(d.POValues, ", "),
				strings.Join(d.InvoiceValues, ", "), yesNo(d.Match))
		}
		writeItems(poItems, res.RequestID, res.POItems)
		writeItems(invItems, res.RequestID, res.InvoiceItems)
	}

	_ = f.SetColWidth(SheetSummary, "A", "A", 38)
	_ = f.SetColWidth(SheetSummary, "F", "G", 60)
	_ = f.SetColWidth(SheetDifferences, "C", "D", 48)
	_ = f.SetColWidth(SheetPOItems, "C", "C", 48)
	_ = f.SetColWidth(SheetInvoiceItems, "C", "C", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.comparison_xlsx.ok", "results", len(results),
		"elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// HistoryXLSX lists the most recent stored runs.
func (s *Service) HistoryXLSX(ctx context.Context, limit int) ([]byte, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run history is not configured")
	}
	start := time.Now()
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetRuns); err != nil {
		return nil, err
	}
	w := newSheetWriter(f, SheetRuns, "Run ID", "Request ID", "Started", "PO Source", "Invoice Source",
		"PO Type", "Invoice Type", "Status", "Error Code", "Reasoner", "Duration (ms)")
	for _, r := range runs {
		w.row(r.ID.String(), r.RequestID, r.StartedAt.Format(time.RFC3339), r.POSource, r.InvoiceSource,
			r.POType, r.InvoiceType, r.Status, deref(r.ErrorCode), r.Reasoner,
			r.FinishedAt.Sub(r.StartedAt).Milliseconds())
	}
	_ = f.SetColWidth(SheetRuns, "A", "B", 38)
	_ = f.SetColWidth(SheetRuns, "D", "E", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.history_xlsx.ok", "rows", len(runs),
		"elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// Outcome is one comparison to export.
type Outcome struct {
	Name   string
	Result *pipeline.Result
	Err    error
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
}

func newSheetWriter(f *excelize.File, sheet string, headers ...string) *sheetWriter {
	w := &sheetWriter{f: f, sheet: sheet, next: 1}
	vals := make([]any, len(headers))
	for i, h := range headers {
		vals[i] = h
	}
	w.row(vals...)
	return w
}

func (w *sheetWriter) row(vals ...any) {
	for i, v := range vals {
		cell, _ := excelize.CoordinatesToCellName(i+1, w.next)
		_ = w.f.SetCellValue(w.sheet, cell, v)
	}
	w.next++
}

func writeItems(w *sheetWriter, requestID string, items []entity.LineItem) {
	for _, it := range items {
		w.row(requestID, it.ItemNo, it.Description, it.Qty, it.UnitPrice, it.Total, it.Discount, it.Subtotal)
	}
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
