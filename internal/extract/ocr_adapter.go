package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/ocr"
)

// OCRAdapter exposes an ocr.Extractor as a TextExtractor.
type OCRAdapter struct {
	e      *ocr.Extractor
	logger *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, logger *slog.Logger) *OCRAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRAdapter{e: e, logger: logger}
}

func (a *OCRAdapter) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.e.Extract(ctx, path)
	for _, w := range r.Warnings {
		a.logger.Debug("extract.warning", "path", path, "warning", w)
	}
	return TextExtractionResult{
		Path:       path,
		Text:       r.Text,
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Cached:     r.Cached,
	}, err
}
