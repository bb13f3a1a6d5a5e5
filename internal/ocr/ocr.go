// Package ocr turns PO and Invoice files into plain text.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
)

const (
	MethodTextFile  = "text-file"
	MethodPdftotext = "pdftotext"
	MethodPDFReader = "pdf-reader"
)

type Config struct {
	Pdftotext    string // binary name or absolute path; if empty -> "pdftotext"
	MinTextChars int    // below this a PDF counts as scanned, default 10
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.TEXT
	Method     string // MethodTextFile | MethodPdftotext | MethodPDFReader
	Duration   time.Duration
	Warnings   []string
	Cached     bool
}

type Extractor struct {
	cfg    Config
	runner Runner
	cache  TextCache
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the exec based runner, mostly for tests.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithCache stores extracted PDF text keyed by file content.
func WithCache(c TextCache) Option {
	return func(e *Extractor) { e.cache = c }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 10
	}
	e := &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("ocr.extract.start", "req_id", rid, "path", path, "ext", ext)

	switch constants.MapExtToFormat(ext) {
	case constants.TEXT:
		b, err := os.ReadFile(path)
		if err != nil {
			return ExtractionResult{SourceType: constants.TEXT}, fmt.Errorf("read %s: %w", path, err)
		}
		return ExtractionResult{
			Text:       string(b),
			Pages:      1,
			SourceType: constants.TEXT,
			Method:     MethodTextFile,
			Duration:   time.Since(start),
		}, nil
	case constants.PDF:
		res, err := e.extractPDFCached(ctx, path)
		res.Duration = time.Since(start)
		if err != nil {
			return res, err
		}
		if len([]rune(strings.TrimSpace(res.Text))) < e.cfg.MinTextChars {
			e.logger.Warn("ocr.extract.too_little_text", "req_id", rid, "path", path,
				"chars", len(strings.TrimSpace(res.Text)), "min", e.cfg.MinTextChars)
			return res, common.NewAppError(common.CodePDFParseFailed,
				"PDF appears to be scanned or image-based. Please use a text-based PDF or convert your scanned PDF to text first.", nil).
				WithSuggestion("Export the document as a text-based PDF or paste its text instead.")
		}
		e.logger.Info("ocr.extract.ok", "req_id", rid, "path", path, "method", res.Method,
			"pages", res.Pages, "cached", res.Cached, "elapsed_ms", res.Duration.Milliseconds())
		return res, nil
	default:
		e.logger.Error("ocr.extract.unsupported_extension", "req_id", rid, "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension %q: %w", ext, common.ErrInvalidInput)
	}
}

func (e *Extractor) extractPDFCached(ctx context.Context, path string) (ExtractionResult, error) {
	if e.cache == nil {
		return e.extractPDF(ctx, path)
	}
	key, err := contentKey(path)
	if err != nil {
		return ExtractionResult{SourceType: constants.PDF}, fmt.Errorf("hash %s: %w", path, err)
	}
	if hit, ok, err := e.cache.Get(key); err != nil {
		e.logger.Warn("ocr.cache.get_failed", "path", path, "error", err)
	} else if ok {
		hit.Cached = true
		return hit, nil
	}

	res, err := e.extractPDF(ctx, path)
	if err != nil {
		return res, err
	}
	if err := e.cache.Put(key, res); err != nil {
		e.logger.Warn("ocr.cache.put_failed", "path", path, "error", err)
	}
	return res, nil
}
