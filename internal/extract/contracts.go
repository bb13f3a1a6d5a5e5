package extract

import (
	"context"
	"time"
)

// TextExtractor turns a file into comparable text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Path       string
	Text       string
	Pages      int
	SourceType string // "PDF" | "TEXT"
	Method     string // "text-file" | "pdftotext" | "pdf-reader"
	Duration   time.Duration
	Warnings   []string
	Cached     bool
}
