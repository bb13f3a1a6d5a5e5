package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
)

// extractPDF tries pdftotext first and falls back to the pure Go reader when
// the binary is missing or fails.
func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.PDF}

	pages, err := api.PageCountFile(path)
	if err != nil {
		// pdfcpu is strict about structure; pdftotext often still copes
		res.Warnings = append(res.Warnings, fmt.Sprintf("pdfcpu page count: %v", err))
	}

	text, pp, warns, err := e.pdfToText(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	res.Method = MethodPdftotext
	if err != nil {
		e.logger.Warn("ocr.pdftotext.failed", "path", path, "error", err)
		text, pp, err = readPDFText(path)
		res.Method = MethodPDFReader
		if err != nil {
			return res, common.NewAppError(common.CodePDFParseFailed,
				"PDF parsing failed", fmt.Errorf("read pdf %s: %w", path, err)).
				WithSuggestion("Make sure the file is a valid, unencrypted PDF with a text layer.")
		}
	}

	res.Text = Normalize(text)
	res.Pages = pages
	if res.Pages <= 0 {
		res.Pages = pp
	}
	return res, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		if len(errb) > 0 {
			warnings = []string{string(errb)}
		}
		return "", 0, warnings, err
	}
	text = string(out)
	// pdftotext separates pages with a form feed
	pages = 1 + strings.Count(strings.TrimRight(text, "\f\n"), "\f")
	return text, pages, nil, nil
}

// readPDFText extracts text row by row, one line per row.
func readPDFText(path string) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	var b strings.Builder
	n := r.NumPage()
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, w := range row.Content {
				words = append(words, w.S)
			}
			b.WriteString(strings.Join(words, " "))
			b.WriteByte('\n')
		}
		b.WriteString("\f")
	}
	return b.String(), n, nil
}
