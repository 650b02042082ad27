// Package pdf reads the text layer of reference documents used for content generation.
package pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/pkg/errors"
)

// Extractor collects page text until the rune budget is used up.
type Extractor struct {
	maxRunes int
	logger   *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{maxRunes: constants.StringLimits.PDFReference, logger: logger}
}

// WithMaxRunes overrides the text budget. Non-positive values are ignored.
func (e *Extractor) WithMaxRunes(n int) *Extractor {
	if n > 0 {
		e.maxRunes = n
	}
	return e
}

// ExtractFile opens path and extracts its text.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (domain.PDFDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.PDFDocument{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.PDFDocument{}, fmt.Errorf("stat pdf: %w", err)
	}
	return e.Extract(ctx, filepath.Base(path), f, info.Size())
}

// Extract reads pages in order. Blank pages are skipped; a page that fails
// to decode is logged and skipped as well.
func (e *Extractor) Extract(ctx context.Context, name string, r io.ReaderAt, size int64) (domain.PDFDocument, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return domain.PDFDocument{}, errors.NewValidationError("not a readable pdf", "pdf", name)
	}

	doc := domain.PDFDocument{Name: name, Pages: reader.NumPage()}
	var (
		b     strings.Builder
		runes int
	)

	for i := 1; i <= doc.Pages; i++ {
		if err := ctx.Err(); err != nil {
			return domain.PDFDocument{}, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("Skipping unreadable pdf page",
				zap.String("pdf", name),
				zap.Int("page", i),
				zap.Error(err),
			)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n")
			runes++
		}
		text, cut := capRunes(text, e.maxRunes-runes)
		b.WriteString(text)
		runes += len([]rune(text))
		if cut || runes >= e.maxRunes {
			doc.Truncated = cut || i < doc.Pages
			break
		}
	}

	doc.Text = strings.TrimSpace(b.String())
	if doc.Text == "" {
		return domain.PDFDocument{}, errors.NewValidationError("pdf has no extractable text", "pdf", name)
	}

	e.logger.Info("PDF extracted",
		zap.String("pdf", name),
		zap.Int("pages", doc.Pages),
		zap.Int("runes", len([]rune(doc.Text))),
		zap.Bool("truncated", doc.Truncated),
	)
	return doc, nil
}

func capRunes(s string, limit int) (string, bool) {
	if limit <= 0 {
		return "", s != ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s, false
	}
	return string(runes[:limit]), true
}
