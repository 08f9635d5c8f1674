// Package pdfnative extracts embedded text from PDFs. Scanned documents
// carry little or no embedded text, so when the direct pass comes back
// nearly empty the extractor hands the file to an OCR fallback if one is
// configured.
package pdfnative

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/dartos/dartos/internal/core/ports"
)

// Below this many characters of direct text the document is assumed to be
// scanned and OCR is attempted instead.
const minDirectTextLength = 100

type Extractor struct {
	storage  ports.ObjectStorage
	fallback ports.TextExtractor
	logger   *slog.Logger
}

// NewExtractor builds a PDF extractor. fallback may be nil, in which case
// scanned documents yield whatever the direct pass found.
func NewExtractor(storage ports.ObjectStorage, fallback ports.TextExtractor, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		storage:  storage,
		fallback: fallback,
		logger:   logger,
	}
}

func (e *Extractor) Extract(ctx context.Context, storagePath string) (string, error) {
	reader, err := e.storage.Open(ctx, storagePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	text, err := e.extractDirect(raw)
	if err != nil {
		return "", err
	}

	if len(strings.TrimSpace(text)) >= minDirectTextLength || e.fallback == nil {
		return text, nil
	}

	e.logger.Info("direct extraction too sparse, falling back to OCR",
		"storage_path", storagePath,
		"direct_chars", len(strings.TrimSpace(text)),
	)
	ocrText, err := e.fallback.Extract(ctx, storagePath)
	if err != nil {
		e.logger.Warn("ocr fallback failed, keeping direct text", "storage_path", storagePath, "error", err)
		return text, nil
	}
	return ocrText, nil
}

func (e *Extractor) extractDirect(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			e.logger.Warn("failed to extract page text", "page", i, "error", err)
			continue
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
