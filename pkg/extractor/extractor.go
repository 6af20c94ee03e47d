package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"notesquest-be/internal/apperror"
	"notesquest-be/internal/constant"
)

// Extraction is the outcome of turning an uploaded file into text.
// Degraded marks a partial OCR result where some pages were skipped.
type Extraction struct {
	Text     string
	Method   string // "direct" | "ocr"
	Pages    int
	Degraded bool
}

type Extractor struct {
	// Languages passed to tesseract. Empty means its default (eng).
	Languages []string
	// MaxParallel bounds concurrent page OCR workers.
	MaxParallel int
}

func New() *Extractor {
	return &Extractor{MaxParallel: 4}
}

// Decide routes raw bytes to the right extraction path based on the
// declared file type. PDFs with a usable text layer are read directly;
// scanned PDFs and images go through OCR.
func (e *Extractor) Decide(ctx context.Context, raw []byte, declaredType string) (*Extraction, error) {
	switch normalizeType(declaredType) {
	case "txt", "md":
		text := strings.TrimSpace(string(raw))
		if text == "" {
			return nil, &apperror.IngestionFailed{Stage: "decode", Err: fmt.Errorf("file is empty")}
		}
		return &Extraction{Text: text, Method: constant.ExtractionMethodDirect, Pages: 1}, nil

	case "pdf":
		return e.extractPDF(ctx, raw)

	case "png", "jpg", "jpeg", "gif":
		text, err := e.ocrImage(ctx, raw, normalizeType(declaredType))
		if err != nil {
			return nil, &apperror.IngestionFailed{Stage: "ocr", Err: err}
		}
		return &Extraction{Text: text, Method: constant.ExtractionMethodOCR, Pages: 1}, nil

	default:
		return nil, &apperror.IngestionFailed{
			Stage: "decide",
			Err:   fmt.Errorf("unsupported file type %q, supported: pdf, txt, md, png, jpg, jpeg, gif", declaredType),
		}
	}
}

func (e *Extractor) extractPDF(ctx context.Context, raw []byte) (*Extraction, error) {
	text, pages, err := pdfTextLayer(raw)
	if err == nil && utf8.RuneCountInString(text) >= constant.TextLayerThreshold {
		return &Extraction{Text: text, Method: constant.ExtractionMethodDirect, Pages: pages}, nil
	}

	// Thin or absent text layer means a scanned document.
	return e.ocrPDF(ctx, raw)
}

// pdfTextLayer reads the embedded text layer page by page. Unreadable
// pages are skipped; the threshold check upstream decides whether the
// remainder is enough.
func pdfTextLayer(raw []byte) (string, int, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), numPages, nil
}

// PageMarker labels OCR page boundaries in the joined output.
func PageMarker(page int) string {
	return fmt.Sprintf("--- Page %d ---", page)
}

func normalizeType(declaredType string) string {
	t := strings.ToLower(strings.TrimSpace(declaredType))
	t = strings.TrimPrefix(t, ".")
	switch t {
	case "application/pdf":
		return "pdf"
	case "text/plain":
		return "txt"
	case "text/markdown", "markdown":
		return "md"
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/gif":
		return "gif"
	}
	return t
}
