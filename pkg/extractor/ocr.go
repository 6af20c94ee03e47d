package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"notesquest-be/internal/apperror"
	"notesquest-be/internal/constant"
)

// ocrPDF rasterizes a scanned PDF and OCRs it page by page. Pages run
// in parallel but the output preserves page order. A page that fails
// is skipped and the result flagged degraded; only a document where
// every page fails is an error.
func (e *Extractor) ocrPDF(ctx context.Context, raw []byte) (*Extraction, error) {
	tempDir, err := os.MkdirTemp("", "ocr-*")
	if err != nil {
		return nil, &apperror.IngestionFailed{Stage: "ocr", Err: fmt.Errorf("create temp dir: %w", err)}
	}
	defer os.RemoveAll(tempDir)

	sourcePath := filepath.Join(tempDir, "source.pdf")
	if err := os.WriteFile(sourcePath, raw, 0o600); err != nil {
		return nil, &apperror.IngestionFailed{Stage: "ocr", Err: fmt.Errorf("write source pdf: %w", err)}
	}

	pageCount, err := api.PageCountFile(sourcePath)
	if err != nil {
		return nil, &apperror.IngestionFailed{Stage: "ocr", Err: fmt.Errorf("count pages: %w", err)}
	}
	if pageCount == 0 {
		return nil, &apperror.IngestionFailed{Stage: "ocr", Err: fmt.Errorf("pdf has no pages")}
	}

	// One single-page pdf per page, named source_<n>.pdf.
	if err := api.SplitFile(sourcePath, tempDir, 1, nil); err != nil {
		return nil, &apperror.IngestionFailed{Stage: "ocr", Err: fmt.Errorf("split pdf: %w", err)}
	}

	pageTexts := make([]string, pageCount)
	pageErrs := make([]error, pageCount)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.parallelism())
	for pageNumber := 1; pageNumber <= pageCount; pageNumber++ {
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			pagePath := filepath.Join(tempDir, fmt.Sprintf("source_%d.pdf", pageNumber))
			text, err := e.ocrPage(pagePath, pageNumber)
			if err != nil {
				pageErrs[pageNumber-1] = &apperror.OCRFailure{Page: pageNumber, Err: err}
				return nil
			}
			pageTexts[pageNumber-1] = text
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, &apperror.IngestionFailed{Stage: "ocr", Err: err}
	}

	var parts []string
	degraded := false
	for i, text := range pageTexts {
		if pageErrs[i] != nil || strings.TrimSpace(text) == "" {
			degraded = degraded || pageErrs[i] != nil
			continue
		}
		parts = append(parts, PageMarker(i+1)+"\n\n"+strings.TrimSpace(text))
	}
	if len(parts) == 0 {
		firstErr := fmt.Errorf("no page produced text")
		for _, pageErr := range pageErrs {
			if pageErr != nil {
				firstErr = pageErr
				break
			}
		}
		return nil, &apperror.IngestionFailed{Stage: "ocr", Err: firstErr}
	}

	return &Extraction{
		Text:     strings.Join(parts, "\n\n"),
		Method:   constant.ExtractionMethodOCR,
		Pages:    pageCount,
		Degraded: degraded,
	}, nil
}

// ocrPage pulls the page's raster images out of a single-page pdf and
// runs tesseract over them.
func (e *Extractor) ocrPage(pagePath string, pageNumber int) (string, error) {
	imageDir := pagePath + ".images"
	if err := os.MkdirAll(imageDir, 0o700); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	defer os.RemoveAll(imageDir)

	if err := api.ExtractImagesFile(pagePath, imageDir, nil, nil); err != nil {
		return "", fmt.Errorf("extract page %d images: %w", pageNumber, err)
	}

	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return "", fmt.Errorf("read image dir: %w", err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("page %d has no raster content", pageNumber)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	client := gosseract.NewClient()
	defer client.Close()
	if len(e.Languages) > 0 {
		if err := client.SetLanguage(e.Languages...); err != nil {
			return "", fmt.Errorf("set ocr language: %w", err)
		}
	}

	var b strings.Builder
	for _, name := range names {
		if err := client.SetImage(filepath.Join(imageDir, name)); err != nil {
			return "", fmt.Errorf("load page %d image: %w", pageNumber, err)
		}
		text, err := client.Text()
		if err != nil {
			return "", fmt.Errorf("ocr page %d: %w", pageNumber, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// ocrImage OCRs a standalone uploaded image.
func (e *Extractor) ocrImage(ctx context.Context, raw []byte, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tempFile, err := os.CreateTemp("", "ocr-image-*."+ext)
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tempFile.Name())
	if _, err := tempFile.Write(raw); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	tempFile.Close()

	client := gosseract.NewClient()
	defer client.Close()
	if len(e.Languages) > 0 {
		if err := client.SetLanguage(e.Languages...); err != nil {
			return "", fmt.Errorf("set ocr language: %w", err)
		}
	}
	if err := client.SetImage(tempFile.Name()); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr image: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("image contains no readable text")
	}
	return text, nil
}

func (e *Extractor) parallelism() int {
	if e.MaxParallel > 0 {
		return e.MaxParallel
	}
	return 4
}
