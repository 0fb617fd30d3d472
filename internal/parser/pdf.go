package parser

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"

	"pdf-chat/internal/config"
	"pdf-chat/internal/models"
)

// parsePDF extracts one PageDocument per page, in page order. Pages with
// native (digital) text keep it; pages without are rasterized and OCR'd.
// Pages empty after both paths are logged and skipped, so the output is not
// guaranteed to have one document per page.
func parsePDF(filePath string, ocr config.OCRConfig) ([]models.PageDocument, error) {
	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrFileNotFound, filePath)
		}
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	source := filepath.Base(filePath)
	var pages []models.PageDocument
	var raster *rasterOCR
	defer func() {
		if raster != nil {
			raster.Close()
		}
	}()

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		text := nativePageText(reader, i)
		if text != "" {
			pages = append(pages, models.PageDocument{
				Text:           text,
				PageNumber:     i,
				SourceFilename: source,
				IsOCR:          false,
			})
			continue
		}

		// No digital text, likely a scan. Rasterize just this page.
		if raster == nil {
			raster, err = newRasterOCR(filePath, ocr)
			if err != nil {
				return nil, err
			}
		}
		text, err = raster.PageText(i)
		if err != nil {
			return nil, err
		}
		if text == "" {
			log.Warn().Int("page", i).Str("file", source).Msg("page yielded no text after OCR, skipping")
			continue
		}
		pages = append(pages, models.PageDocument{
			Text:           text,
			PageNumber:     i,
			SourceFilename: source,
			IsOCR:          true,
		})
	}
	return pages, nil
}

// nativePageText returns the trimmed digital text of a page, or "" when the
// page has none or per-page extraction fails (scanned pages commonly do both).
func nativePageText(reader *pdf.Reader, pageNum int) string {
	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// rasterOCR renders single pages to images and feeds them to tesseract.
// Created lazily so fully digital PDFs never touch MuPDF or tesseract.
type rasterOCR struct {
	doc    *fitz.Document
	client *gosseract.Client
	dpi    float64
}

func newRasterOCR(filePath string, ocr config.OCRConfig) (*rasterOCR, error) {
	doc, err := fitz.New(filePath)
	if err != nil {
		return nil, err
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(ocr.Language); err != nil {
		doc.Close()
		client.Close()
		return nil, err
	}
	return &rasterOCR{doc: doc, client: client, dpi: ocr.DPI}, nil
}

func (r *rasterOCR) PageText(pageNum int) (string, error) {
	img, err := r.doc.ImageDPI(pageNum-1, r.dpi) // go-fitz pages are 0-based
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	if err := r.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", err
	}
	text, err := r.client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (r *rasterOCR) Close() {
	r.doc.Close()
	r.client.Close()
}
