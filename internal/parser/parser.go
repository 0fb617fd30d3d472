package parser

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"

	"pdf-chat/internal/config"
	"pdf-chat/internal/models"
)

// SupportedExtension reports whether the file has a recognized document
// extension.
func SupportedExtension(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf", ".docx", ".pptx", ".txt", ".md", ".xlsx", ".ods":
		return true
	}
	return false
}

// Parse extracts page documents from a file, dispatching on its extension.
// Only PDFs carry real page numbers; slides and spreadsheet sheets are
// treated as pages, the remaining formats produce a single unpaged document.
func Parse(filePath string, ocr config.OCRConfig) ([]models.PageDocument, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return parsePDF(filePath, ocr)
	case ".docx":
		return parseDOCX(filePath)
	case ".pptx":
		return parsePPTX(filePath)
	case ".txt":
		return parseText(filePath)
	case ".md":
		return parseMarkdown(filePath)
	case ".xlsx":
		return parseXLSX(filePath)
	case ".ods":
		return parseODS(filePath)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, ext)
	}
}

func parseDOCX(filePath string) ([]models.PageDocument, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrFileNotFound, filePath)
		}
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	text := strings.TrimSpace(extractTextFromXML(content, "<w:t"))
	if text == "" {
		return nil, nil
	}
	return []models.PageDocument{{
		Text:           text,
		SourceFilename: filepath.Base(filePath),
	}}, nil
}

func parsePPTX(filePath string) ([]models.PageDocument, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrFileNotFound, filePath)
		}
		return nil, err
	}
	defer r.Close()

	var pages []models.PageDocument
	for _, file := range r.File {
		num, ok := slideNumber(file.Name)
		if !ok {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		text := strings.TrimSpace(extractTextFromXML(string(data), "<a:t"))
		if text == "" {
			continue
		}
		pages = append(pages, models.PageDocument{
			Text:           text,
			PageNumber:     num, // slides stand in for pages
			SourceFilename: filepath.Base(filePath),
		})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })
	return pages, nil
}

// slideNumber extracts n from "ppt/slides/slideN.xml". The zip archive does
// not store slides in presentation order.
func slideNumber(name string) (int, bool) {
	const prefix, suffix = "ppt/slides/slide", ".xml"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix))
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseText(filePath string) ([]models.PageDocument, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrFileNotFound, filePath)
		}
		return nil, err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	return []models.PageDocument{{
		Text:           text,
		SourceFilename: filepath.Base(filePath),
	}}, nil
}

// parseMarkdown strips markdown structure by walking the goldmark AST and
// collecting text segments, block by block.
func parseMarkdown(filePath string) ([]models.PageDocument, error) {
	src, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrFileNotFound, filePath)
		}
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(gmtext.NewReader(src))

	var buf strings.Builder
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok {
			if entering {
				buf.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
			return ast.WalkContinue, nil
		}
		if !entering && n.Type() == ast.TypeBlock {
			buf.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return nil, nil
	}
	return []models.PageDocument{{
		Text:           text,
		SourceFilename: filepath.Base(filePath),
	}}, nil
}

func parseXLSX(filePath string) ([]models.PageDocument, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrFileNotFound, filePath)
		}
		return nil, err
	}

	var pages []models.PageDocument
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		pages = append(pages, models.PageDocument{
			Text:           strings.TrimSpace(text.String()),
			PageNumber:     sheetNum + 1, // sheets stand in for pages
			SourceFilename: filepath.Base(filePath),
		})
	}
	return pages, nil
}

func parseODS(filePath string) ([]models.PageDocument, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrFileNotFound, filePath)
		}
		return nil, err
	}
	defer f.Close()

	var pages []models.PageDocument
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		pages = append(pages, models.PageDocument{
			Text:           strings.TrimSpace(text.String()),
			PageNumber:     sheetNum + 1,
			SourceFilename: filepath.Base(filePath),
		})
	}
	return pages, nil
}

// extractTextFromXML pulls the text runs out of an OOXML body, e.g. "<w:t"
// for docx. Run attributes up to the closing '>' are discarded.
func extractTextFromXML(xmlContent, openTag string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, openTag)
	closeTag := "</" + openTag[1:] + ">"
	for i, part := range parts {
		if i == 0 {
			continue
		}
		// Guard against sibling tags sharing the prefix, e.g. <w:tbl>.
		if !strings.HasPrefix(part, ">") && !strings.HasPrefix(part, " ") {
			continue
		}
		gt := strings.Index(part, ">")
		if gt < 0 {
			continue
		}
		part = part[gt+1:]
		endIdx := strings.Index(part, closeTag)
		if endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}
