// Package pdftext extracts per-page plain text from a PDF.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrExtraction reports a corrupt or unsupported PDF.
var ErrExtraction = errors.New("pdf extraction failed")

// Page is one page of extracted text. Numbering starts at 1.
type Page struct {
	Number int
	Text   string
}

// Extractor turns raw PDF bytes into per-page text.
type Extractor interface {
	Extract(data []byte) ([]Page, error)
}

// Reader implements Extractor with a pure-Go PDF parser.
type Reader struct{}

func NewReader() *Reader { return &Reader{} }

// Extract returns the text of every page. Pages that fail individually are
// skipped with empty text rather than aborting the document; only a document
// the parser cannot open at all is an extraction error.
func (Reader) Extract(data []byte) (pages []Page, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	total := reader.NumPage()
	pages = make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, Page{Number: i})
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

// PlainText joins all pages into one document string.
func PlainText(pages []Page) string {
	var sb strings.Builder
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.TrimSpace(p.Text))
	}
	return sb.String()
}
