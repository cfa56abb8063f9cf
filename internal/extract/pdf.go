package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads the PDF text layer page by page and concatenates in page
// order. Scanned-image PDFs have no text layer and fail with EmptyContent.
func (p *Pipeline) extractPDF(src Source) (res Result, err error) {
	const name = "pdf"

	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, fail(name, UnsupportedFormat, fmt.Errorf("malformed pdf: %v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(src.Data), int64(len(src.Data)))
	if err != nil {
		return Result{}, fail(name, UnsupportedFormat, err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // pages without a decodable text layer contribute nothing
		}
		if t := strings.TrimSpace(text); t != "" {
			pages = append(pages, t)
		}
	}

	text := strings.Join(pages, "\n\n")
	if strings.TrimSpace(text) == "" {
		return Result{}, fail(name, EmptyContent, errors.New("no extractable text layer"))
	}
	return Result{Title: src.Name, Text: text, Strategy: name}, nil
}
