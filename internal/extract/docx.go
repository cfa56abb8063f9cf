package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// extractDocx pulls paragraph text from word/document.xml in document
// order, joining paragraphs with blank lines.
func (p *Pipeline) extractDocx(src Source) (Result, error) {
	const name = "docx"

	zr, err := zip.NewReader(bytes.NewReader(src.Data), int64(len(src.Data)))
	if err != nil {
		return Result{}, fail(name, UnsupportedFormat, err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return Result{}, fail(name, UnsupportedFormat, errors.New("word/document.xml missing"))
	}

	rc, err := doc.Open()
	if err != nil {
		return Result{}, fail(name, UnsupportedFormat, err)
	}
	defer rc.Close()

	paras, err := docxParagraphs(rc)
	if err != nil {
		return Result{}, fail(name, UnsupportedFormat, err)
	}
	if len(paras) == 0 {
		return Result{}, fail(name, EmptyContent, errors.New("document has no paragraph text"))
	}
	return Result{Title: src.Name, Text: strings.Join(paras, "\n\n"), Strategy: name}, nil
}

// docxParagraphs walks the WordprocessingML stream collecting <w:t> runs,
// closing a paragraph at each </w:p>.
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		paras  []string
		para   strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(para.String()); s != "" {
					paras = append(paras, s)
				}
				para.Reset()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return paras, nil
}
