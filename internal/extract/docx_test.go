package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
)

func docxBytes(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const sampleDoc = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Third.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtractDocx_Paragraphs(t *testing.T) {
	p := New()
	src := Source{Kind: KindDocx, Data: docxBytes(t, sampleDoc), Name: "notes.docx"}

	res, err := p.Extract(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "First paragraph.\n\nSecond paragraph.\n\nThird."
	if res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
	if res.Title != "notes.docx" {
		t.Fatalf("title = %q, want filename", res.Title)
	}
}

func TestExtractDocx_Idempotent(t *testing.T) {
	p := New()
	src := Source{Kind: KindDocx, Data: docxBytes(t, sampleDoc), Name: "notes.docx"}

	a, err := p.Extract(context.Background(), src)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	b, err := p.Extract(context.Background(), src)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if a.Text != b.Text {
		t.Fatal("re-extracting the same document yielded different text")
	}
}

func TestExtractDocx_NotAZip(t *testing.T) {
	p := New()
	_, err := p.Extract(context.Background(), Source{Kind: KindDocx, Data: []byte("plain text")})
	if KindOf(err) != UnsupportedFormat {
		t.Fatalf("failure kind = %q, want %q", KindOf(err), UnsupportedFormat)
	}
}

func TestExtractDocx_EmptyDocument(t *testing.T) {
	empty := `<?xml version="1.0"?><w:document xmlns:w="x"><w:body></w:body></w:document>`
	p := New()
	_, err := p.Extract(context.Background(), Source{Kind: KindDocx, Data: docxBytes(t, empty)})
	if KindOf(err) != EmptyContent {
		t.Fatalf("failure kind = %q, want %q", KindOf(err), EmptyContent)
	}
}

func TestExtractPDF_GarbageBytes(t *testing.T) {
	p := New()
	_, err := p.Extract(context.Background(), Source{Kind: KindPDF, Data: []byte("not a pdf")})
	if KindOf(err) != UnsupportedFormat {
		t.Fatalf("failure kind = %q, want %q", KindOf(err), UnsupportedFormat)
	}
}
