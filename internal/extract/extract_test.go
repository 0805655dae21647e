package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextFromDocx(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Jane   Doe</w:t></w:r></w:p><w:p></w:p><w:p><w:r><w:t>Senior</w:t><w:tab/><w:t>Engineer</w:t></w:r></w:p>`)

	mime := Detect("application/zip", "cv.docx", data)
	if mime != MimeDOCX {
		t.Fatalf("expected docx mime, got %q", mime)
	}
	text, err := Text(context.Background(), data, mime)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "Jane Doe\nSenior Engineer" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTextEmptyDocx(t *testing.T) {
	data := buildDocx(t, `<w:p></w:p>`)
	if _, err := Text(context.Background(), data, MimeDOCX); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestDetectRejectsPlainZipAndText(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("notes.txt")
	_, _ = w.Write([]byte("hello"))
	_ = zw.Close()

	if got := Detect("application/zip", "notes.zip", buf.Bytes()); got != "" {
		t.Fatalf("expected plain zip rejected, got %q", got)
	}
	if got := Detect("text/plain; charset=utf-8", "cv.txt", []byte("hello")); got != "" {
		t.Fatalf("expected text rejected, got %q", got)
	}
	if got := Detect("application/octet-stream", "cv.pdf", []byte("%PDF-1.7\n")); got != MimePDF {
		t.Fatalf("expected pdf by magic bytes, got %q", got)
	}
}

func TestTextMalformedPDF(t *testing.T) {
	if _, err := Text(context.Background(), []byte("%PDF-1.7 truncated"), MimePDF); err == nil {
		t.Fatalf("expected error for malformed pdf")
	}
}

func TestTextUnsupported(t *testing.T) {
	if _, err := Text(context.Background(), []byte("x"), "text/plain"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
