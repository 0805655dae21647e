package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrUnsupported = errors.New("unsupported document type")
	ErrNoText      = errors.New("document contains no extractable text")
)

// Detect returns MimePDF or MimeDOCX for supported payloads, or "" when the
// payload is neither. sniffed is the content type detected from the bytes.
func Detect(sniffed, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(sniffed, ";")[0]))
	switch clean {
	case MimePDF:
		return MimePDF
	case MimeDOCX:
		return MimeDOCX
	case "application/zip":
		if zipHas(data, "word/document.xml") {
			return MimeDOCX
		}
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return MimePDF
	}
	if strings.EqualFold(filepath.Ext(fileName), ".docx") && zipHas(data, "word/document.xml") {
		return MimeDOCX
	}
	return ""
}

// Text extracts normalized plain text from a PDF or DOCX payload.
func Text(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var (
		raw string
		err error
	)
	switch mimeType {
	case MimePDF:
		raw, err = extractPDF(data)
	case MimeDOCX:
		raw, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", mimeType, err)
	}
	text := normalizeWhitespace(raw)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func extractPDF(data []byte) (s string, err error) {
	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml not found")
	}
	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteByte(' ')
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				buf.WriteByte('\n')
			}
		}
	}
	return buf.String(), nil
}

// normalizeWhitespace collapses runs of spaces within lines and drops blank
// lines.
func normalizeWhitespace(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.FieldsFunc(line, unicode.IsSpace)
		if len(fields) == 0 {
			continue
		}
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, "\n")
}

func zipHas(data []byte, name string) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == name {
			return true
		}
	}
	return false
}
