package resumes

import (
	"errors"
	"time"
)

// MaxFileSize is the largest accepted upload.
const MaxFileSize = 5 << 20

var (
	ErrNotFound    = errors.New("resume not found")
	ErrUnsupported = errors.New("only PDF and DOCX files are supported")
	ErrTooLarge    = errors.New("file exceeds 5 MB")
	ErrUnreadable  = errors.New("no text could be extracted from the file")
	ErrInvalid     = errors.New("invalid resume input")
)

// Resume is an uploaded CV with its extracted text.
type Resume struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Title       string    `json:"title"`
	FileName    string    `json:"fileName"`
	MimeType    string    `json:"mimeType"`
	SizeBytes   int64     `json:"sizeBytes"`
	StorageKey  string    `json:"-"`
	TextContent string    `json:"textContent,omitempty"`
	IsPrimary   bool      `json:"isPrimary"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Summary drops the extracted text for list responses.
func (r Resume) Summary() Resume {
	r.TextContent = ""
	return r
}
