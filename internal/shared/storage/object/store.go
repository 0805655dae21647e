package object

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"

	"jobhunt-backend/internal/shared/util"
)

// ErrNotFound is returned by Open when the key does not exist.
var ErrNotFound = errors.New("object not found")

// Object describes a stored blob.
type Object struct {
	Key      string
	Size     int64
	MimeType string
}

// Store saves and retrieves binary objects such as uploaded resumes.
type Store interface {
	Save(ctx context.Context, userID, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds "<sha256(user)>/<uuid>_<sanitized name>".
func NewKey(userID, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(util.HashUserKey(userID), uuid.NewString()+"_"+name), nil
}

// Sniff reads up to 512 bytes to detect the content type and returns a
// reader that replays them.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var buf [512]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	head := append([]byte(nil), buf[:n]...)
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}
