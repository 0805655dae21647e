package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"jobhunt-backend/internal/extract"
	"jobhunt-backend/internal/shared/storage/object"
	"jobhunt-backend/internal/shared/telemetry"
	"jobhunt-backend/internal/shared/util"
)

// Service stores uploaded resumes and their extracted text.
type Service struct {
	Repo  Repo
	Store object.Store
	now   func() time.Time
}

func NewService(repo Repo, store object.Store) *Service {
	return &Service{Repo: repo, Store: store, now: time.Now}
}

// UploadInput is one multipart upload.
type UploadInput struct {
	Title    string
	FileName string
	Data     []byte
}

// Upload validates, stores and extracts a resume. The user's first resume
// becomes primary.
func (s *Service) Upload(ctx context.Context, userID string, in UploadInput) (Resume, error) {
	if strings.TrimSpace(in.FileName) == "" || len(in.Data) == 0 {
		return Resume{}, fmt.Errorf("%w: file is required", ErrInvalid)
	}
	if len(in.Data) > MaxFileSize {
		return Resume{}, ErrTooLarge
	}
	name, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if utf8.RuneCountInString(title) > 200 {
		return Resume{}, fmt.Errorf("%w: title must be at most 200 characters", ErrInvalid)
	}

	mimeType := extract.Detect(http.DetectContentType(in.Data), in.FileName, in.Data)
	if mimeType == "" {
		return Resume{}, ErrUnsupported
	}
	text, err := extract.Text(ctx, in.Data, mimeType)
	if err != nil {
		if errors.Is(err, extract.ErrNoText) {
			return Resume{}, ErrUnreadable
		}
		telemetry.Warn("resume.extract_failed", map[string]any{
			"user_id": userID,
			"mime":    mimeType,
			"error":   err,
		})
		return Resume{}, ErrUnreadable
	}

	obj, err := s.Store.Save(ctx, userID, name, bytes.NewReader(in.Data))
	if err != nil {
		return Resume{}, fmt.Errorf("store resume: %w", err)
	}

	res := Resume{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		FileName:    name,
		MimeType:    mimeType,
		SizeBytes:   int64(len(in.Data)),
		StorageKey:  obj.Key,
		TextContent: text,
		CreatedAt:   s.now().UTC(),
	}
	res, err = s.Repo.Create(ctx, res)
	if err != nil {
		if delErr := s.Store.Delete(ctx, obj.Key); delErr != nil {
			telemetry.Warn("resume.orphan_object", map[string]any{"key": obj.Key, "error": delErr})
		}
		return Resume{}, err
	}
	telemetry.Info("resume.uploaded", map[string]any{
		"user_id":    userID,
		"resume_id":  res.ID,
		"mime":       mimeType,
		"size_bytes": res.SizeBytes,
		"text_chars": len(text),
	})
	return res, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Resume, error) {
	return s.Repo.List(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (Resume, error) {
	return s.Repo.Get(ctx, userID, id)
}

// Primary returns the user's primary resume with its text.
func (s *Service) Primary(ctx context.Context, userID string) (Resume, error) {
	return s.Repo.Primary(ctx, userID)
}

func (s *Service) SetPrimary(ctx context.Context, userID, id string) (Resume, error) {
	if err := s.Repo.SetPrimary(ctx, userID, id); err != nil {
		return Resume{}, err
	}
	res, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, err
	}
	return res.Summary(), nil
}

// Delete soft-deletes a resume. Deleting the primary promotes the newest
// remaining one.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.Repo.SoftDelete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted.IsPrimary {
		return nil
	}
	rest, err := s.Repo.List(ctx, userID)
	if err != nil || len(rest) == 0 {
		return err
	}
	return s.Repo.SetPrimary(ctx, userID, rest[0].ID)
}
