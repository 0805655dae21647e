package resumes

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"jobhunt-backend/internal/shared/storage/object/local"
)

func newTestRouter(t *testing.T, userID string) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := NewService(NewMemoryRepo(), local.New(t.TempDir()))
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)
	return r, svc
}

func docxBytes(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	_, _ = w.Write([]byte(`<w:document xmlns:w="w"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func upload(t *testing.T, r http.Handler, fileName string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestUploadFirstResumeBecomesPrimary(t *testing.T) {
	r, _ := newTestRouter(t, "user-1")

	resp := upload(t, r, "jane.docx", docxBytes(t, "Go engineer"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var first Resume
	_ = json.Unmarshal(resp.Body.Bytes(), &first)
	if !first.IsPrimary || first.Title != "jane" || first.MimeType == "" {
		t.Fatalf("unexpected first resume: %+v", first)
	}
	if first.TextContent != "" {
		t.Fatalf("upload response must not carry text")
	}

	resp = upload(t, r, "second.docx", docxBytes(t, "Rust engineer"))
	var second Resume
	_ = json.Unmarshal(resp.Body.Bytes(), &second)
	if second.IsPrimary {
		t.Fatalf("second resume must not be primary")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+first.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var got Resume
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.TextContent != "Go engineer" {
		t.Fatalf("expected extracted text, got %q", got.TextContent)
	}
}

func TestUploadRejectsUnsupportedAndLargeFiles(t *testing.T) {
	r, _ := newTestRouter(t, "user-1")

	resp := upload(t, r, "notes.txt", []byte("plain text resume"))
	if resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte(`"unsupported_media_type"`)) {
		t.Fatalf("expected error code, got %s", resp.Body.String())
	}

	big := make([]byte, MaxFileSize+1)
	copy(big, "%PDF-1.4")
	resp = upload(t, r, "big.pdf", big)
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.Code)
	}
}

func TestDeletePrimaryPromotesNewest(t *testing.T) {
	r, svc := newTestRouter(t, "user-1")

	var ids []string
	for _, name := range []string{"a.docx", "b.docx", "c.docx"} {
		resp := upload(t, r, name, docxBytes(t, name))
		var res Resume
		_ = json.Unmarshal(resp.Body.Bytes(), &res)
		ids = append(ids, res.ID)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/resumes/"+ids[0], nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	primary, err := svc.Primary(req.Context(), "user-1")
	if err != nil {
		t.Fatalf("Primary: %v", err)
	}
	if primary.ID == ids[0] {
		t.Fatalf("deleted resume still primary")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+ids[0], nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/resumes/"+ids[1]+"/primary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	primary, _ = svc.Primary(req.Context(), "user-1")
	if primary.ID != ids[1] {
		t.Fatalf("expected %s primary, got %s", ids[1], primary.ID)
	}
}

func TestResumesAreScopedToOwner(t *testing.T) {
	r, svc := newTestRouter(t, "user-1")
	resp := upload(t, r, "a.docx", docxBytes(t, "text"))
	var res Resume
	_ = json.Unmarshal(resp.Body.Bytes(), &res)

	if _, err := svc.Get(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "user-2", res.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}
