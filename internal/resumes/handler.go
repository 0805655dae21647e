package resumes

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobhunt-backend/internal/shared/server/middleware"
	"jobhunt-backend/internal/shared/server/respond"
)

// multipart framing on top of the file itself
const maxRequestSize = MaxFileSize + 1<<20

// Handler serves resume uploads and metadata.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.POST("/resumes/:id/primary", h.setPrimary)
	rg.DELETE("/resumes/:id", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, ErrTooLarge)
			return
		}
		respond.Validation(c, "file is required", []respond.FieldIssue{{Field: "file", Issue: "required"}})
		return
	}
	if fileHeader.Size > MaxFileSize {
		writeError(c, ErrTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Validation(c, "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		respond.Validation(c, "unable to read file", nil)
		return
	}

	res, err := h.Svc.Upload(c.Request.Context(), userID, UploadInput{
		Title:    c.PostForm("title"),
		FileName: fileHeader.Filename,
		Data:     data,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("resumeId", res.ID)
	respond.JSON(c, http.StatusCreated, res.Summary())
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)
	res, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) setPrimary(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)
	res, err := h.Svc.SetPrimary(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), gin.H{"maxBytes": MaxFileSize})
	case errors.Is(err, ErrUnsupported):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error(), nil)
	case errors.Is(err, ErrUnreadable):
		respond.Error(c, http.StatusUnprocessableEntity, "unreadable_document", err.Error(), nil)
	case errors.Is(err, ErrInvalid):
		respond.Validation(c, err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "resume request failed", nil)
	}
}
