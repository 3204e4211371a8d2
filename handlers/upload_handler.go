package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/formcraft/formcraft-backend/config"
	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/internal/storage"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/models/embed"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is the allowance for multipart framing on top of the file.
const multipartOverhead = 1 << 20

// UploadHandler accepts files for a form's file fields through its embed key.
type UploadHandler struct {
	embeds   EmbedServiceInterface
	files    FileStore
	maxBytes int64
	allowed  map[string]bool
}

// NewUploadHandler returns an UploadHandler. files may be nil when no object
// store is configured; uploads then answer 503.
func NewUploadHandler(embeds EmbedServiceInterface, files FileStore, cfg config.UploadsConfig) *UploadHandler {
	allowed := make(map[string]bool, len(cfg.AllowedMimeTypes))
	for _, m := range cfg.AllowedMimeTypes {
		allowed[strings.ToLower(strings.TrimSpace(m))] = true
	}
	return &UploadHandler{embeds: embeds, files: files, maxBytes: cfg.MaxBytes, allowed: allowed}
}

// UploadHandler godoc
// @Summary Upload a file for a submission
// @Description Public endpoint authorized like an embed load. Put the returned object in the file field's value.
// @Tags embed
// @Accept multipart/form-data
// @Produce json
// @Param key path string true "Embedding key"
// @Param file formData file true "File"
// @Success 201 {object} types.UploadResponse
// @Failure 403 {object} types.ErrorBody
// @Failure 413 {object} types.ErrorBody
// @Failure 415 {object} types.ErrorBody
// @Failure 503 {object} types.ErrorBody
// @Router /embed/{key}/uploads [post]
func (h *UploadHandler) UploadHandler(c *gin.Context) {
	if h.files == nil {
		_ = c.Error(apperrors.ServiceUnavailable("File uploads are not configured"))
		return
	}

	key := c.Param("key")
	decision, err := h.embeds.Authorize(c.Request.Context(), key, embed.RefererHost(c.GetHeader("Referer")))
	if err != nil {
		_ = c.Error(apperrors.PersistenceFailed("Failed to upload file", err))
		return
	}
	if !decision.Authorized {
		_ = c.Error(apperrors.EmbedDenied(decision.Reason))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(h.tooLarge())
			return
		}
		_ = c.Error(apperrors.ValidationFailed("File is required", "multipart field \"file\" is missing"))
		return
	}
	if fileHeader.Size > h.maxBytes {
		_ = c.Error(h.tooLarge())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid file", "failed to open uploaded file"))
		return
	}
	defer file.Close()

	// Server-side MIME detection
	sniffBuf := make([]byte, 3072)
	n, err := io.ReadFull(file, sniffBuf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		_ = c.Error(fmt.Errorf("failed to read file header: %w", err))
		return
	}
	detected := mimetype.Detect(sniffBuf[:n])
	mimeType := detected.String()
	if !h.mimeAllowed(detected) {
		_ = c.Error(apperrors.UnsupportedMediaType("File type is not allowed", mimeType))
		return
	}

	path := storage.SubmissionKey(decision.FormID, fileHeader.Filename)
	body := io.MultiReader(bytes.NewReader(sniffBuf[:n]), file)
	if err := h.files.Save(c.Request.Context(), path, body, fileHeader.Size, mimeType); err != nil {
		_ = c.Error(apperrors.PersistenceFailed("Failed to upload file", err))
		return
	}

	logger.GetLogger().Infow("Upload stored",
		"formID", decision.FormID, "embedKey", logger.MaskEmbedKey(key), "size", fileHeader.Size, "mimeType", mimeType)

	c.JSON(http.StatusCreated, gin.H{"success": true, "file": types.UploadedFile{
		Name:     fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: mimeType,
		Path:     path,
	}})
}

// scriptable types are never reached through a parent match; they must be
// listed exactly.
var scriptable = map[string]bool{
	"text/html":              true,
	"application/xhtml+xml":  true,
	"image/svg+xml":          true,
	"text/xml":               true,
	"application/xml":        true,
	"text/javascript":        true,
	"application/javascript": true,
}

// mimeAllowed matches the sniffed type exactly, or a parent when nothing on
// the way up is scriptable. An allowed "text/plain" admits "text/csv" but not
// "text/html". Parameters such as charset are ignored.
func (h *UploadHandler) mimeAllowed(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		base, _, _ := strings.Cut(m.String(), ";")
		base = strings.TrimSpace(base)
		if h.allowed[base] {
			return true
		}
		if scriptable[base] {
			return false
		}
	}
	return false
}

func (h *UploadHandler) tooLarge() error {
	return apperrors.PayloadTooLarge(fmt.Sprintf("File exceeds the %d byte limit", h.maxBytes))
}
