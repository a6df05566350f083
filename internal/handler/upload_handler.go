package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ppdb-api/internal/dto"
	appErrors "github.com/noah-isme/ppdb-api/pkg/errors"
	"github.com/noah-isme/ppdb-api/pkg/response"
	"github.com/noah-isme/ppdb-api/pkg/storage"
)

var allowedUploadExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".pdf":  {},
}

// UploadHandler stores applicant documents and serves them back through
// signed download tokens.
type UploadHandler struct {
	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	maxSize int64
}

// NewUploadHandler creates a new handler. maxSize caps the accepted upload
// body in bytes.
func NewUploadHandler(store *storage.LocalStorage, signer *storage.SignedURLSigner, maxSize int64) *UploadHandler {
	if maxSize <= 0 {
		maxSize = 5 << 20
	}
	return &UploadHandler{store: store, signer: signer, maxSize: maxSize}
}

// Upload godoc
// @Summary Upload a document
// @Description Store an applicant document and return its opaque reference
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	if fileHeader.Size > h.maxSize {
		response.Error(c, appErrors.New(appErrors.ErrValidation.Code, http.StatusRequestEntityTooLarge, "file exceeds the maximum allowed size"))
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedUploadExtensions[ext]; !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "only jpg, jpeg, png and pdf files are accepted"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	ref, err := h.store.SaveStream(fileHeader.Filename, file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload"))
		return
	}
	response.Created(c, dto.UploadResponse{Ref: ref})
}

// Sign godoc
// @Summary Issue a signed download token
// @Tags Documents
// @Produce json
// @Param ref query string true "Document reference"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /uploads/sign [get]
func (h *UploadHandler) Sign(c *gin.Context) {
	ref := c.Query("ref")
	if !strings.HasPrefix(ref, storage.RefPrefix) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid document reference"))
		return
	}

	token, expiresAt, err := h.signer.Generate(ref)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign reference"))
		return
	}
	response.JSON(c, http.StatusOK, dto.SignedDownloadResponse{Token: token, ExpiresAt: expiresAt})
}

// Download godoc
// @Summary Download a document
// @Description Stream a stored document using a signed token
// @Tags Documents
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /uploads/download [get]
func (h *UploadHandler) Download(c *gin.Context) {
	ref, _, err := h.signer.Parse(c.Query("token"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token"))
		return
	}

	file, err := h.store.Open(ref)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "document not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(ref))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
