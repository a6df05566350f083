package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ppdb-api/internal/dto"
	"github.com/noah-isme/ppdb-api/pkg/response"
	"github.com/noah-isme/ppdb-api/pkg/storage"
)

func newUploadTestHandler(t *testing.T) *UploadHandler {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	return NewUploadHandler(store, signer, 1<<20)
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadSignDownloadRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newUploadTestHandler(t)

	// Upload.
	body, contentType := multipartBody(t, "kartu-keluarga.pdf", []byte("dokumen"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	handler.Upload(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var uploadEnvelope struct {
		Data dto.UploadResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploadEnvelope))
	ref := uploadEnvelope.Data.Ref
	assert.True(t, len(ref) > len(storage.RefPrefix))

	// Sign.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	req, _ = http.NewRequest(http.MethodGet, "/admin/uploads/sign?ref="+ref, nil)
	c.Request = req
	handler.Sign(c)
	require.Equal(t, http.StatusOK, w.Code)

	var signEnvelope struct {
		Data dto.SignedDownloadResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signEnvelope))
	require.NotEmpty(t, signEnvelope.Data.Token)

	// Download.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	req, _ = http.NewRequest(http.MethodGet, "/uploads/download?token="+signEnvelope.Data.Token, nil)
	c.Request = req
	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dokumen", w.Body.String())
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newUploadTestHandler(t)

	body, contentType := multipartBody(t, "script.exe", []byte("x"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	handler.Upload(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRejectsMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newUploadTestHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/uploads", nil)
	c.Request = req
	handler.Upload(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignRejectsForeignReference(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newUploadTestHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/admin/uploads/sign?ref=/etc/passwd", nil)
	c.Request = req
	handler.Sign(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadRejectsTamperedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newUploadTestHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/uploads/download?token=1.2.3", nil)
	c.Request = req
	handler.Download(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
}
