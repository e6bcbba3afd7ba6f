package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rinawarp/downloads/internal/services"
	"github.com/rinawarp/downloads/pkg/models"
)

func setupVerifyRouter(installers *MockInstallerStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	handler := NewVerifyHandler(installers, logger)

	router := gin.New()
	router.GET("/verify/:filename", handler.Serve)
	return router
}

func TestVerifyHandler_RejectsTraversalBeforeStoreLookup(t *testing.T) {
	installers := new(MockInstallerStore)

	router := setupVerifyRouter(installers)

	req, _ := http.NewRequest("GET", "/verify/..checksums.txt", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid path", w.Body.String())

	// No FetchVerification expectation was set: the store must not be hit.
	installers.AssertExpectations(t)
}

func TestVerifyHandler_NotFound(t *testing.T) {
	installers := new(MockInstallerStore)
	installers.On("FetchVerification", mock.Anything, "missing.txt").
		Return(nil, models.ObjectInfo{}, services.ErrObjectNotFound)

	router := setupVerifyRouter(installers)

	req, _ := http.NewRequest("GET", "/verify/missing.txt", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", w.Body.String())
}

func TestVerifyHandler_ServesPublicArtifacts(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
	}{
		{name: "pgp signature", filename: "RinaWarp-Terminal-Pro-1.0.0.dmg.asc", contentType: "application/pgp-keys"},
		{name: "checksums", filename: "SHA256SUMS.txt", contentType: "text/plain"},
		{name: "anything else", filename: "manifest.json", contentType: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := "artifact contents"
			installers := new(MockInstallerStore)
			installers.On("FetchVerification", mock.Anything, tt.filename).
				Return(io.NopCloser(strings.NewReader(body)), models.ObjectInfo{
					Key:  "verify/" + tt.filename,
					Size: int64(len(body)),
				}, nil)

			router := setupVerifyRouter(installers)

			req, _ := http.NewRequest("GET", "/verify/"+tt.filename, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, body, w.Body.String())
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))

			installers.AssertExpectations(t)
		})
	}
}
