package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rinawarp/downloads/internal/services"
)

// VerifyHandler serves public integrity artifacts (checksums, PGP
// signatures) so downloads can be verified independently. These are not
// protected binaries: no token, no entitlement check, cacheable.
type VerifyHandler struct {
	installers services.InstallerStoreInterface
	logger     *logrus.Logger
}

func NewVerifyHandler(installers services.InstallerStoreInterface, logger *logrus.Logger) *VerifyHandler {
	return &VerifyHandler{
		installers: installers,
		logger:     logger,
	}
}

// Serve handles GET /verify/:filename. Path traversal is rejected before
// any store lookup.
func (h *VerifyHandler) Serve(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" || strings.Contains(filename, "..") {
		c.String(http.StatusBadRequest, "Invalid path")
		return
	}

	reader, info, err := h.installers.FetchVerification(c.Request.Context(), filename)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPath):
			c.String(http.StatusBadRequest, "Invalid path")
		case errors.Is(err, services.ErrObjectNotFound):
			c.String(http.StatusNotFound, "Not found")
		default:
			h.logger.WithError(err).WithField("filename", filename).Error("Verification file fetch failed")
			c.String(http.StatusInternalServerError, "Server error")
		}
		return
	}
	defer func() { _ = reader.Close() }()

	c.Header("Cache-Control", "public, max-age=3600")
	c.DataFromReader(http.StatusOK, info.Size, verificationContentType(filename), reader, nil)
}

func verificationContentType(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".asc"):
		return "application/pgp-keys"
	case strings.HasSuffix(filename, ".txt"):
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
