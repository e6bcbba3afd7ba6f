package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rinawarp/downloads/internal/messaging"
	"github.com/rinawarp/downloads/internal/middleware"
	"github.com/rinawarp/downloads/internal/services"
	"github.com/rinawarp/downloads/pkg/models"
)

type DownloadHandler struct {
	tokens       services.TokenServiceInterface
	entitlements services.EntitlementServiceInterface
	installers   services.InstallerStoreInterface
	metrics      *services.MetricsService
	events       *messaging.EventBus
	logger       *logrus.Logger
}

func NewDownloadHandler(
	tokens services.TokenServiceInterface,
	entitlements services.EntitlementServiceInterface,
	installers services.InstallerStoreInterface,
	metrics *services.MetricsService,
	events *messaging.EventBus,
	logger *logrus.Logger,
) *DownloadHandler {
	return &DownloadHandler{
		tokens:       tokens,
		entitlements: entitlements,
		installers:   installers,
		metrics:      metrics,
		events:       events,
		logger:       logger,
	}
}

// Serve handles GET /downloads/:filename?token=<token>. The request walks
// token verification, then an entitlement re-check, then object retrieval;
// the first failure terminates with its specific code. Entitlement is
// re-checked even though the token already proved it at issuance: tokens
// live for hours and a subscription can be cancelled mid-window.
func (h *DownloadHandler) Serve(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeMissingFilename))
		return
	}

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeMissingToken))
		return
	}

	claims, err := h.tokens.Verify(token, time.Now())
	if err != nil {
		code := tokenErrorCode(err)
		if h.metrics != nil {
			h.metrics.AuthFailure(code)
		}
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(code))
		return
	}

	ent, err := h.entitlements.Check(c.Request.Context(), claims.CustomerID)
	if err != nil {
		h.logger.WithError(err).Error("Entitlement re-check failed")
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeServerError))
		return
	}
	if !ent.Active() {
		if h.metrics != nil {
			h.metrics.AuthFailure(models.ErrCodeNotEntitled)
		}
		c.JSON(http.StatusForbidden, models.NewErrorResponse(models.ErrCodeNotEntitled))
		return
	}

	key := h.installers.CanonicalKey(filename)

	reader, info, err := h.installers.Fetch(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, services.ErrObjectNotFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound))
			return
		}
		h.logger.WithError(err).WithField("object_key", key).Error("Installer fetch failed")
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeServerError))
		return
	}
	defer func() { _ = reader.Close() }()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, key),
	}

	c.DataFromReader(http.StatusOK, info.Size, contentType, reader, extraHeaders)

	if h.metrics != nil {
		h.metrics.DownloadServed(h.installers.Platform(filename))
	}
	h.events.DownloadCompleted(c.Request.Context(), claims.CustomerID, key, c.GetString(middleware.RequestIDKey))
}

func tokenErrorCode(err error) models.ErrorCode {
	switch {
	case errors.Is(err, services.ErrTokenExpired):
		return models.ErrCodeTokenExpired
	case errors.Is(err, services.ErrInvalidClaims):
		return models.ErrCodeInvalidClaims
	default:
		return models.ErrCodeInvalidToken
	}
}
