package handlers

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rinawarp/downloads/internal/messaging"
	"github.com/rinawarp/downloads/internal/middleware"
	"github.com/rinawarp/downloads/internal/services"
	"github.com/rinawarp/downloads/pkg/models"
)

// customerIDPattern matches billing customer identifiers. Checked before
// any database work so malformed input never reaches the store.
var customerIDPattern = regexp.MustCompile(`^cus_[a-zA-Z0-9]+$`)

type TokenHandler struct {
	tokens       services.TokenServiceInterface
	entitlements services.EntitlementServiceInterface
	metrics      *services.MetricsService
	events       *messaging.EventBus
	logger       *logrus.Logger
}

func NewTokenHandler(
	tokens services.TokenServiceInterface,
	entitlements services.EntitlementServiceInterface,
	metrics *services.MetricsService,
	events *messaging.EventBus,
	logger *logrus.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokens:       tokens,
		entitlements: entitlements,
		metrics:      metrics,
		events:       events,
		logger:       logger,
	}
}

// Issue handles GET /api/download-token?customer_id=<id>. Entitlement is
// the only gate; the token itself carries no more than the customer id and
// an expiry.
func (h *TokenHandler) Issue(c *gin.Context) {
	customerID := c.Query("customer_id")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeMissingCustomerID))
		return
	}
	if !customerIDPattern.MatchString(customerID) {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeInvalidCustomerIDFormat))
		return
	}

	ent, err := h.entitlements.Check(c.Request.Context(), customerID)
	if err != nil {
		h.logger.WithError(err).Error("Entitlement check failed")
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

	token, expiresAt, err := h.tokens.Issue(customerID)
	if err != nil {
		h.logger.WithError(err).Error("Token issuance failed")
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeServerError))
		return
	}

	if h.metrics != nil {
		h.metrics.TokenIssued()
	}
	h.events.TokenIssued(c.Request.Context(), customerID, c.GetString(middleware.RequestIDKey))

	c.JSON(http.StatusOK, models.TokenResponse{
		OK:        true,
		Token:     token,
		ExpiresAt: expiresAt,
		Tier:      ent.Tier,
	})
}
