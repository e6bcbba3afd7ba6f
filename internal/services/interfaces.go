package services

import (
	"context"
	"io"
	"time"

	"github.com/rinawarp/downloads/pkg/models"
)

// TokenServiceInterface defines the interface for token issuance and verification
type TokenServiceInterface interface {
	Issue(customerID string) (string, time.Time, error)
	Verify(token string, now time.Time) (models.DownloadClaims, error)
}

// EntitlementServiceInterface defines the interface for entitlement checks
type EntitlementServiceInterface interface {
	Check(ctx context.Context, customerID string) (*models.Entitlement, error)
}

// RateLimitServiceInterface defines the interface for per-IP request throttling
type RateLimitServiceInterface interface {
	IsAllowed(ctx context.Context, clientIP string) (bool, *models.RateLimitInfo, error)
	RetryAfter() time.Duration
}

// InstallerStoreInterface defines the interface for installer object retrieval
type InstallerStoreInterface interface {
	CanonicalKey(filename string) string
	Platform(filename string) string
	Fetch(ctx context.Context, key string) (io.ReadCloser, models.ObjectInfo, error)
	FetchVerification(ctx context.Context, filename string) (io.ReadCloser, models.ObjectInfo, error)
}
