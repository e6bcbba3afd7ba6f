package models

import "time"

// DownloadClaims is the decoded payload of a signed download token.
// Exp is an absolute Unix timestamp in milliseconds.
type DownloadClaims struct {
	CustomerID string `json:"customer_id"`
	Exp        int64  `json:"exp"`
}

// ExpiresAt returns the claim expiry as a time.Time.
func (c DownloadClaims) ExpiresAt() time.Time {
	return time.UnixMilli(c.Exp)
}

type TokenResponse struct {
	OK        bool      `json:"ok"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Tier      string    `json:"tier"`
}
