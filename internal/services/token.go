package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rinawarp/downloads/internal/config"
	"github.com/rinawarp/downloads/pkg/models"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidClaims = errors.New("invalid claims")
)

// TokenService mints and validates compact download tokens of the form
// base64url(payload).base64url(sig), where payload is the UTF-8 JSON claims
// and sig = HMAC-SHA256(secret, payload). Tokens carry their own expiry in
// Unix milliseconds and are never stored server-side.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	logger *logrus.Logger
}

func NewTokenService(cfg *config.Config, logger *logrus.Logger) *TokenService {
	return &TokenService{
		secret: []byte(cfg.Auth.DownloadSecret),
		ttl:    time.Duration(cfg.Auth.TokenTTLHours) * time.Hour,
		logger: logger,
	}
}

// Issue signs a token for the customer, valid for the configured TTL.
func (s *TokenService) Issue(customerID string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.ttl)

	payload, err := json.Marshal(models.DownloadClaims{
		CustomerID: customerID,
		Exp:        expiresAt.UnixMilli(),
	})
	if err != nil {
		return "", time.Time{}, err
	}

	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write(payload)
	sig := mac.Sum(nil)

	enc := base64.RawURLEncoding
	return enc.EncodeToString(payload) + "." + enc.EncodeToString(sig), expiresAt, nil
}

// wireClaims keeps exp raw so a non-numeric value fails the expiry check
// instead of failing the whole decode.
type wireClaims struct {
	CustomerID string          `json:"customer_id"`
	Exp        json.RawMessage `json:"exp"`
}

// Verify validates shape, signature, expiry and claims, in that order.
// Any failure comes back as one of ErrInvalidToken, ErrTokenExpired or
// ErrInvalidClaims; it never panics on hostile input.
func (s *TokenService) Verify(token string, now time.Time) (models.DownloadClaims, error) {
	var claims models.DownloadClaims

	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return claims, ErrInvalidToken
	}

	enc := base64.RawURLEncoding
	payload, err := enc.DecodeString(parts[0])
	if err != nil {
		return claims, ErrInvalidToken
	}
	sig, err := enc.DecodeString(parts[1])
	if err != nil {
		return claims, ErrInvalidToken
	}

	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write(payload)
	want := mac.Sum(nil)

	if !hmac.Equal(sig, want) {
		return claims, ErrInvalidToken
	}

	var wire wireClaims
	if err := json.Unmarshal(payload, &wire); err != nil {
		return claims, ErrInvalidToken
	}

	exp, err := parseExp(wire.Exp)
	if err != nil {
		return claims, ErrTokenExpired
	}
	if float64(now.UnixMilli()) > exp {
		return claims, ErrTokenExpired
	}

	if wire.CustomerID == "" {
		return claims, ErrInvalidClaims
	}

	claims.CustomerID = wire.CustomerID
	claims.Exp = int64(exp)
	return claims, nil
}

// parseExp accepts only a finite JSON number. Missing, quoted, or
// overflowed values all count as expired.
func parseExp(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, errors.New("exp missing")
	}
	exp, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, err
	}
	return exp, nil
}
