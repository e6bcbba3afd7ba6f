package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinawarp/downloads/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testTokenService(t *testing.T, ttlHours int) *TokenService {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.DownloadSecret = testSecret
	cfg.Auth.TokenTTLHours = ttlHours

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return NewTokenService(cfg, logger)
}

// forgeToken signs an arbitrary payload with the test secret so expiry and
// claim edge cases can be exercised with otherwise-valid signatures.
func forgeToken(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	_, _ = mac.Write(payload)
	sig := mac.Sum(nil)

	enc := base64.RawURLEncoding
	return enc.EncodeToString(payload) + "." + enc.EncodeToString(sig)
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := testTokenService(t, 4)

	before := time.Now()
	token, expiresAt, err := svc.Issue("cus_ABC123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "cus_ABC123", claims.CustomerID)
	assert.Equal(t, expiresAt.UnixMilli(), claims.Exp)

	// Expiry lands within [now, now + ttl]
	assert.GreaterOrEqual(t, claims.Exp, before.UnixMilli())
	assert.LessOrEqual(t, claims.Exp, before.Add(4*time.Hour+time.Second).UnixMilli())
}

func TestTokenService_MalformedShape(t *testing.T) {
	svc := testTokenService(t, 1)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "no dot", token: "abcdef"},
		{name: "three segments", token: "a.b.c"},
		{name: "empty payload", token: ".c2ln"},
		{name: "empty signature", token: "cGF5bG9hZA."},
		{name: "not base64url", token: "p@yload.si&"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token, time.Now())
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_TamperDetection(t *testing.T) {
	svc := testTokenService(t, 1)

	token, _, err := svc.Issue("cus_ABC123")
	require.NoError(t, err)

	dot := -1
	for i := range token {
		if token[i] == '.' {
			dot = i
		}
	}
	require.Greater(t, dot, 0)

	enc := base64.RawURLEncoding

	// Flip a single bit in every byte of the signature in turn; each
	// variant must fail verification.
	sig, err := enc.DecodeString(token[dot+1:])
	require.NoError(t, err)

	for i := range sig {
		mutated := make([]byte, len(sig))
		copy(mutated, sig)
		mutated[i] ^= 0x01

		_, err := svc.Verify(token[:dot+1]+enc.EncodeToString(mutated), time.Now())
		assert.ErrorIs(t, err, ErrInvalidToken, "bit flip at signature byte %d", i)
	}

	// A payload mutation must fail too.
	payload, err := enc.DecodeString(token[:dot])
	require.NoError(t, err)
	payload[0] ^= 0x01

	_, err = svc.Verify(enc.EncodeToString(payload)+token[dot:], time.Now())
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_WrongSecret(t *testing.T) {
	svc := testTokenService(t, 1)

	other := testTokenService(t, 1)
	other.secret = []byte("another-secret-another-secret-ab")

	token, _, err := other.Issue("cus_ABC123")
	require.NoError(t, err)

	_, err = svc.Verify(token, time.Now())
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Expiry(t *testing.T) {
	svc := testTokenService(t, 1)
	now := time.Now()

	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{
			name:    "one millisecond past expiry",
			payload: `{"customer_id":"cus_ABC123","exp":` + formatMilli(now.Add(-time.Millisecond)) + `}`,
			wantErr: ErrTokenExpired,
		},
		{
			name:    "exp missing",
			payload: `{"customer_id":"cus_ABC123"}`,
			wantErr: ErrTokenExpired,
		},
		{
			name:    "exp not a number",
			payload: `{"customer_id":"cus_ABC123","exp":"soon"}`,
			wantErr: ErrTokenExpired,
		},
		{
			name:    "exp overflows",
			payload: `{"customer_id":"cus_ABC123","exp":1e999}`,
			wantErr: ErrTokenExpired,
		},
		{
			name:    "customer id missing",
			payload: `{"exp":` + formatMilli(now.Add(time.Hour)) + `}`,
			wantErr: ErrInvalidClaims,
		},
		{
			name:    "payload not json",
			payload: `not json at all`,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(forgeToken([]byte(tt.payload)), now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenService_ValidAtExactExpiry(t *testing.T) {
	svc := testTokenService(t, 1)
	now := time.Now()

	payload := `{"customer_id":"cus_ABC123","exp":` + formatMilli(now) + `}`

	claims, err := svc.Verify(forgeToken([]byte(payload)), now)
	require.NoError(t, err)
	assert.Equal(t, "cus_ABC123", claims.CustomerID)
}

func formatMilli(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
