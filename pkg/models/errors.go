package models

// ErrorCode is the closed set of machine-readable error codes surfaced to
// callers. The HTTP handlers are the only place these map to status codes.
type ErrorCode string

const (
	// Input validation
	ErrCodeMissingCustomerID       ErrorCode = "missing_customer_id"
	ErrCodeInvalidCustomerIDFormat ErrorCode = "invalid_customer_id_format"
	ErrCodeMissingFilename         ErrorCode = "missing_filename"

	// Token verification
	ErrCodeMissingToken  ErrorCode = "missing_token"
	ErrCodeInvalidToken  ErrorCode = "invalid_token"
	ErrCodeTokenExpired  ErrorCode = "token_expired"
	ErrCodeInvalidClaims ErrorCode = "invalid_claims"

	// Authorization
	ErrCodeNotEntitled ErrorCode = "not_entitled"

	// Throttling
	ErrCodeRateLimited ErrorCode = "rate_limited"

	// Terminal lookups and infrastructure
	ErrCodeNotFound    ErrorCode = "not_found"
	ErrCodeServerError ErrorCode = "server_error"
)

// ErrorResponse is the stable JSON error body returned by every endpoint
// except the binary streaming and public verification routes.
type ErrorResponse struct {
	OK    bool      `json:"ok"`
	Error ErrorCode `json:"error"`
}

func NewErrorResponse(code ErrorCode) ErrorResponse {
	return ErrorResponse{OK: false, Error: code}
}
