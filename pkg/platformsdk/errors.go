package platformsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes returned by the platform API.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeConflict           = "conflict"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeAccountInactive    = "account_inactive"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeTokenExpired       = "token_expired"
	ErrorCodeTokenInvalid       = "token_invalid"
	ErrorCodeNoPassword         = "no_password"
	ErrorCodeIllegalTransition  = "illegal_transition"
	ErrorCodeRateLimited        = "rate_limited"
	ErrorCodeServerError        = "server_error"
)

// APIError is a non-2xx response from the platform API. It carries the HTTP
// status code and the server's error envelope.
type APIError struct {
	StatusCode int `json:"-"`

	// Code is the machine-readable error code, e.g. "invalid_credentials".
	Code string `json:"error"`

	// Message is the human-readable description.
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform: %s (HTTP %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("platform: %s: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsConflict reports whether err is an APIError with status 409.
func IsConflict(err error) bool { return hasStatus(err, http.StatusConflict) }

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

func hasStatus(err error, code int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == code
}

// parseErrorResponse builds an APIError from a non-2xx response body. Bodies
// that are not the standard envelope (proxies, rate limiter plain text) still
// produce a usable error.
func parseErrorResponse(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = ErrorCodeServerError
		if statusCode == http.StatusTooManyRequests {
			apiErr.Code = ErrorCodeRateLimited
		}
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}
