package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an RFC 7807 problem response from the API.
type APIError struct {
	StatusCode int    `json:"status"`
	Title      string `json:"title"`
	Detail     string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return e.Title
}

// IsAuthError returns true if this is an authentication or authorization error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsUnauthorized returns true for 401 responses. A 401 may just mean the
// access token expired; one re-login is worth trying before giving up.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsForbidden returns true for 403 responses. Retrying a 403 with the same
// credentials never succeeds.
func (e *APIError) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// IsNotFound returns true if this is a not found error.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsDuplicate returns true for conflict responses. The passage intake
// endpoint absorbs replays with a 200, so this only fires on servers (or
// proxies) that surface the conflict directly; callers treat it as success.
func (e *APIError) IsDuplicate() bool {
	return e.StatusCode == http.StatusConflict
}

// IsValidationError returns true for 400 responses. The request will never
// succeed as sent.
func (e *APIError) IsValidationError() bool {
	return e.StatusCode == http.StatusBadRequest
}

// IsRetryable returns true for server-side errors worth retrying.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// AsAPIError unwraps err into an *APIError if there is one. Transport
// failures (connection refused, timeout) are not APIErrors; callers treat
// those as transient.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRetryable reports whether an error from a client call is worth
// retrying: transport failures always are, API errors only when the server
// says so.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.IsRetryable()
	}
	return true
}
