package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	clienterrors "github.com/jrsteele09/community-client/internal/errors"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string // server-provided "message", when present
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("received %d from API server", e.StatusCode)
	}
	return fmt.Sprintf("received %d from API server: %s", e.StatusCode, e.Message)
}

// Unauthorized reports whether the backend rejected the credentials.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}
	var errBody struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errBody) == nil {
		apiErr.Message = errBody.Message
		if apiErr.Message == "" {
			apiErr.Message = errBody.Error
		}
	}
	return apiErr
}

// IsUnauthorized reports whether err is a 401/403 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return clienterrors.As(err, &apiErr) && apiErr.Unauthorized()
}
