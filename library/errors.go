package library

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the library API. Detail carries the
// server's structured message when the body was parseable; otherwise Detail
// is empty and Error falls back to a generic status-based message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error, status %d", e.Status)
}

// newAPIError builds an APIError from a response body, tolerating bodies
// that are not the expected {"detail": ...} shape.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Detail string `json:"detail"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			payload.Detail = ""
		}
	}
	return &APIError{Status: status, Detail: payload.Detail}
}

// IsNotFound reports whether err is an API error with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// AsAPIError unwraps err into an *APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
