package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a transport-layer error: the server answered with a non-2xx status.
type APIError struct {
	StatusCode int
	// Message is the server's "error" field, falling back to "message" and then the raw body
	Message   string
	Body      []byte
	RequestID string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

func newAPIError(statusCode int, body []byte, requestID string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    parseAPIError(body),
		Body:       body,
		RequestID:  requestID,
	}
}

// parseAPIError attempts to parse an API error response
func parseAPIError(body []byte) string {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error != "" {
			return errResp.Error
		}
		if errResp.Message != "" {
			return errResp.Message
		}
	}

	return string(body)
}

// IsTransportError reports whether err carries HTTP response metadata
func IsTransportError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsUnauthorized returns true if the server rejected the bearer token
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0 if there is none
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
