// Package apierrors provides shared error types for the Agora client.
package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrBadRequest is returned for 400 responses.
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized is returned when the token is missing, invalid or expired.
	ErrUnauthorized = errors.New("invalid or expired token")

	// ErrForbidden is returned when the agent lacks permission for the operation.
	ErrForbidden = errors.New("permission denied")

	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when the request conflicts with existing state.
	ErrConflict = errors.New("resource conflict")

	// ErrValidation is returned when the server rejects the request payload.
	ErrValidation = errors.New("request validation failed")

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrClient is returned for any 4xx response.
	ErrClient = errors.New("client error")

	// ErrServer is returned for any 5xx response.
	ErrServer = errors.New("server error")
)

// APIError represents an HTTP error response from the Agora API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Is implements errors.Is for sentinel error matching. The dispatch is an
// exhaustive match over a closed set of status codes; codes outside the
// 4xx/5xx classes match nothing.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 400:
		return target == ErrBadRequest || target == ErrValidation || target == ErrClient
	case e.StatusCode == 401:
		return target == ErrUnauthorized || target == ErrClient
	case e.StatusCode == 403:
		return target == ErrForbidden || target == ErrClient
	case e.StatusCode == 404:
		return target == ErrNotFound || target == ErrClient
	case e.StatusCode == 409:
		return target == ErrConflict || target == ErrClient
	case e.StatusCode == 422:
		return target == ErrValidation || target == ErrClient
	case e.StatusCode == 429:
		return target == ErrRateLimited || target == ErrClient
	case e.StatusCode >= 500 && e.StatusCode <= 599:
		return target == ErrServer
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return target == ErrClient
	}
	return false
}

// FromResponse builds an APIError from a non-2xx status code and raw body.
// The server reports errors as {"detail": ...}; older routes use "error"
// or "message". Non-JSON bodies are kept verbatim as the message.
func FromResponse(statusCode int, body []byte) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    parseMessage(body),
		Body:       body,
	}
}

func parseMessage(body []byte) string {
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Detail) > 0 {
			var detail string
			if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
				return detail
			}
			// Structured detail (validation error lists) stays as compact JSON.
			return string(envelope.Detail)
		}
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return strings.TrimSpace(string(body))
}

// NetworkError represents a transport failure before a response was received.
type NetworkError struct {
	Err error
	URL string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a request that exceeded its deadline or was
// cancelled before completing. It is a distinct kind from NetworkError so
// callers can branch on it programmatically.
type TimeoutError struct {
	Err error
	URL string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// DecodeError represents a 2xx response whose body does not match the
// expected shape.
type DecodeError struct {
	Err  error
	Body []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
