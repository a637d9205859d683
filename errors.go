package agora

import (
	"errors"
	"fmt"

	"github.com/agorahq/agora-go/internal/apierrors"
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrMissingBaseURL is returned when no base URL can be resolved from
	// any configuration source.
	ErrMissingBaseURL = errors.New("base URL is required")

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client has been closed")

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

	// ErrValidation is returned when the server rejects the request payload
	// (400 or 422).
	ErrValidation = errors.New("request validation failed")

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrClient is returned for any 4xx response.
	ErrClient = errors.New("client error")

	// ErrServer is returned for any 5xx response.
	ErrServer = errors.New("server error")
)

// AgoraError is implemented by all SDK error types.
type AgoraError interface {
	error
	AgoraError() // marker method
}

// APIError represents an HTTP error response from the Agora API. The raw
// response body is retained for diagnostics.
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

// AgoraError implements the AgoraError interface.
func (e *APIError) AgoraError() {}

// Is implements errors.Is for sentinel error matching: an explicit match
// over the closed set of mapped status codes, with class-level fallbacks
// for unmapped 4xx/5xx codes.
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

// AgoraError implements the AgoraError interface.
func (e *NetworkError) AgoraError() {}

// TimeoutError represents a request that exceeded its deadline or was
// cancelled before completing.
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

// AgoraError implements the AgoraError interface.
func (e *TimeoutError) AgoraError() {}

// DecodeError represents a 2xx response whose body did not match the
// expected shape. The raw body is retained for diagnostics.
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

// AgoraError implements the AgoraError interface.
func (e *DecodeError) AgoraError() {}

// wrapError converts internal transport errors to their public
// counterparts so errors.Is/errors.As work against this package's types.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			Body:       apiErr.Body,
		}
	}

	var timeoutErr *apierrors.TimeoutError
	if errors.As(err, &timeoutErr) {
		return &TimeoutError{Err: timeoutErr.Err, URL: timeoutErr.URL}
	}

	var netErr *apierrors.NetworkError
	if errors.As(err, &netErr) {
		return &NetworkError{Err: netErr.Err, URL: netErr.URL}
	}

	var decErr *apierrors.DecodeError
	if errors.As(err, &decErr) {
		return &DecodeError{Err: decErr.Err, Body: decErr.Body}
	}

	return err
}
