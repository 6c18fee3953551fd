package httpx

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// APIErrorCode represents specific upstream API failure types.
type APIErrorCode string

const (
	ErrRateLimited  APIErrorCode = "RATE_LIMITED"
	ErrUnavailable  APIErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrTimeout      APIErrorCode = "UPSTREAM_TIMEOUT"
	ErrUnauthorized APIErrorCode = "UNAUTHORIZED"
	ErrBadResponse  APIErrorCode = "BAD_RESPONSE"
)

// APIError is a structured error for upstream REST calls.
type APIError struct {
	Code       APIErrorCode
	Message    string
	StatusCode int
	Retryable  bool
	RetryAfter time.Duration // from a Retry-After header, if present
	Cause      error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err is an APIError worth retrying.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return false
}

// RetryAfter extracts the server-requested backoff from err, or zero.
func RetryAfter(err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return 0
}

// ParseRetryAfter interprets a Retry-After header value. Only the
// delay-seconds form is supported; anything else yields zero and the
// caller falls back to computed backoff.
func ParseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
