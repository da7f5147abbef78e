package iics

import (
	"errors"
	"fmt"

	"github.com/fivetwenty-io/iics-client/internal/constants"
)

// ErrorKind tags an Error with the failure class callers should branch on.
type ErrorKind string

const (
	// ErrorKindAuth covers authentication failures and expired sessions
	// (HTTP 401 and 403), and any operation attempted without a session.
	ErrorKindAuth ErrorKind = "auth"

	// ErrorKindNotFound covers HTTP 404.
	ErrorKindNotFound ErrorKind = "not_found"

	// ErrorKindRateLimit covers HTTP 429.
	ErrorKindRateLimit ErrorKind = "rate_limit"

	// ErrorKindServer covers HTTP 5xx.
	ErrorKindServer ErrorKind = "server"

	// ErrorKindValidation covers responses that could not be parsed or
	// validated into the target shape. Never retried.
	ErrorKindValidation ErrorKind = "validation"

	// ErrorKindGeneric covers every other non-2xx status.
	ErrorKindGeneric ErrorKind = "generic"
)

// Static errors for err113 compliance.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrExpectedArray        = errors.New("expected a JSON array")
)

// Error is a classified IICS API failure.
//
// Programmatic callers are expected to discriminate by Kind (or the Is*
// helpers), not by message text. The message always includes the status
// code, the failing URL, and the response body truncated for display; the
// full body is retained in Body for diagnostics.
type Error struct {
	Kind       ErrorKind
	StatusCode int    // zero when no HTTP response is associated
	URL        string // request URL, when known
	Body       string // full response body, or the offending raw payload
	Shape      string // target shape name for validation failures
	detail     string
	cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.detail
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Classify maps an HTTP status code to a typed Error. It returns nil for any
// status in [200, 300).
func Classify(statusCode int, body, url string) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	detail := fmt.Sprintf("HTTP %d error for %s: %s", statusCode, url, truncate(body, constants.BodyTruncateLimit))

	kind := ErrorKindGeneric

	switch {
	case statusCode == 401 || statusCode == 403:
		kind = ErrorKindAuth
	case statusCode == 404:
		kind = ErrorKindNotFound
	case statusCode == 429:
		kind = ErrorKindRateLimit
	case statusCode >= 500:
		kind = ErrorKindServer
	}

	return &Error{
		Kind:       kind,
		StatusCode: statusCode,
		URL:        url,
		Body:       body,
		detail:     detail,
	}
}

// NewAuthError builds an auth-kind error that is not tied to an HTTP
// response, such as querying session state before a login.
func NewAuthError(detail string) *Error {
	return &Error{
		Kind:   ErrorKindAuth,
		detail: detail,
	}
}

// NewValidationError builds a validation-kind error carrying the target
// shape name and the raw payload that failed to parse.
func NewValidationError(shape string, raw []byte, cause error) *Error {
	return &Error{
		Kind:   ErrorKindValidation,
		Body:   string(raw),
		Shape:  shape,
		detail: fmt.Sprintf("failed to parse %s: %v", shape, cause),
		cause:  cause,
	}
}

// IsAuth checks whether the error is an authentication error.
func IsAuth(err error) bool {
	return isKind(err, ErrorKindAuth)
}

// IsNotFound checks whether the error is a not found error.
func IsNotFound(err error) bool {
	return isKind(err, ErrorKindNotFound)
}

// IsRateLimit checks whether the error is a rate limit error.
func IsRateLimit(err error) bool {
	return isKind(err, ErrorKindRateLimit)
}

// IsServerError checks whether the error is a 5xx server error.
func IsServerError(err error) bool {
	return isKind(err, ErrorKindServer)
}

// IsValidation checks whether the error is a validation error.
func IsValidation(err error) bool {
	return isKind(err, ErrorKindValidation)
}

func isKind(err error, kind ErrorKind) bool {
	apiErr := &Error{}
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}

	return false
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit]
}
