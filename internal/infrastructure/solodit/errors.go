package solodit

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies client failures for callers deciding between abort and
// degrade-to-empty behavior.
type ErrorKind string

const (
	// KindConfig: missing or unusable credential at construction time.
	KindConfig ErrorKind = "config"
	// KindAuth: the service rejected the credential (401/403); never retried.
	KindAuth ErrorKind = "auth"
	// KindUnavailable: retries exhausted on rate limits, timeouts, or
	// transport failures.
	KindUnavailable ErrorKind = "unavailable"
	// KindMalformed: the response body could not be decoded as a result page.
	KindMalformed ErrorKind = "malformed"
)

// APIError carries the failure class plus whatever the transport reported.
type APIError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("solodit: %s (status %d)", e.Message, e.StatusCode)
	}
	return "solodit: " + e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func kindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return kindOf(err) == KindAuth }

// IsUnavailable reports whether err means the service could not be reached
// within the retry budget.
func IsUnavailable(err error) bool { return kindOf(err) == KindUnavailable }

// IsMalformed reports whether err means the service answered with an
// undecodable page.
func IsMalformed(err error) bool { return kindOf(err) == KindMalformed }

// IsConfig reports whether err is a construction-time configuration failure.
func IsConfig(err error) bool { return kindOf(err) == KindConfig }
