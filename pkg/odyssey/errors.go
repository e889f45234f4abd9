package odyssey

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind categorizes API failures so the workflow can tell a completed action
// from an unmet precondition from a transient fault.
type Kind int

const (
	// KindTransient covers network faults, 5xx responses and malformed
	// bodies. Transient failures are retried.
	KindTransient Kind = iota
	// KindAlreadyDone means the action was performed earlier today
	// (checked in, claimed, opened). Not a failure.
	KindAlreadyDone
	// KindNotReady means a precondition is unmet (milestone not reached,
	// no boxes left). Skipped without retry.
	KindNotReady
	// KindUnauthorized means the bearer token is missing or expired.
	KindUnauthorized
	// KindInvalid covers remaining 4xx client errors.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindAlreadyDone:
		return "already_done"
	case KindNotReady:
		return "not_ready"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalid:
		return "invalid"
	default:
		return "transient"
	}
}

// APIError is returned for any non-success Odyssey response.
type APIError struct {
	HTTPStatus int
	Code       int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("odyssey api: %s (http %d)", e.Message, e.HTTPStatus)
	}
	return fmt.Sprintf("odyssey api: status %s (http %d)", e.Status, e.HTTPStatus)
}

// Kind classifies the error from the HTTP status and the API message.
func (e *APIError) Kind() Kind {
	switch e.HTTPStatus {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	}
	if e.HTTPStatus >= http.StatusInternalServerError {
		return KindTransient
	}

	msg := strings.ToLower(e.Message)
	switch {
	case strings.Contains(msg, "already"):
		return KindAlreadyDone
	case strings.Contains(msg, "not reached"),
		strings.Contains(msg, "not enough"),
		strings.Contains(msg, "insufficient"),
		strings.Contains(msg, "no box"),
		strings.Contains(msg, "not yet"):
		return KindNotReady
	case strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "token"):
		return KindUnauthorized
	}
	if e.HTTPStatus >= http.StatusBadRequest {
		return KindInvalid
	}
	return KindTransient
}

// KindOf extracts the classification from any error. Non-API errors
// (connection resets, timeouts, decode failures) count as transient.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	return KindTransient
}

// IsAlreadyDone reports whether err means the action already happened today.
func IsAlreadyDone(err error) bool {
	return err != nil && KindOf(err) == KindAlreadyDone
}

// IsNotReady reports whether err means a precondition is unmet.
func IsNotReady(err error) bool {
	return err != nil && KindOf(err) == KindNotReady
}

// IsUnauthorized reports whether err means the session token is invalid.
func IsUnauthorized(err error) bool {
	return err != nil && KindOf(err) == KindUnauthorized
}

// IsRetryable reports whether a retry can help.
func IsRetryable(err error) bool {
	return err != nil && KindOf(err) == KindTransient
}
