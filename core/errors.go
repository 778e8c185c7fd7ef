package core

import (
	"net/http"

	"github.com/pkg/errors"
)

// User-facing messages for the HTTP statuses the backend is known to return.
// Anything else keeps the message reported by the server.
const (
	MsgSessionExpired = "session expired, please log in again"
	MsgForbidden      = "you do not have permission to perform this action"
	MsgNotFound       = "resource not found"
	MsgTooManyReqs    = "too many requests, please try again later"
	MsgServerError    = "server error, please try again later"
	MsgUnknown        = "an unknown error occurred"
)

// APIError is returned for any non-2xx backend response.
type APIError struct {
	Status int
	Detail string // raw "detail" field from the response body, if any
}

func NewAPIError(status int, detail string) *APIError {
	return &APIError{Status: status, Detail: detail}
}

func (err *APIError) Error() string {
	switch err.Status {
	case http.StatusUnauthorized:
		return MsgSessionExpired
	case http.StatusForbidden:
		return MsgForbidden
	case http.StatusNotFound:
		if err.Detail != "" {
			return err.Detail
		}
		return MsgNotFound
	case http.StatusInternalServerError:
		return MsgServerError
	default:
		if err.Detail != "" {
			return err.Detail
		}
		return http.StatusText(err.Status)
	}
}

// StatusOf returns the HTTP status carried by err, or 0 for transport-level
// failures and non-API errors.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsStatus(err error, status int) bool {
	return StatusOf(err) == status
}

// Classify maps err to the message shown to the user, centralizing the
// status-based wording used across handlers.
func Classify(err error) string {
	switch status := StatusOf(err); {
	case status == http.StatusUnauthorized:
		return MsgSessionExpired
	case status == http.StatusForbidden:
		return MsgForbidden
	case status == http.StatusNotFound:
		return MsgNotFound
	case status == http.StatusTooManyRequests:
		return MsgTooManyReqs
	case status >= http.StatusInternalServerError:
		return MsgServerError
	case err != nil && err.Error() != "":
		return err.Error()
	default:
		return MsgUnknown
	}
}

// ShouldRetry reports whether err is of a kind a caller may retry.
// Advisory only: nothing in this layer retries automatically.
func ShouldRetry(err error) bool {
	status := StatusOf(err)
	if status == 0 {
		return false
	}
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

// IsNetworkError reports whether err never made it to an HTTP response.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	return !errors.As(err, &apiErr)
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}
