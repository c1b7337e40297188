package errors

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrorCode represents a repotxt error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"          // 404
	ErrFileNotFound      ErrorCode = "FILE_NOT_FOUND"     // 404
	ErrAcquisitionFailed ErrorCode = "ACQUISITION_FAILED" // 422
	ErrCancelled         ErrorCode = "CANCELLED"          // 499
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a snapshot cannot be found.
func NewNotFound(identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("snapshot not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewPathNotFound creates a 404 error for a relative path missing from a snapshot
// that does exist.
func NewPathNotFound(snapshotID, path string) *Error {
	return &Error{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file %q not found in snapshot %s", path, snapshotID),
		Details: map[string]any{"snapshot_id": snapshotID, "path": path},
	}
}

// NewAcquisitionFailed creates a 422 error when a repository could not be cloned.
// The message is the version-control client's own diagnostic so users can fix the URL.
// Credentials embedded in the URL never reach the message or details.
func NewAcquisitionFailed(repoURL, reason string) *Error {
	if reason == "" {
		reason = "clone failed"
	}
	safe := RedactURL(repoURL)
	if safe != repoURL {
		reason = strings.ReplaceAll(reason, repoURL, safe)
	}
	return &Error{
		Code:    ErrAcquisitionFailed,
		Status:  422,
		Message: fmt.Sprintf("could not acquire repository %s: %s", safe, reason),
		Details: map[string]any{"repository_url": safe},
	}
}

// RedactURL drops the userinfo (user:token@) from a repository URL so it can
// be logged or shown. Values that do not parse as URLs are returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = nil
	return u.String()
}

// NewCancelled creates a 499 error when the caller gave up on an operation.
func NewCancelled(op string) *Error {
	return &Error{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The original error is kept in Details for logging; the message stays generic.
func NewInternal(err error) *Error {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (or anything it wraps) is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}
