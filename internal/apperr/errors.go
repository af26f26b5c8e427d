// Package apperr categorizes application errors so the HTTP layer can map
// them onto status codes without knowing where they came from.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind is the category of an error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindQuota        Kind = "quota"
	KindRateLimit    Kind = "rate_limit"
	KindInternal     Kind = "internal"
)

// Error is an error with a category, a stable code and optional details that
// are merged into the JSON body.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindQuota, KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: "INVALID_INPUT", Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: resource + " not found"}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Code: "CONFLICT", Message: message}
}

// QuotaExceeded is returned when the caller used up today's generations.
func QuotaExceeded(message string, details map[string]any) *Error {
	return &Error{Kind: KindQuota, Code: "QUOTA_EXCEEDED", Message: message, Details: details}
}

func RateLimited() *Error {
	return &Error{Kind: KindRateLimit, Code: "RATE_LIMITED", Message: "Too many requests, slow down"}
}

// Internal wraps an unexpected failure. The cause is never shown to clients.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "Internal server error", Cause: cause}
}

// From returns err as an *Error, wrapping anything uncategorized as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Body renders the JSON payload for e.
func (e *Error) Body() gin.H {
	body := gin.H{"error": e.Message, "code": e.Code}
	for k, v := range e.Details {
		body[k] = v
	}
	return body
}

// Respond writes err as a JSON error response.
func Respond(c *gin.Context, err error) {
	appErr := From(err)
	if appErr.Kind == KindInternal {
		_ = c.Error(err)
	}
	c.JSON(appErr.Status(), appErr.Body())
}

// Abort writes err and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Respond(c, err)
	c.Abort()
}
