package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError reports rejected input. Each entry of violations is a
// human readable message about one field.
func NewValidationError(message string, violations ...string) error {
	var details map[string]any
	if len(violations) > 0 {
		details = map[string]any{"errorsList": violations}
	}
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewTooManyRequests(message string) error {
	return NewDomainError("TOO_MANY_REQUESTS", message, http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts any error into a DomainError. Unknown errors become
// opaque internal errors so nothing about them reaches the client.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromFiberError(fiberErr)
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func fromFiberError(err *fiber.Error) *DomainError {
	switch err.Code {
	case http.StatusBadRequest:
		return NewDomainError("VALIDATION_FAILED", err.Message, err.Code, nil)
	case http.StatusUnauthorized:
		return NewDomainError("UNAUTHORIZED", err.Message, err.Code, nil)
	case http.StatusForbidden:
		return NewDomainError("FORBIDDEN", err.Message, err.Code, nil)
	case http.StatusNotFound:
		return NewDomainError("NOT_FOUND", err.Message, err.Code, nil)
	case http.StatusMethodNotAllowed:
		return NewDomainError("METHOD_NOT_ALLOWED", err.Message, err.Code, nil)
	case http.StatusRequestEntityTooLarge:
		return NewDomainError("PAYLOAD_TOO_LARGE", err.Message, err.Code, nil)
	}
	if err.Code >= http.StatusInternalServerError {
		return &DomainError{
			Code:       "INTERNAL_ERROR",
			Message:    "internal server error",
			HTTPStatus: http.StatusInternalServerError,
			Err:        err,
		}
	}
	return NewDomainError("REQUEST_FAILED", err.Message, err.Code, nil)
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
