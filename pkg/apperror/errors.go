// Package apperror carries an HTTP status with an error so handlers can reply
// without knowing which layer failed.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error with the HTTP status it maps to.
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	cause   error
}

// FieldError is a validation failure on one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// ErrInvalidCredentials is returned for an unknown client or a wrong agent key.
var ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid client id or agent key"}

func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap keeps err as the cause so errors.Is still sees it.
func Wrap(code int, message string, err error) *AppError {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	return &AppError{Code: code, Message: message, cause: err}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: resource + " not found"}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

// NewUnavailableError reports a dependency such as the print queue being down.
func NewUnavailableError(message string, err error) *AppError {
	return Wrap(http.StatusServiceUnavailable, message, err)
}

// GetAppError converts an error to AppError. Unknown errors become a 500.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	msg := "Internal server error"
	if err != nil {
		msg = err.Error()
	}
	return &AppError{Code: http.StatusInternalServerError, Message: msg, cause: err}
}
