package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// CustomError is a user-facing error. Code is the HTTP status the error maps to
// and Message is the only text ever shown to the user.
type CustomError struct {
	Code    int
	Message string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

func New(code int, message string) error {
	return &CustomError{
		Code:    code,
		Message: message,
	}
}

var (
	ErrEmptyInput         = New(http.StatusBadRequest, "Please enter some text, URL, or number")
	ErrEmptyExport        = New(http.StatusBadRequest, "Please enter some text, URL, or number first")
	ErrMissingPayee       = New(http.StatusBadRequest, "Please enter a UPI ID")
	ErrMissingPayeeExport = New(http.StatusBadRequest, "Please enter a UPI ID first")
	ErrExportFailed       = New(http.StatusInternalServerError, "Failed to generate QR code. Please try again.")
	ErrUnsupportedFormat  = New(http.StatusNotFound, "Unsupported export format")
)

// UserMessage returns the text to show for err. Anything that is not a
// CustomError collapses into the generic export failure.
func UserMessage(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return ErrExportFailed.(*CustomError).Message
}

// StatusCode returns the HTTP status for err, 500 for unknown errors.
func StatusCode(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return http.StatusInternalServerError
}
