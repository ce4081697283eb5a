package helpers

import (
	"errors"
	"net/http"
)

// AppError carries the error taxonomy surfaced to clients: the HTTP status
// plus the message placed in the response envelope. Services return these;
// handlers map anything else to an internal error.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func ErrBadRequest(msg string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: msg}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Message: msg}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Status: http.StatusForbidden, Message: msg}
}

func ErrNotFound(msg string) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: msg}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Status: http.StatusConflict, Message: msg}
}

func ErrInternal(msg string) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Message: msg}
}

// StatusOf resolves the HTTP status for an error. Unknown errors are treated
// as internal so store/gateway failures never leak details to the client.
func StatusOf(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the client-safe message for an error.
func MessageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}
