// Package httpx provides HTTP response utilities around the API envelope.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type userError struct {
	base    error
	message string
}

func (e *userError) Error() string { return e.message }

func (e *userError) Unwrap() error { return e.base }

// Fail attaches a user-facing message to one of the sentinel errors.
func Fail(base error, message string) error {
	return &userError{base: base, message: message}
}

// UserMessage returns the message safe to surface to API clients.
func UserMessage(err error) string {
	var ue *userError
	if errors.As(err, &ue) {
		return ue.message
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrUnauthorized):
		return err.Error()
	}
	return "Something went wrong"
}

// RespondError maps domain errors to envelope responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, UserMessage(err))
	case errors.Is(err, ErrDuplicate):
		Error(w, http.StatusConflict, UserMessage(err))
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, UserMessage(err))
	case errors.Is(err, ErrForbidden):
		Error(w, http.StatusForbidden, UserMessage(err))
	case errors.Is(err, ErrUnauthorized):
		Error(w, http.StatusUnauthorized, UserMessage(err))
	default:
		Error(w, http.StatusInternalServerError, UserMessage(err))
	}
}
