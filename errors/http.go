package errors

import (
	"errors"
	"net/http"
)

// MapToHTTPStatus turns a domain error into the status answered by the HTTP surface.
// Unknown errors are server failures.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrMissingCredential),
		errors.Is(err, ErrMalformedCredential),
		errors.Is(err, ErrExpiredCredential),
		errors.Is(err, ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
