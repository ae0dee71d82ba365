// Package svcerr defines the error taxonomy shared by every service: each
// service-layer function returns an error wrapping one of the kind sentinels,
// and handlers map the kind to an HTTP status. No other error classification
// crosses a service boundary.
package svcerr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrUpstream   = errors.New("upstream failure")
)

func Validationf(format string, args ...interface{}) error {
	return kindf(ErrValidation, format, args...)
}

func NotFoundf(format string, args ...interface{}) error {
	return kindf(ErrNotFound, format, args...)
}

func Forbiddenf(format string, args ...interface{}) error {
	return kindf(ErrForbidden, format, args...)
}

func Conflictf(format string, args ...interface{}) error {
	return kindf(ErrConflict, format, args...)
}

func Upstreamf(format string, args ...interface{}) error {
	return kindf(ErrUpstream, format, args...)
}

func kindf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}

// HTTPStatus maps an error's kind to the status its handler should write.
// Unclassified errors are treated as internal.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
