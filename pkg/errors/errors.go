package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMalformedQuery   = errors.New("malformed query")
	ErrUnsupportedQuery = errors.New("unsupported query")
	ErrIndexNotBuilt    = errors.New("index not built")
	ErrIndexFrozen      = errors.New("index already built")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
	ErrTimeout          = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// Malformed builds the error returned for any query that cannot be parsed.
func Malformed(format string, args ...any) *AppError {
	return Newf(ErrMalformedQuery, http.StatusBadRequest, format, args...)
}

// Unsupported builds the error returned when a query needs an index
// extension that was not built.
func Unsupported(format string, args ...any) *AppError {
	return Newf(ErrUnsupportedQuery, http.StatusUnprocessableEntity, format, args...)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrMalformedQuery), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedQuery):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrIndexNotBuilt), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
