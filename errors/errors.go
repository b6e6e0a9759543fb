package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound           = fmt.Errorf("not found")
	ErrInvalidArgument    = fmt.Errorf("invalid argument")
	ErrConsistency        = fmt.Errorf("consistency error")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("invalid password")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")
	ErrForbidden          = fmt.Errorf("forbidden")
	ErrEmptyWords         = fmt.Errorf("no censored words loaded")
	ErrWorkerPanic        = fmt.Errorf("worker panicked")
)

// Is is re-exported so callers importing this package under its own name
// do not need the standard library one as well.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// MapToHTTPStatus translates a domain error into an HTTP status and a stable
// machine code. Unknown errors map to 500.
func MapToHTTPStatus(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case stderrors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case stderrors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest, "invalid_password"
	case stderrors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict, "user_already_exists"
	case stderrors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case stderrors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token"
	case stderrors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case stderrors.Is(err, ErrConsistency):
		return http.StatusInternalServerError, "consistency_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
