package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// InvalidCredentials covers unknown emails and wrong passwords alike.
// SessionRequired covers missing, malformed and expired tokens alike.
var (
	InvalidCredentials = &ApiErr{StatusCode: http.StatusUnauthorized, err: fmt.Errorf("Identifiants invalides%w", silent(ErrUnauthorized))}
	SessionRequired    = &ApiErr{StatusCode: http.StatusUnauthorized, err: fmt.Errorf("Authentification requise%w", silent(ErrUnauthorized))}
)

// Authentication & Authorization Errors. These stay in the logs.
var (
	ErrMissingToken     = errors.New("missing access token")
	ErrExpiredToken     = errors.New("expired access token")
	ErrInvalidToken     = errors.New("invalid access token")
	ErrInsufficientRole = errors.New("insufficient role")
)

func Malformed(payloadName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        fmt.Errorf("%s malformed%w", payloadName, silent(ErrBadRequest)),
	}
}

func NewInsufficientRoleError(requiredRole string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("Accès refusé%w%w", silent(ErrInsufficientRole), silent(ErrForbidden)),
		Details:    fmt.Sprintf("role %s required", requiredRole),
		Field:      "authorization",
	}
}
