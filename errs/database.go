package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrDatabaseQuery = errors.New("database query failed")
)

// Database & Storage Specific Errors
var (
	ErrForeignKeyConstraint = errors.New("foreign key constraint violation")
)

const (
	conflictMessage         = "Une ressource avec cet identifiant existe déjà"
	invalidReferenceMessage = "Référence invalide"
	internalMessage         = "Erreur interne du serveur"
)

// NewDatabaseError classifies a store error. notFound is the client message
// for a missing row. The driver text is kept in Cause for the logs and never
// becomes part of the client message.
func NewDatabaseError(operation, notFound string, cause error) *ApiErr {
	switch {
	case cause == nil:
	case errors.Is(cause, gorm.ErrRecordNotFound):
		return &ApiErr{
			StatusCode: http.StatusNotFound,
			err:        fmt.Errorf("%s%w", notFound, silent(ErrNotFound)),
			Cause:      cause,
		}
	case IsUniqueViolation(cause):
		return &ApiErr{
			StatusCode: http.StatusConflict,
			err:        fmt.Errorf("%s%w%w", conflictMessage, silent(ErrAlreadyExists), silent(ErrConflict)),
			Cause:      cause,
		}
	case IsForeignKeyViolation(cause):
		return &ApiErr{
			StatusCode: http.StatusBadRequest,
			err:        fmt.Errorf("%s%w%w", invalidReferenceMessage, silent(ErrForeignKeyConstraint), silent(ErrBadRequest)),
			Details:    "The referenced resource does not exist or cannot be linked",
			Cause:      cause,
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        fmt.Errorf("%s%w%w", internalMessage, silent(ErrDatabaseQuery), silent(ErrInternal)),
		Details:    fmt.Sprintf("Failed to %s", operation),
		Cause:      cause,
	}
}

// IsUniqueViolation reports whether err comes from a unique index. gorm
// translates the postgres and sqlite codes when TranslateError is on; the
// string checks cover sessions opened without it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrAlreadyExists) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// IsForeignKeyViolation is the foreign key counterpart of IsUniqueViolation.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, ErrForeignKeyConstraint) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "foreign key constraint") || strings.Contains(msg, "FOREIGN KEY constraint failed")
}
