// Package apperr is the error taxonomy shared by every module. Services return
// *Error values; handlers translate the Kind into an HTTP status.
package apperr

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindConflict:
		return "CONFLICT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindStorage:
		return "STORAGE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a classified domain error. Fields carries per-field validation
// failures keyed by JSON field name.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }
func Conflict(format string, args ...any) *Error   { return newf(KindConflict, format, args...) }
func NotFound(format string, args ...any) *Error   { return newf(KindNotFound, format, args...) }

func Unauthorized(format string, args ...any) *Error { return newf(KindUnauthorized, format, args...) }

// InvalidFields builds a validation error from a field -> reason map.
func InvalidFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// Storage wraps an unexpected store failure. The message is safe to show; err is not.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Message: op, Err: err}
}

// KindOf reports the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PostgreSQL SQLSTATE codes the repositories care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
)

// FromDB classifies a database/sql or lib/pq error. what names the entity for
// not-found and conflict messages.
func FromDB(err error, what string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NotFound("%s not found", what)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return &Error{Kind: KindConflict, Message: fmt.Sprintf("%s already exists (%s)", what, pqErr.Constraint), Err: err}
		case pgForeignKeyViolation:
			return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s references a missing record (%s)", what, pqErr.Constraint), Err: err}
		case pgNotNullViolation:
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("%s requires a value for %s", what, pqErr.Column), Err: err}
		}
	}
	return Storage(what+" storage failure", err)
}
