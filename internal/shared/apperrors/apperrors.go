package apperrors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies an application error into one of the failure classes
// every handler maps to an HTTP status at the request boundary.
type Kind int

const (
	KindValidation Kind = iota + 1 // missing/malformed fields
	KindConflict                   // duplicate identity, taken ordinal, duplicate key
	KindNotFound                   // referenced entity absent
	KindAuth                       // missing/invalid session
	KindForbidden                  // wrong role, deactivated account
	KindUpstream                   // external collaborator failure
	KindInternal                   // everything else
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets sentinel errors created by the constructors below be compared
// with errors.Is on kind + message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func Auth(msg string) *Error       { return &Error{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }

func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the classification of err, or KindInternal for anything
// that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// UniqueViolation reports whether err is a storage duplicate-key rejection
// on the named constraint. The unique index is the enforcement mechanism of
// record for the assignment invariants; callers surface this identically to
// their advisory pre-check failure.
func UniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

// ForeignKeyViolation reports whether err is a referential-integrity
// rejection (insert referencing a missing row, or delete of a row still
// referenced).
func ForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23503"
}
