package repository

import (
	"errors"
	"fmt"
)

// Operation kinds. A *Error always matches exactly one of these with
// errors.Is.
var (
	ErrFetchFailed  = errors.New("fetch failed")
	ErrInsertFailed = errors.New("insert failed")
	ErrUpdateFailed = errors.New("update failed")
	ErrDeleteFailed = errors.New("delete failed")

	// ErrReferentialIntegrity marks a delete refused because other records
	// still reference the row, or a write that references a missing one.
	ErrReferentialIntegrity = errors.New("record is still referenced")

	// ErrConflict marks a write that collides with a unique key: an
	// explicit id or uuid already in use, or a duplicate campaign code.
	ErrConflict = errors.New("record already exists")

	ErrNotFound  = errors.New("record not found")
	ErrMissingID = errors.New("record has no id")
)

// Error is returned by every repository operation that fails.
type Error struct {
	Kind   error
	Entity string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s", e.Entity, e.Kind)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds an *Error. Repository implementations outside this
// package use it to report failures in the same shape.
func NewError(kind error, entity, reason string, err error) *Error {
	return &Error{Kind: kind, Entity: entity, Reason: reason, Err: err}
}

// IsNotFound reports whether err is an update or delete of a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
