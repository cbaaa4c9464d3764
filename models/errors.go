package models

import (
	"errors"
	"fmt"
)

// Kind classifies failures so the HTTP edge can pick a status without string matching.
type Kind int

const (
	KindStore Kind = iota
	KindNotFound
	KindConflict
	KindValidation
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrStore      = errors.New("store failure")

	// ErrInvalidCredentials is returned by login for an unknown user and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) and friends match on the kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrStore:
		return e.Kind == KindStore
	}
	return false
}

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: KindConflict, Message: msg} }

func Invalid(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

// StoreFailure wraps a driver error with the operation that failed, e.g. "Error creating event".
// Errors that already carry a kind are passed through untouched.
func StoreFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindStore, Message: op, Err: err}
}

// KindOf reports the kind of err. Unclassified errors count as store failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return fmt.Sprint(err)
}
