package services

import (
	"errors"
	"fmt"

	"github.com/CrowderSoup/gamific/database"
	"github.com/CrowderSoup/gamific/ordering"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindUnauthenticated
	KindInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvariant:
		return "invariant"
	default:
		return "internal"
	}
}

// Error is a failure the HTTP layer can turn into a status code.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func notFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func unauthenticated(message string, err error) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message, Err: err}
}

// KindOf classifies err. Validation failures, missing rows and broken
// orderings keep their kind through any amount of wrapping.
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, database.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ordering.ErrInconsistentOrdering):
		return KindInvariant
	}
	return KindInternal
}
