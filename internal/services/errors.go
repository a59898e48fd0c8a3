package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// NotFoundError means no product matched the given id or natural-key term.
type NotFoundError struct {
	Term string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product with term %q not found", e.Term)
}

// ConflictError means a uniqueness invariant (title or slug) was violated.
// Detail carries the offending value for client display.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s already exists", e.Detail)
}

// InternalError is an opaque storage or transport fault. The raw cause is
// logged server-side where the error is translated; it never reaches callers.
type InternalError struct{}

func (e *InternalError) Error() string {
	return "unexpected error occurred, check server logs"
}

// translateStorageError maps a raw storage failure to the caller-facing error
// taxonomy. Unique-constraint violations become ConflictError carrying detail;
// everything else is logged in full and collapsed to an opaque InternalError.
// Requires the gorm connection to be opened with TranslateError so postgres
// and sqlite unique violations both surface as gorm.ErrDuplicatedKey.
func translateStorageError(err error, detail string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ConflictError{Detail: detail}
	}
	log.Printf("Unexpected storage error: %v", err)
	return &InternalError{}
}
