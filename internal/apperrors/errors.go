package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the HTTP layer can pick a status code
// without inspecting message text.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation"
	KindInsufficientStock Kind = "insufficient_stock"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindConflict          Kind = "conflict"
	KindStorage           Kind = "storage"
)

// Error carries the kind plus enough context (entity, operation) to log
// the failure without re-deriving it at the call site.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "sales.Create"
	Entity  string // entity involved, e.g. "product 12"
	Message string
	Err     error // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports that an entity id did not resolve.
func NotFound(op, entity string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Entity: entity, Message: entity + " not found"}
}

// Validation reports a malformed or out-of-range input.
func Validation(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: msg}
}

// InsufficientStock reports a sale that would drive on-hand negative.
// The message names the product and the shortfall.
func InsufficientStock(op, product string, available, requested int) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Op:      op,
		Entity:  product,
		Message: fmt.Sprintf("insufficient stock for %s: available %d, requested %d", product, available, requested),
	}
}

// Conflict reports a concurrent-update race detected via affected-row count.
func Conflict(op, msg string) *Error {
	return &Error{Kind: KindConflict, Op: op, Message: msg}
}

// Unauthorized reports a missing or invalid session.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Op: "auth", Message: msg}
}

// Forbidden reports a valid session that lacks the required capability.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Op: "auth", Message: msg}
}

// Storage wraps an unexpected failure from the underlying store.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Message: "storage failure", Err: err}
}

// KindOf extracts the kind from err, defaulting to KindStorage for
// errors that did not originate in this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// Is lets errors.Is match two taxonomy errors by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}
