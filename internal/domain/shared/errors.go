package shared

import "fmt"

// ErrorKind classifies a domain error so callers can decide how to react
// (surface, correct input, or retry) without string matching.
type ErrorKind string

const (
	// KindValidation marks malformed input. Recoverable by correcting the input.
	KindValidation ErrorKind = "VALIDATION"
	// KindNotFound marks a missing item, batch, warehouse or entry reference.
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindInvalidState marks an operation performed in the wrong lifecycle state,
	// such as mutating a posted stock entry.
	KindInvalidState ErrorKind = "INVALID_STATE"
	// KindInvariantViolation marks a business-rule rejection, such as a batch
	// counter that would go negative.
	KindInvariantViolation ErrorKind = "INVARIANT_VIOLATION"
	// KindConcurrencyConflict marks a stale read detected during posting.
	// The whole operation is safe to retry from scratch.
	KindConcurrencyConflict ErrorKind = "CONCURRENCY_CONFLICT"
	// KindInsufficientStock marks an issue that exceeds available quantity.
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
)

// DomainError is the error type returned by all domain operations.
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target matches this error. A DomainError with an empty
// Code acts as a kind-level sentinel, so errors.Is(err, ErrNotFound) matches
// any not-found error regardless of its specific code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Kind == t.Kind && e.Code == t.Code
	}
	return e.Kind == t.Kind
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewValidationErrorf creates a validation error with a formatted message.
func NewValidationErrorf(code, format string, args ...any) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: code, Message: message}
}

// NewInvalidStateError creates an invalid-state error.
func NewInvalidStateError(code, message string) *DomainError {
	return &DomainError{Kind: KindInvalidState, Code: code, Message: message}
}

// NewInvariantViolation creates an invariant-violation error naming the broken rule.
func NewInvariantViolation(code, message string) *DomainError {
	return &DomainError{Kind: KindInvariantViolation, Code: code, Message: message}
}

// NewConcurrencyConflict creates a concurrency-conflict error.
func NewConcurrencyConflict(code, message string) *DomainError {
	return &DomainError{Kind: KindConcurrencyConflict, Code: code, Message: message}
}

// NewInsufficientStockError creates an insufficient-stock error.
func NewInsufficientStockError(code, message string) *DomainError {
	return &DomainError{Kind: KindInsufficientStock, Code: code, Message: message}
}

// Kind-level sentinels for use with errors.Is.
var (
	ErrValidation          = &DomainError{Kind: KindValidation, Message: "Invalid input provided"}
	ErrNotFound            = &DomainError{Kind: KindNotFound, Message: "Resource not found"}
	ErrInvalidState        = &DomainError{Kind: KindInvalidState, Message: "Operation not allowed in current state"}
	ErrInvariantViolation  = &DomainError{Kind: KindInvariantViolation, Message: "Business invariant violated"}
	ErrConcurrencyConflict = &DomainError{Kind: KindConcurrencyConflict, Message: "Resource was modified by another process"}
	ErrInsufficientStock   = &DomainError{Kind: KindInsufficientStock, Message: "Insufficient stock available"}
)

// AsDomainError unwraps err looking for a DomainError, reporting whether one
// was found.
func AsDomainError(err error, target **DomainError) bool {
	return as(err, target)
}

// KindOf returns the kind of err if it is (or wraps) a DomainError,
// or an empty kind otherwise.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if as(err, &de) {
		return de.Kind
	}
	return ""
}

// as is a local alias to avoid importing errors in every caller of KindOf.
func as(err error, target **DomainError) bool {
	for err != nil {
		if de, ok := err.(*DomainError); ok {
			*target = de
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
