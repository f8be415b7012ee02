package dto

import (
	"net/http"

	"github.com/stockledger/backend/internal/domain/shared"
)

// StatusForKind maps a domain error kind to an HTTP status code.
//
//	Validation            -> 400
//	NotFound              -> 404
//	InvalidState          -> 409
//	InvariantViolation    -> 422
//	ConcurrencyConflict   -> 409
//	InsufficientStock     -> 409
func StatusForKind(kind shared.ErrorKind) int {
	switch kind {
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindInvalidState:
		return http.StatusConflict
	case shared.KindInvariantViolation:
		return http.StatusUnprocessableEntity
	case shared.KindConcurrencyConflict:
		return http.StatusConflict
	case shared.KindInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError converts any error into an HTTP status and response body.
// Domain errors keep their code and message; everything else is an opaque
// internal error.
func FromError(err error) (int, Response) {
	kind := shared.KindOf(err)
	if kind == "" {
		return http.StatusInternalServerError, NewErrorResponse("INTERNAL_ERROR", "Internal server error")
	}

	var de *shared.DomainError
	code := string(kind)
	message := err.Error()
	if shared.AsDomainError(err, &de) {
		code = de.Code
		message = de.Message
	}
	return StatusForKind(kind), NewErrorResponse(code, message)
}
