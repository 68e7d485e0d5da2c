package dto

import "net/http"

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Domain codes
// not listed here fall back to 500 so an unmapped error is loud rather
// than silently user-attributed.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	// Resource errors
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Input errors -> 400 Bad Request
	"INVALID_INPUT":       http.StatusBadRequest,
	"INVALID_RESERVATION": http.StatusBadRequest,

	// Business rule errors -> 409 when the resource state conflicts with
	// the request, 422 for rule violations
	"INVALID_STATE":          http.StatusUnprocessableEntity,
	"ALREADY_INVOICED":       http.StatusConflict,
	"NOT_INVOICEABLE":        http.StatusUnprocessableEntity,
	"PROTECTED_FIELDS":       http.StatusUnprocessableEntity,
	"DELETE_BLOCKED":         http.StatusUnprocessableEntity,
	"NO_INVOICE":             http.StatusUnprocessableEntity,
	"NOT_LAST_IN_SERIES":     http.StatusUnprocessableEntity,
	"INVALID_INVOICE_NUMBER": http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
