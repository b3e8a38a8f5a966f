package storefront

import (
	"errors"
	"net/http"

	"github.com/nlstn/go-storefront/internal/repository"
	"github.com/nlstn/go-storefront/internal/schema"
)

// Sentinel errors for common storefront error conditions.
// These can be used with errors.Is() for error handling.
var (
	// ErrNotFound indicates the requested entity does not exist.
	// Read queries report it as null; mutations surface it with code NOT_FOUND.
	ErrNotFound = repository.ErrNotFound

	// ErrValidation indicates the request or one of its arguments could not be
	// decoded. Maps to HTTP 400 Bad Request and code VALIDATION.
	ErrValidation = schema.ErrValidation

	// ErrInvalidInput indicates well-formed input that references something
	// that does not exist, such as an unknown category name.
	ErrInvalidInput = repository.ErrInvalidInput

	// ErrConflict indicates a uniqueness violation. Maps to code CONFLICT.
	ErrConflict = repository.ErrConflict

	// ErrPersistence indicates a storage failure. The transaction was rolled back.
	ErrPersistence = repository.ErrPersistence

	// ErrMethodNotAllowed indicates the HTTP method cannot carry the request,
	// for instance a mutation sent with GET.
	ErrMethodNotAllowed = errors.New("storefront: method not allowed")

	// ErrBadRequest indicates an HTTP request without a usable GraphQL payload.
	ErrBadRequest = errors.New("storefront: bad request")
)

// Error codes reported in the extensions.code member of GraphQL errors.
const (
	CodeNotFound    = schema.CodeNotFound
	CodeValidation  = schema.CodeValidation
	CodeConflict    = schema.CodeConflict
	CodePersistence = schema.CodePersistence
	CodeInternal    = schema.CodeInternal
)

// StorefrontError is the error returned by resolvers and presented to clients.
// Code is copied into extensions.code; Err keeps the cause reachable through
// errors.Is() and errors.As().
type StorefrontError = schema.Error

// ErrorCode classifies err into one of the Code constants.
func ErrorCode(err error) string {
	return schema.ErrorCode(err)
}

// MapErrorToHTTPStatus returns the HTTP status code for request-level errors.
// Field errors inside a GraphQL result do not change the response status.
func MapErrorToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	}

	switch ErrorCode(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
