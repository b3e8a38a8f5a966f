package schema

import (
	"errors"

	"github.com/nlstn/go-storefront/internal/repository"
)

// ErrValidation indicates an argument could not be decoded into the shape a
// resolver needs.
var ErrValidation = errors.New("storefront: validation failed")

// Error codes reported in the extensions.code member of GraphQL errors.
const (
	CodeNotFound    = "NOT_FOUND"
	CodeValidation  = "VALIDATION"
	CodeConflict    = "CONFLICT"
	CodePersistence = "PERSISTENCE"
	CodeInternal    = "INTERNAL"
)

// Error is a resolver error as presented to GraphQL clients. graphql-go copies
// Extensions into the formatted error.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions implements gqlerrors.ExtendedError.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// ErrorCode classifies err into one of the Code constants.
func ErrorCode(err error) string {
	var gqlErr *Error
	switch {
	case errors.As(err, &gqlErr):
		return gqlErr.Code
	case errors.Is(err, repository.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, repository.ErrInvalidInput):
		return CodeValidation
	case errors.Is(err, repository.ErrConflict):
		return CodeConflict
	case errors.Is(err, repository.ErrPersistence):
		return CodePersistence
	default:
		return CodeInternal
	}
}

// toGraphQLError wraps err for the client. Storage and internal failures get a
// generic message; the cause stays reachable through Unwrap for logging.
func toGraphQLError(err error) *Error {
	var gqlErr *Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}
	code := ErrorCode(err)
	msg := err.Error()
	switch code {
	case CodePersistence:
		msg = "storefront: the change could not be stored"
	case CodeInternal:
		msg = "storefront: internal error"
	}
	return &Error{Code: code, Message: msg, Err: err}
}
