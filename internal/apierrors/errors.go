// Package apierrors defines the client-visible failures of the API.
//
// Every constructor fixes the kind, the HTTP status and the message of one
// failure, so the mapping from failure to response lives in this file only.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an APIError.
type Kind int

const (
	// KindValidation marks missing or malformed input.
	KindValidation Kind = iota + 1
	// KindConflict marks uniqueness violations.
	KindConflict
	// KindAuthentication marks bad credentials or invalid tokens.
	KindAuthentication
	// KindAuthorization marks authenticated callers that are not entitled.
	KindAuthorization
	// KindNotFound marks absent referenced resources.
	KindNotFound
	// KindDependency marks store, storage or signing failures.
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Codes identify individual failures inside a kind.
const (
	CodeMissingFields      = "MissingFields"
	CodeWeakPassword       = "WeakPassword"
	CodeInvalidUsername    = "InvalidUsername"
	CodeInvalidInput       = "InvalidInput"
	CodeEmailTaken         = "EmailTaken"
	CodeUserNotFound       = "UserNotFound"
	CodeInvalidCredentials = "InvalidCredentials"
	CodeNoToken            = "NoToken"
	CodeUnauthorized       = "Unauthorized"
	CodeForbidden          = "Forbidden"
	CodeBookNotFound       = "BookNotFound"
	CodeInternal           = "Internal"
)

// APIError is a failure that is safe to render to clients.
type APIError struct {
	Kind    Kind
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches APIErrors by code so that errors.Is works against the
// constructors' results.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// As extracts an APIError from err.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// HasCode reports whether err is an APIError with the given code.
func HasCode(err error, code string) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Code == code
}

func NewErrMissingFields() *APIError {
	return &APIError{Kind: KindValidation, Code: CodeMissingFields, Status: http.StatusBadRequest,
		Message: "Please enter all fields"}
}

func NewErrWeakPassword() *APIError {
	return &APIError{Kind: KindValidation, Code: CodeWeakPassword, Status: http.StatusBadRequest,
		Message: "Password must be at least 6 characters"}
}

func NewErrPasswordTooLong() *APIError {
	return &APIError{Kind: KindValidation, Code: CodeWeakPassword, Status: http.StatusBadRequest,
		Message: "Password must be at most 72 bytes"}
}

func NewErrInvalidUsername() *APIError {
	return &APIError{Kind: KindValidation, Code: CodeInvalidUsername, Status: http.StatusBadRequest,
		Message: "Username must be at least 3 characters"}
}

// NewErrInvalidInput reports malformed input with a custom message.
func NewErrInvalidInput(message string) *APIError {
	return &APIError{Kind: KindValidation, Code: CodeInvalidInput, Status: http.StatusBadRequest,
		Message: message}
}

func NewErrEmailIsTaken(email string) *APIError {
	return &APIError{Kind: KindConflict, Code: CodeEmailTaken, Status: http.StatusBadRequest,
		Message: "User already exists with this email"}
}

// NewErrUserNotFound and NewErrInvalidCredentials share the client message so
// that login responses do not reveal which check failed.
func NewErrUserNotFound() *APIError {
	return &APIError{Kind: KindAuthentication, Code: CodeUserNotFound, Status: http.StatusBadRequest,
		Message: "Invalid credentials"}
}

func NewErrInvalidCredentials() *APIError {
	return &APIError{Kind: KindAuthentication, Code: CodeInvalidCredentials, Status: http.StatusBadRequest,
		Message: "Invalid credentials"}
}

func NewErrMissingAuthorizationToken() *APIError {
	return &APIError{Kind: KindAuthentication, Code: CodeNoToken, Status: http.StatusUnauthorized,
		Message: "No token found"}
}

// NewErrUnauthorized wraps the internal reason, which is never rendered.
func NewErrUnauthorized(reason error) *APIError {
	return &APIError{Kind: KindAuthentication, Code: CodeUnauthorized, Status: http.StatusUnauthorized,
		Message: "Unauthorized", Err: reason}
}

func NewErrForbidden() *APIError {
	return &APIError{Kind: KindAuthorization, Code: CodeForbidden, Status: http.StatusForbidden,
		Message: "Forbidden"}
}

func NewErrBookNotFound() *APIError {
	return &APIError{Kind: KindNotFound, Code: CodeBookNotFound, Status: http.StatusNotFound,
		Message: "Book not found"}
}

// NewErrInternalServerError hides err behind a generic message.
func NewErrInternalServerError(err error) *APIError {
	return &APIError{Kind: KindDependency, Code: CodeInternal, Status: http.StatusInternalServerError,
		Message: "Internal server error", Err: err}
}
