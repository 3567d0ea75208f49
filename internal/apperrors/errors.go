package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidCredentials is returned for an unknown email or a wrong password. Callers cannot tell which.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrAccountDeactivated indicates the account exists but has been disabled by an administrator.
var ErrAccountDeactivated = errors.New("account is deactivated")

// ErrTokenExpired indicates a correctly signed token past its expiry.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid covers malformed tokens, bad signatures and wrong token types.
var ErrTokenInvalid = errors.New("invalid token")

// ErrInvalidRefreshToken indicates the refresh token is not (or no longer) recorded for an active user.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// ErrInvalidPassword is returned when re-authentication for a sensitive action fails.
var ErrInvalidPassword = errors.New("invalid password")

// ErrUnauthorized indicates the caller is not authenticated.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller is authenticated but lacks the required role.
var ErrForbidden = errors.New("forbidden")

// ErrServiceUnavailable indicates a dependency (e.g. an OAuth provider) is not configured or reachable.
var ErrServiceUnavailable = errors.New("service unavailable")

// Error categories returned in the "error" field of every error body.
const (
	CategoryValidation         = "ValidationError"
	CategoryDuplicate          = "DuplicateResource"
	CategoryUnauthenticated    = "Unauthenticated"
	CategoryForbidden          = "Forbidden"
	CategoryNotFound           = "NotFound"
	CategoryTooManyRequests    = "TooManyRequests"
	CategoryInternal           = "Internal"
	CategoryServiceUnavailable = "ServiceUnavailable"
)

// GenericInternalMessage is the only text clients see for unexpected failures.
const GenericInternalMessage = "Something went wrong"

// AppError is an error carrying its HTTP status and client-facing category and message.
// The wrapped Err is for logs only and never serialized.
type AppError struct {
	Code     int    `json:"-"`
	Category string `json:"error"`
	Message  string `json:"message"`
	Details  any    `json:"details,omitempty"`
	Err      error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError, deriving the category from the status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Category: categoryForStatus(code), Message: message, Err: err}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

func NewValidationError(message string, details any) *AppError {
	e := NewAppError(http.StatusBadRequest, message, ErrValidation)
	e.Details = details
	return e
}

func NewDuplicateError(message string) *AppError {
	e := NewAppError(http.StatusBadRequest, message, ErrDuplicate)
	e.Category = CategoryDuplicate
	return e
}

func NewUnauthorizedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func NewForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrForbidden)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func NewTooManyRequestsError(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, message, nil)
}

// NewInternalServerError hides err behind the generic message.
func NewInternalServerError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, GenericInternalMessage, err)
}

func NewServiceUnavailableError(message string, err error) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message, err)
}

// FromError maps any error returned by the service layer onto an AppError.
// Unknown errors become Internal with the generic message.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewAppError(http.StatusUnauthorized, "Invalid email or password", err)
	case errors.Is(err, ErrAccountDeactivated):
		return NewAppError(http.StatusUnauthorized, "Account is deactivated", err)
	case errors.Is(err, ErrInvalidRefreshToken), errors.Is(err, ErrTokenInvalid):
		return NewAppError(http.StatusUnauthorized, "Invalid refresh token", err)
	case errors.Is(err, ErrTokenExpired):
		return NewAppError(http.StatusUnauthorized, "Refresh token expired", err)
	case errors.Is(err, ErrInvalidPassword):
		return NewAppError(http.StatusUnauthorized, "Invalid password", err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, "Authentication required", err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, "Insufficient permissions", err)
	case errors.Is(err, ErrDuplicate):
		e := NewAppError(http.StatusBadRequest, "User with this email already exists", err)
		e.Category = CategoryDuplicate
		return e
	case errors.Is(err, ErrValidation):
		return NewAppError(http.StatusBadRequest, strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "), err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, "User not found", err)
	case errors.Is(err, ErrServiceUnavailable):
		return NewAppError(http.StatusServiceUnavailable, "Service temporarily unavailable", err)
	default:
		return NewInternalServerError(err)
	}
}

func categoryForStatus(code int) string {
	switch code {
	case http.StatusBadRequest:
		return CategoryValidation
	case http.StatusUnauthorized:
		return CategoryUnauthenticated
	case http.StatusForbidden:
		return CategoryForbidden
	case http.StatusNotFound:
		return CategoryNotFound
	case http.StatusConflict:
		return CategoryDuplicate
	case http.StatusTooManyRequests:
		return CategoryTooManyRequests
	case http.StatusServiceUnavailable:
		return CategoryServiceUnavailable
	default:
		return CategoryInternal
	}
}
