package utils

import (
	"github.com/pkg/errors"
)

// Error categories. Every error produced by a service is either one of these
// (through a CategorizedError) or a storage failure, which is reported to the
// client as a generic failure.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

var (
	ErrVideoNotFound      = NewCategorizedError(ErrNotFound, "Video not found")
	ErrUserNotFound       = NewCategorizedError(ErrNotFound, "User not found")
	ErrCreatorNotFound    = NewCategorizedError(ErrNotFound, "Creator not found")
	ErrSubscriberNotFound = NewCategorizedError(ErrNotFound, "Subscriber not found")

	ErrMissingUserId      = NewCategorizedError(ErrValidation, "Missing userId in body")
	ErrSelfSubscribe      = NewCategorizedError(ErrValidation, "You cannot subscribe to yourself")
	ErrMissingTextOrUser  = NewCategorizedError(ErrValidation, "Comment text and user ID are required")
	ErrMissingVideoFile   = NewCategorizedError(ErrValidation, "No video file uploaded")
	ErrFileType           = NewCategorizedError(ErrValidation, "Only images and video files are allowed")
	ErrDuplicateUser      = NewCategorizedError(ErrValidation, "Username or email already registered")
	ErrInvalidCredentials = NewCategorizedError(ErrValidation, "Invalid credentials")
	ErrPasswordPolicy     = NewCategorizedError(ErrValidation, "Password must be at least 8 characters and include uppercase, lowercase, number, and special character")

	ErrActorMismatch = NewCategorizedError(ErrForbidden, "userId does not match the authenticated user")
)

// CategorizedError carries a client facing message and the category it
// belongs to. errors.Is(err, ErrNotFound) works through it.
type CategorizedError struct {
	category error
	msg      string
}

func NewCategorizedError(category error, msg string) *CategorizedError {
	return &CategorizedError{category: category, msg: msg}
}

// NewValidationError is a shorthand for one-off validation messages.
func NewValidationError(msg string) *CategorizedError {
	return NewCategorizedError(ErrValidation, msg)
}

func (e *CategorizedError) Error() string {
	return e.msg
}

func (e *CategorizedError) Unwrap() error {
	return e.category
}

// IsValidationError returns true iff err is, or wraps, a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFoundError returns true iff err is, or wraps, a not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbiddenError returns true iff err is, or wraps, a forbidden error.
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrForbidden)
}
