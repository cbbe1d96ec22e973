package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUserNotFound indicates no account matches the requested identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrSignupConflict indicates the username or email is already taken by a different account.
	ErrSignupConflict = errors.New("username or email already taken")
	// ErrConfirmationCodeInvalid indicates the presented confirmation code does not match the stored one.
	ErrConfirmationCodeInvalid = errors.New("confirmation code invalid")
	// ErrMailDelivery indicates the confirmation email could not be handed to the transport.
	ErrMailDelivery = errors.New("confirmation email delivery failed")
	// ErrReviewExists indicates the author already reviewed the title.
	ErrReviewExists = errors.New("review already exists for this title and author")
	// ErrTitleNotFound indicates the referenced title does not exist.
	ErrTitleNotFound = errors.New("title not found")
	// ErrReviewNotFound indicates the referenced review does not exist under the title.
	ErrReviewNotFound = errors.New("review not found")
	// ErrCommentNotFound indicates the referenced comment does not exist under the review.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrCategoryNotFound indicates no category matches the slug.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrGenreNotFound indicates no genre matches the slug.
	ErrGenreNotFound = errors.New("genre not found")
	// ErrSlugConflict indicates the slug is already in use.
	ErrSlugConflict = errors.New("slug already in use")
)

// ValidationError aggregates per-field validation failures so a response can
// report every broken field at once.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty, ready-to-fill validation error.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add appends a message for the named field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any field collected a failure.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// ErrOrNil returns the error when it carries failures, nil otherwise.
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], "; ")))
	}

	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidationError unwraps err into a ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
