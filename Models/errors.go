package Models

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	ErrInvalidStatus   = Invalid("status", "status must be one of todo, in_progress, done")
	ErrDuplicateMember = Invalid("userId", "user is already a project member")
)

// ValidationError reports a missing or invalid request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFound wraps ErrNotFound with the missing resource name, e.g. "task not found".
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// StoreError is a persistence failure. Op names the operation for logs and
// for the generic message shown to callers.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func StoreFailure(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

var duplicateKeyMessages = []string{
	"UNIQUE constraint failed", // sqlite
	"Duplicate entry",          // mysql
	"duplicate key value",      // postgres
}

// IsDuplicateKey reports whether err is a unique index violation, translated
// by gorm or not.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	for _, msg := range duplicateKeyMessages {
		if strings.Contains(err.Error(), msg) {
			return true
		}
	}
	return false
}
