package base

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ===================================================================
// CUSTOM ERROR TYPES
// ===================================================================

// RepositoryError represents base repository error
type RepositoryError struct {
	Operation string
	Table     string
	Message   string
	Cause     error
}

func (e *RepositoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to %s %s: %s (caused by: %v)", e.Operation, e.Table, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Table, e.Message)
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// EntityNotFoundError represents entity not found error
type EntityNotFoundError struct {
	Table      string
	Identifier string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s with %s not found", e.Table, e.Identifier)
}

// DuplicateEntityError represents duplicate entity error
type DuplicateEntityError struct {
	Table string
	Field string
	Value string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s with %s '%s' already exists", e.Table, e.Field, e.Value)
}

// ValidationError represents validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s (value: %s): %s", e.Field, e.Value, e.Message)
}

// ===================================================================
// ERROR CONSTRUCTORS
// ===================================================================

// NewRepositoryError creates a new repository error
func NewRepositoryError(operation, table, message string, cause error) *RepositoryError {
	return &RepositoryError{
		Operation: operation,
		Table:     table,
		Message:   message,
		Cause:     cause,
	}
}

// NewEntityNotFoundError creates a new entity not found error
func NewEntityNotFoundError(table, identifier string) *EntityNotFoundError {
	return &EntityNotFoundError{
		Table:      table,
		Identifier: identifier,
	}
}

// NewDuplicateEntityError creates a new duplicate entity error
func NewDuplicateEntityError(table, field, value string) *DuplicateEntityError {
	return &DuplicateEntityError{
		Table: table,
		Field: field,
		Value: value,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ===================================================================
// ERROR HANDLING HELPERS
// ===================================================================

// HandleDBError handles database errors with consistent error wrapping
func HandleDBError(operation, table, identifier string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewEntityNotFoundError(table, identifier)
	}

	return NewRepositoryError(operation, table, "database operation failed", err)
}

// WrapDBError wraps database error with operation context
func WrapDBError(operation, table string, err error) error {
	if err == nil {
		return nil
	}

	return NewRepositoryError(operation, table, "database operation failed", err)
}

// IsEntityNotFound checks if error is an entity not found error
func IsEntityNotFound(err error) bool {
	var entityNotFoundError *EntityNotFoundError
	return errors.As(err, &entityNotFoundError)
}

// IsDuplicateEntity checks if error is a duplicate entity error
func IsDuplicateEntity(err error) bool {
	var duplicateEntityError *DuplicateEntityError
	return errors.As(err, &duplicateEntityError)
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}
