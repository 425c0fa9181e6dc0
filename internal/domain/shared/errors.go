package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same error code, so that
// errors.Is(err, ErrNotFound) matches entity-specific not-found errors.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a NOT_FOUND error naming the entity and id
func NewNotFoundError(entity string, id int) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %d not found", entity, id))
}

// Error codes
const (
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInvalidState  = "INVALID_STATE"
	CodeConfiguration = "CONFIGURATION_ERROR"
)

// Common domain errors
var (
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput  = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrUnauthorized  = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrInvalidState  = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConfiguration = NewDomainError(CodeConfiguration, "Configured default could not be resolved")
)

// ConfigurationError is returned when a configured default id has no
// matching row. It is a deployment problem, never a user error.
type ConfigurationError struct {
	Setting string
	Entity  string
	ID      int
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s references %s %d which does not exist", e.Setting, e.Entity, e.ID)
}

// Is makes errors.Is(err, ErrConfiguration) true
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(setting, entity string, id int) *ConfigurationError {
	return &ConfigurationError{Setting: setting, Entity: entity, ID: id}
}

// ErrorCode extracts the domain error code from err, or "" if err carries none
func ErrorCode(err error) string {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return CodeConfiguration
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
