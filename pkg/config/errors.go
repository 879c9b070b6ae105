package config

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderNotFound indicates an LLM provider was not found in the registry.
	ErrProviderNotFound = errors.New("LLM provider not found")

	// ErrAgentNotFound indicates an agent was not found in the model-override registry.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrPromptNotFound indicates a prompt name was not found in the prompt registry.
	ErrPromptNotFound = errors.New("prompt not found")

	// ErrMissingRequiredField indicates a required configuration field is missing.
	ErrMissingRequiredField = errors.New("missing required field")
)

// ValidationError wraps configuration validation errors with context.
type ValidationError struct {
	Component string
	ID        string
	Field     string
	Err       error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %q: field %q: %v", e.Component, e.ID, e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Component, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError creates a new validation error.
func NewValidationError(component, id, field string, err error) *ValidationError {
	return &ValidationError{Component: component, ID: id, Field: field, Err: err}
}
