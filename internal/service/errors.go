package service

import (
	"errors"
	"strings"

	"storefront/internal/repository"
)

var (
	ErrMissingSession = errors.New("session ID required")

	// Lookup failures keep the repository sentinels so errors.Is works across layers
	ErrProductNotFound  = repository.ErrProductNotFound
	ErrCartNotFound     = repository.ErrCartNotFound
	ErrCartItemNotFound = repository.ErrCartItemNotFound
	ErrSKUAlreadyExists = repository.ErrSKUAlreadyExists
)

// FieldError describes one rejected input field
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every rejected field of a request
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// quantityTooLarge reports a quantity the store cannot hold as a field error
func quantityTooLarge() *ValidationError {
	v := &ValidationError{}
	v.add("quantity", "Quantity is too large")
	return v
}

func validateQuantity(v *ValidationError, quantity int) {
	if quantity < 1 {
		v.add("quantity", "Quantity must be a positive integer")
	}
}
