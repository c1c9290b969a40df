package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates the targeted row does not exist or the write changed nothing.
	ErrNotFound = errors.New("not found")
	// ErrPersistence indicates the store failed or returned an unexpected row count.
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError reports malformed caller input, keyed by field name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

func requirePositiveID(field string, id uint) error {
	if id == 0 {
		return invalidField(field, "must be a positive integer")
	}
	return nil
}
