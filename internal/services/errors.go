package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds surfaced by ItemService. Callers match them with errors.Is / errors.As.
var (
	// ErrUnauthenticated is returned by CreateItem when no owner is supplied.
	ErrUnauthenticated = errors.New("owner context required")
	// ErrNotFoundOrUnauthorized covers both a missing item and an item held by
	// another owner; the two are indistinguishable.
	ErrNotFoundOrUnauthorized = errors.New("item not found")
	// ErrStoreUnavailable wraps any persistence failure.
	ErrStoreUnavailable = errors.New("item store unavailable")
)

// ValidationError lists the input fields that failed validation.
type ValidationError struct {
	// Fields maps a field name to what is wrong with it.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, problem string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = problem
	}
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}
