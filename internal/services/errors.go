package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrCartEmpty       = errors.New("cart is empty")
	ErrItemNotFound    = errors.New("menu item not found")
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrOrderNotFound   = errors.New("order not found")
)

// ValidationError maps a request field to a message the customer can act on.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
