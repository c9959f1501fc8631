// Package datastore provides error handling helpers for store operations
package datastore

import (
	"fmt"
	"strings"

	"github.com/ecoview/ecoview-go/internal/errors"
)

// dbError creates a properly categorized database error with context
func dbError(err error, operation, priority string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	if priority != "" {
		builder = builder.Priority(priority)
	}

	// Add context pairs
	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// validationError creates a validation error for bad configuration or input
func validationError(message, field string, value any) error {
	return errors.Newf("%s", message).
		Component("datastore").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("value", fmt.Sprintf("%v", value)).
		Build()
}

// notFoundError creates the canonical absent-record error for an id lookup
func notFoundError(id uint) error {
	return errors.Newf("%w: analysis %d", ErrNotFound, id).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Context("record_id", id).
		Build()
}

// keyNotFoundError creates the absent-key error for the key-value tables
func keyNotFoundError(table, key string) error {
	return errors.Newf("%w: %s key %q", ErrNotFound, table, key).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Context("table", table).
		Context("key", key).
		Build()
}

// openError classifies an open/migration handshake failure. Lock contention
// from a concurrent connection surfaces as ErrBlocked, everything else as
// ErrOpen.
func openError(err error, dbType string) error {
	sentinel := ErrOpen
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "locked") || strings.Contains(msg, "busy") || strings.Contains(msg, "lock wait timeout") {
		sentinel = ErrBlocked
	}
	return errors.New(fmt.Errorf("%w: %w", sentinel, err)).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Priority(errors.PriorityHigh).
		Context("operation", "open").
		Context("db_type", dbType).
		Build()
}

// corruptError wraps a fallback-store failure as corrupt state
func corruptError(err error, operation string) error {
	return errors.New(fmt.Errorf("%w: %w", ErrCorruptState, err)).
		Component("datastore").
		Category(errors.CategoryState).
		Priority(errors.PriorityHigh).
		Context("operation", operation).
		Build()
}
