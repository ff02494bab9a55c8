package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrInvalidCursor is returned when a page_token cannot be decoded or was
// issued for a different sort mode. Mapped to 400 by the handler layer.
var ErrInvalidCursor = errors.New("invalid page_token")

// ValidationError reports a malformed or inconsistent client input.
// Schema distinguishes schema-level violations (422, e.g. lat out of range)
// from semantic ones (400, e.g. radius without a center point).
type ValidationError struct {
	Field   string
	Message string
	Schema  bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalidParam(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func invalidSchema(field, message string) error {
	return &ValidationError{Field: field, Message: message, Schema: true}
}

// StoreError wraps a datastore failure. Search is a pure read, so the caller
// may safely retry; the handler layer maps this to 503.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// wrapStore classifies a datastore error: record-not-found passes through for
// the 404 mapping, anything else becomes a retryable StoreError.
func wrapStore(err error) error {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return &StoreError{Err: err}
}
