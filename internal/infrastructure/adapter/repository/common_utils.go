package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
)

// ErrorClassifier recognizes PostgreSQL error categories from driver messages
type ErrorClassifier struct{}

// NewErrorClassifier creates a new ErrorClassifier
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// IsDuplicateKeyError reports whether the error is a unique constraint violation
func (c *ErrorClassifier) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505")
}

// IsSerializationError reports whether the error is a serialization or
// deadlock failure, safe to retry
func (c *ErrorClassifier) IsSerializationError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "sqlstate 40001") ||
		strings.Contains(msg, "sqlstate 40p01")
}

// wrapStorageError maps a driver failure onto the domain error taxonomy.
// Serialization aborts and deadlocks become retryable conflicts; everything
// else is reported as a connection-level failure.
func (c *ErrorClassifier) wrapStorageError(err error) error {
	if c.IsSerializationError(err) {
		return fmt.Errorf("%w: %s", errs.ErrConcurrencyConflict, err.Error())
	}
	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// marshalStringMap encodes metadata for a jsonb column
func marshalStringMap(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// unmarshalStringMap decodes metadata from a jsonb column
func unmarshalStringMap(raw string) map[string]string {
	out := map[string]string{}
	if raw == "" {
		return out
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}

// marshalStringSlice encodes a string list for a jsonb column
func marshalStringSlice(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// unmarshalStringSlice decodes a string list from a jsonb column
func unmarshalStringSlice(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}
