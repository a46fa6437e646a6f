package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	domainerr "github.com/kiarash-asgari/storefront-core/internal/domain/error"
)

// ErrorMapper maps database errors to domain errors
type ErrorMapper struct{}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps a database error to a domain error
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainerr.ErrTransactionNotFound
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "serialization") ||
		strings.Contains(msg, "could not serialize"):
		return domainerr.ErrConcurrencyConflict

	case strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint"):
		return domainerr.ErrDuplicateTransaction

	case strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no connection") ||
		strings.Contains(msg, "connection reset"):
		return domainerr.ErrDatabaseConnection

	case strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded"):
		return fmt.Errorf("%w: %s operation timed out", domainerr.ErrDatabaseConnection, operation)

	default:
		return domainerr.ErrInternalServer
	}
}
