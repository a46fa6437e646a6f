package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
)

func TestErrorMapper_MapError(t *testing.T) {
	mapper := NewErrorMapper()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil error passes through", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, errs.ErrTransactionNotFound},
		{"deadlock maps to concurrency conflict", errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"), errs.ErrConcurrencyConflict},
		{"serialization abort maps to concurrency conflict", errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)"), errs.ErrConcurrencyConflict},
		{"duplicate key maps to duplicate transaction", errors.New("ERROR: duplicate key value violates unique constraint"), errs.ErrDuplicateTransaction},
		{"connection refused maps to database connection", errors.New("dial tcp 127.0.0.1:5432: connection refused"), errs.ErrDatabaseConnection},
		{"deadline exceeded maps to database connection", errors.New("context deadline exceeded"), errs.ErrDatabaseConnection},
		{"unknown error maps to internal server", errors.New("something odd"), errs.ErrInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapper.MapError(tt.err, "commit")
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}
