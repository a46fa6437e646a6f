package migration

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/domain/port/persistence"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/model"
)

// Manager runs schema migrations for the storefront core
type Manager struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewManager creates a migration manager
func NewManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *Manager {
	return &Manager{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// MigrateAll creates or updates every table and the constraint the webhook
// idempotency key depends on
func (m *Manager) MigrateAll() error {
	m.logger.Info("Running database migrations", nil)

	err := m.db.AutoMigrate(
		&model.Customer{},
		&model.Transaction{},
		&model.Order{},
		&model.OrderEvent{},
		&model.AccessCode{},
		&model.AccountLock{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	// Partial unique index: gateway payment ids must be unique when present,
	// but most non-deposit rows carry none.
	err = m.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_gateway_payment
		ON transactions (gateway, gateway_payment_id)
		WHERE gateway_payment_id <> ''`).Error
	if err != nil {
		return fmt.Errorf("failed to create gateway payment index: %w", err)
	}

	m.logger.Info("Database migrations completed", nil)
	return nil
}

// SeedCustomers creates the development customer accounts: customers 1-3,
// with 3 referred by 1. Existing customers are left untouched.
func SeedCustomers(ctx context.Context, repo persistence.CustomerRepository, timeProvider coreport.TimeProvider, logger coreport.Logger) error {
	referrer := uint64(1)
	seeds := []struct {
		id         uint64
		referrerID *uint64
	}{
		{id: 1},
		{id: 2},
		{id: 3, referrerID: &referrer},
	}

	for _, seed := range seeds {
		if _, err := repo.GetByID(ctx, seed.id); err == nil {
			continue
		}

		customer, err := entity.NewCustomer(seed.id, seed.referrerID, timeProvider)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, customer); err != nil && err != errs.ErrDuplicateTransaction {
			return err
		}
		logger.Info("Seeded customer", map[string]any{"customer_id": seed.id})
	}
	return nil
}
