package repository

import (
	"context"
	"errors"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// CustomerRepository implements customer account storage using GORM
type CustomerRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewCustomerRepository creates a new CustomerRepository instance
func NewCustomerRepository(db *gorm.DB, logger coreport.Logger) *CustomerRepository {
	return &CustomerRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// GetByID retrieves a customer by id
func (r *CustomerRepository) GetByID(ctx context.Context, id uint64) (*entity.Customer, error) {
	var customerModel model.Customer
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&customerModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Warn("Customer not found", map[string]any{
				"customer_id": id,
			})
			return nil, errs.ErrCustomerNotFound
		}
		r.logger.Error("Failed to get customer", map[string]any{
			"customer_id": id,
			"error":       result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStorageError(result.Error)
	}

	return &entity.Customer{
		ID:         customerModel.ID,
		ReferrerID: customerModel.ReferrerID,
		CreatedAt:  customerModel.CreatedAt,
		UpdatedAt:  customerModel.UpdatedAt,
	}, nil
}

// Create persists a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	customerModel := model.Customer{
		ID:         customer.ID,
		ReferrerID: customer.ReferrerID,
		CreatedAt:  customer.CreatedAt,
		UpdatedAt:  customer.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Create(&customerModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Customer already exists", map[string]any{
				"customer_id": customer.ID,
			})
			return errs.ErrDuplicateTransaction
		}
		r.logger.Error("Failed to create customer", map[string]any{
			"customer_id": customer.ID,
			"error":       result.Error.Error(),
		})
		return r.errorClassifier.wrapStorageError(result.Error)
	}

	r.logger.Info("Customer created", map[string]any{
		"customer_id":  customer.ID,
		"has_referrer": customer.HasReferrer(),
	})
	return nil
}
