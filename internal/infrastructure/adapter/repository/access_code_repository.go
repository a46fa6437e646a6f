package repository

import (
	"context"
	"fmt"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessCodeRepository implements the inventory pool storage port using GORM.
// Reservation runs inside one database transaction with FOR UPDATE SKIP
// LOCKED so concurrent claims for the same product never overlap.
type AccessCodeRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAccessCodeRepository creates a new AccessCodeRepository instance
func NewAccessCodeRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *AccessCodeRepository {
	return &AccessCodeRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *AccessCodeRepository) modelToEntity(m *model.AccessCode) *entity.AccessCode {
	return &entity.AccessCode{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Payload:     m.Payload,
		Status:      entity.AccessCodeStatus(m.Status),
		OrderID:     m.OrderID,
		ReservedAt:  m.ReservedAt,
		DeliveredAt: m.DeliveredAt,
		CreatedAt:   m.CreatedAt,
	}
}

// Create adds a code to a product's pool
func (r *AccessCodeRepository) Create(ctx context.Context, code *entity.AccessCode) error {
	codeModel := model.AccessCode{
		ProductID: code.ProductID,
		Payload:   code.Payload,
		Status:    string(entity.CodeStatusAvailable),
		CreatedAt: r.timeProvider.Now(),
	}

	result := r.db.WithContext(ctx).Create(&codeModel)
	if result.Error != nil {
		r.logger.Error("Failed to create access code", map[string]any{
			"product_id": code.ProductID,
			"error":      result.Error.Error(),
		})
		return r.errorClassifier.wrapStorageError(result.Error)
	}

	code.ID = codeModel.ID
	code.Status = entity.CodeStatusAvailable
	code.CreatedAt = codeModel.CreatedAt
	return nil
}

// ReserveForOrder atomically claims exactly quantity available codes for the
// product. All-or-nothing: a shortfall reserves nothing and reports the
// available count.
func (r *AccessCodeRepository) ReserveForOrder(ctx context.Context, productID, orderID uint64, quantity int) ([]uint64, error) {
	r.logger.Debug("Reserving access codes", map[string]any{
		"product_id": productID,
		"order_id":   orderID,
		"quantity":   quantity,
	})

	now := r.timeProvider.Now()
	var claimed []uint64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidates []model.AccessCode
		result := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("product_id = ? AND status = ?", productID, string(entity.CodeStatusAvailable)).
			Order("id ASC").
			Limit(quantity).
			Find(&candidates)
		if result.Error != nil {
			return result.Error
		}

		if len(candidates) < quantity {
			// Rolling back leaves the pool untouched; the locks drop with
			// the transaction.
			return errs.NewInventoryExhaustedError(productID, quantity, len(candidates))
		}

		ids := make([]uint64, 0, quantity)
		for i := range candidates {
			ids = append(ids, candidates[i].ID)
		}

		update := tx.Model(&model.AccessCode{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":      string(entity.CodeStatusReserved),
				"order_id":    orderID,
				"reserved_at": now,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected != int64(quantity) {
			return fmt.Errorf("claimed %d codes, marked %d", quantity, update.RowsAffected)
		}

		claimed = ids
		return nil
	})

	if err != nil {
		if errs.IsInventoryExhaustedError(err) {
			r.logger.Warn("Inventory exhausted", map[string]any{
				"product_id": productID,
				"order_id":   orderID,
				"requested":  quantity,
			})
			return nil, err
		}
		r.logger.Error("Failed to reserve access codes", map[string]any{
			"product_id": productID,
			"order_id":   orderID,
			"error":      err.Error(),
		})
		return nil, r.errorClassifier.wrapStorageError(err)
	}

	r.logger.Info("Access codes reserved", map[string]any{
		"product_id": productID,
		"order_id":   orderID,
		"quantity":   len(claimed),
	})
	return claimed, nil
}

// FinalizeForOrder transitions the order's reserved codes to sold. Codes
// already sold for this order are left untouched, so replays are safe.
func (r *AccessCodeRepository) FinalizeForOrder(ctx context.Context, orderID uint64, codeIDs []uint64) error {
	if len(codeIDs) == 0 {
		return nil
	}

	now := r.timeProvider.Now()
	result := r.db.WithContext(ctx).Model(&model.AccessCode{}).
		Where("id IN ? AND order_id = ? AND status = ?",
			codeIDs, orderID, string(entity.CodeStatusReserved)).
		Updates(map[string]interface{}{
			"status":       string(entity.CodeStatusSold),
			"delivered_at": now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to finalize access codes", map[string]any{
			"order_id": orderID,
			"error":    result.Error.Error(),
		})
		return r.errorClassifier.wrapStorageError(result.Error)
	}

	r.logger.Info("Access codes finalized", map[string]any{
		"order_id":  orderID,
		"finalized": result.RowsAffected,
	})
	return nil
}

// ReleaseForOrder returns every reserved code of the order to available.
// Zero reserved codes is a successful no-op.
func (r *AccessCodeRepository) ReleaseForOrder(ctx context.Context, orderID uint64) (int, error) {
	result := r.db.WithContext(ctx).Model(&model.AccessCode{}).
		Where("order_id = ? AND status = ?", orderID, string(entity.CodeStatusReserved)).
		Updates(map[string]interface{}{
			"status":      string(entity.CodeStatusAvailable),
			"order_id":    nil,
			"reserved_at": nil,
		})

	if result.Error != nil {
		r.logger.Error("Failed to release access codes", map[string]any{
			"order_id": orderID,
			"error":    result.Error.Error(),
		})
		return 0, r.errorClassifier.wrapStorageError(result.Error)
	}

	return int(result.RowsAffected), nil
}

// ListByOrder returns the codes currently referencing the order
func (r *AccessCodeRepository) ListByOrder(ctx context.Context, orderID uint64) ([]*entity.AccessCode, error) {
	var codeModels []model.AccessCode
	result := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&codeModels)

	if result.Error != nil {
		r.logger.Error("Failed to list access codes by order", map[string]any{
			"order_id": orderID,
			"error":    result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStorageError(result.Error)
	}

	codes := make([]*entity.AccessCode, 0, len(codeModels))
	for i := range codeModels {
		codes = append(codes, r.modelToEntity(&codeModels[i]))
	}
	return codes, nil
}

// CountAvailable reports the free pool size for a product
func (r *AccessCodeRepository) CountAvailable(ctx context.Context, productID uint64) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.AccessCode{}).
		Where("product_id = ? AND status = ?", productID, string(entity.CodeStatusAvailable)).
		Count(&count)

	if result.Error != nil {
		r.logger.Error("Failed to count available access codes", map[string]any{
			"product_id": productID,
			"error":      result.Error.Error(),
		})
		return 0, r.errorClassifier.wrapStorageError(result.Error)
	}

	return int(count), nil
}
