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

// OrderRepository implements order and timeline storage using GORM
type OrderRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewOrderRepository creates a new OrderRepository instance
func NewOrderRepository(db *gorm.DB, logger coreport.Logger) *OrderRepository {
	return &OrderRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *OrderRepository) entityToModel(order *entity.Order) model.Order {
	return model.Order{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		OwnerID:        order.OwnerID,
		ProductID:      order.ProductID,
		Quantity:       order.Quantity,
		UnitPriceCents: order.UnitPriceCents,
		TotalCents:     order.TotalCents,
		DiscountCents:  order.DiscountCents,
		NetCents:       order.NetCents,
		Status:         string(order.Status),
		PaymentStatus:  string(order.PaymentStatus),
		DeliveryMode:   string(order.DeliveryMode),
		RefundedCents:  order.RefundedCents,
		DeliveryFiles:  marshalStringSlice(order.DeliveryFiles),
		DeliveryNotes:  order.DeliveryNotes,
		CreatedAt:      order.CreatedAt,
		PaidAt:         order.PaidAt,
		CompletedAt:    order.CompletedAt,
		CancelledAt:    order.CancelledAt,
	}
}

func (r *OrderRepository) modelToEntity(m *model.Order) *entity.Order {
	return &entity.Order{
		ID:             m.ID,
		OrderNumber:    m.OrderNumber,
		OwnerID:        m.OwnerID,
		ProductID:      m.ProductID,
		Quantity:       m.Quantity,
		UnitPriceCents: m.UnitPriceCents,
		TotalCents:     m.TotalCents,
		DiscountCents:  m.DiscountCents,
		NetCents:       m.NetCents,
		Status:         entity.OrderStatus(m.Status),
		PaymentStatus:  entity.PaymentStatus(m.PaymentStatus),
		DeliveryMode:   entity.DeliveryMode(m.DeliveryMode),
		RefundedCents:  m.RefundedCents,
		DeliveryFiles:  unmarshalStringSlice(m.DeliveryFiles),
		DeliveryNotes:  m.DeliveryNotes,
		CreatedAt:      m.CreatedAt,
		PaidAt:         m.PaidAt,
		CompletedAt:    m.CompletedAt,
		CancelledAt:    m.CancelledAt,
	}
}

// Create persists a new order
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	r.logger.Debug("Creating order", map[string]any{
		"order_number": order.OrderNumber,
		"owner_id":     order.OwnerID,
		"product_id":   order.ProductID,
	})

	orderModel := r.entityToModel(order)

	result := r.db.WithContext(ctx).Create(&orderModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate order number", map[string]any{
				"order_number": order.OrderNumber,
			})
			return errs.ErrDuplicateTransaction
		}
		r.logger.Error("Failed to create order", map[string]any{
			"order_number": order.OrderNumber,
			"error":        result.Error.Error(),
		})
		return r.errorClassifier.wrapStorageError(result.Error)
	}

	order.ID = orderModel.ID

	r.logger.Info("Order created", map[string]any{
		"order_number": order.OrderNumber,
		"owner_id":     order.OwnerID,
		"net_cents":    order.NetCents,
	})
	return nil
}

// Update writes the mutable order fields by order number
func (r *OrderRepository) Update(ctx context.Context, order *entity.Order) error {
	r.logger.Debug("Updating order", map[string]any{
		"order_number":   order.OrderNumber,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	})

	orderModel := r.entityToModel(order)

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_number = ?", order.OrderNumber).
		Updates(map[string]interface{}{
			"status":         orderModel.Status,
			"payment_status": orderModel.PaymentStatus,
			"refunded_cents": orderModel.RefundedCents,
			"delivery_files": orderModel.DeliveryFiles,
			"delivery_notes": orderModel.DeliveryNotes,
			"paid_at":        orderModel.PaidAt,
			"completed_at":   orderModel.CompletedAt,
			"cancelled_at":   orderModel.CancelledAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update order", map[string]any{
			"order_number": order.OrderNumber,
			"error":        result.Error.Error(),
		})
		return r.errorClassifier.wrapStorageError(result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("Order not found during update", map[string]any{
			"order_number": order.OrderNumber,
		})
		return errs.ErrOrderNotFound
	}

	return nil
}

// GetByOrderNumber retrieves an order by its public order number
func (r *OrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	var orderModel model.Order
	result := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&orderModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrOrderNotFound
		}
		r.logger.Error("Failed to get order", map[string]any{
			"order_number": orderNumber,
			"error":        result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStorageError(result.Error)
	}

	return r.modelToEntity(&orderModel), nil
}

// AppendEvent records one timeline entry for an order transition
func (r *OrderRepository) AppendEvent(ctx context.Context, event *entity.OrderEvent) error {
	eventModel := model.OrderEvent{
		OrderID:   event.OrderID,
		Cause:     event.Cause,
		Actor:     event.Actor,
		Detail:    event.Detail,
		CreatedAt: event.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&eventModel)
	if result.Error != nil {
		r.logger.Error("Failed to append order event", map[string]any{
			"order_id": event.OrderID,
			"cause":    event.Cause,
			"error":    result.Error.Error(),
		})
		return r.errorClassifier.wrapStorageError(result.Error)
	}

	event.ID = eventModel.ID
	return nil
}

// ListEvents returns an order's timeline, oldest first
func (r *OrderRepository) ListEvents(ctx context.Context, orderID uint64) ([]*entity.OrderEvent, error) {
	var eventModels []model.OrderEvent
	result := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&eventModels)

	if result.Error != nil {
		r.logger.Error("Failed to list order events", map[string]any{
			"order_id": orderID,
			"error":    result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStorageError(result.Error)
	}

	events := make([]*entity.OrderEvent, 0, len(eventModels))
	for i := range eventModels {
		m := eventModels[i]
		events = append(events, &entity.OrderEvent{
			ID:        m.ID,
			OrderID:   m.OrderID,
			Cause:     m.Cause,
			Actor:     m.Actor,
			Detail:    m.Detail,
			CreatedAt: m.CreatedAt,
		})
	}
	return events, nil
}
