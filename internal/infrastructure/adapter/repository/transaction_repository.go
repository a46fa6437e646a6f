package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// TransactionRepository implements the ledger storage port using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(transaction *entity.Transaction) model.Transaction {
	return model.Transaction{
		ID:               transaction.ID,
		TransactionID:    transaction.TransactionID,
		OwnerID:          transaction.OwnerID,
		Kind:             string(transaction.Kind),
		AmountCents:      transaction.AmountCents,
		FeeCents:         transaction.FeeCents,
		NetCents:         transaction.NetCents,
		Currency:         transaction.Currency,
		PayCurrency:      transaction.PayCurrency,
		PayAmount:        transaction.PayAmount,
		Status:           string(transaction.Status),
		Gateway:          transaction.Gateway,
		GatewayPaymentID: transaction.GatewayPaymentID,
		InvoiceURL:       transaction.InvoiceURL,
		OrderRef:         transaction.OrderRef,
		Metadata:         marshalStringMap(transaction.Metadata),
		FailureReason:    transaction.FailureReason,
		CreatedAt:        transaction.CreatedAt,
		CompletedAt:      transaction.CompletedAt,
	}
}

// modelToEntity converts a transaction model to an entity
func (r *TransactionRepository) modelToEntity(m *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:               m.ID,
		TransactionID:    m.TransactionID,
		OwnerID:          m.OwnerID,
		Kind:             entity.TransactionKind(m.Kind),
		AmountCents:      m.AmountCents,
		FeeCents:         m.FeeCents,
		NetCents:         m.NetCents,
		Currency:         m.Currency,
		PayCurrency:      m.PayCurrency,
		PayAmount:        m.PayAmount,
		Status:           entity.TransactionStatus(m.Status),
		Gateway:          m.Gateway,
		GatewayPaymentID: m.GatewayPaymentID,
		InvoiceURL:       m.InvoiceURL,
		OrderRef:         m.OrderRef,
		Metadata:         unmarshalStringMap(m.Metadata),
		FailureReason:    m.FailureReason,
		CreatedAt:        m.CreatedAt,
		CompletedAt:      m.CompletedAt,
	}
}

// Create saves a new transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	r.logger.Debug("Creating transaction", map[string]any{
		"transaction_id": transaction.TransactionID,
		"owner_id":       transaction.OwnerID,
		"kind":           transaction.Kind,
	})

	transactionModel := r.entityToModel(transaction)

	result := r.db.WithContext(ctx).Create(&transactionModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate transaction detected", map[string]any{
				"transaction_id": transaction.TransactionID,
				"owner_id":       transaction.OwnerID,
			})
			return errs.ErrDuplicateTransaction
		}

		r.logger.Error("Failed to create transaction", map[string]any{
			"transaction_id": transaction.TransactionID,
			"owner_id":       transaction.OwnerID,
			"error":          result.Error.Error(),
		})
		return r.errorClassifier.wrapStorageError(result.Error)
	}

	transaction.ID = transactionModel.ID

	r.logger.Info("Transaction created", map[string]any{
		"transaction_id": transaction.TransactionID,
		"owner_id":       transaction.OwnerID,
		"net_cents":      transaction.NetCents,
	})
	return nil
}

// Update writes the mutable transaction fields by external id. The status
// predicate makes the write conditional on the stored row still being
// pending, so a stale snapshot from a concurrent webhook delivery can never
// regress a row another writer already finalized.
func (r *TransactionRepository) Update(ctx context.Context, transaction *entity.Transaction) error {
	r.logger.Debug("Updating transaction", map[string]any{
		"transaction_id": transaction.TransactionID,
		"status":         transaction.Status,
	})

	transactionModel := r.entityToModel(transaction)

	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("transaction_id = ? AND status = ?", transaction.TransactionID, string(entity.TxStatusPending)).
		Updates(map[string]interface{}{
			"status":             transactionModel.Status,
			"gateway":            transactionModel.Gateway,
			"gateway_payment_id": transactionModel.GatewayPaymentID,
			"invoice_url":        transactionModel.InvoiceURL,
			"pay_currency":       transactionModel.PayCurrency,
			"pay_amount":         transactionModel.PayAmount,
			"metadata":           transactionModel.Metadata,
			"failure_reason":     transactionModel.FailureReason,
			"completed_at":       transactionModel.CompletedAt,
		})

	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			// The partial unique index on (gateway, gateway_payment_id)
			// rejects linking a payment id already claimed by another row.
			r.logger.Warn("Gateway payment id already linked elsewhere", map[string]any{
				"transaction_id":     transaction.TransactionID,
				"gateway_payment_id": transaction.GatewayPaymentID,
			})
			return errs.ErrDuplicateTransaction
		}
		r.logger.Error("Failed to update transaction", map[string]any{
			"transaction_id": transaction.TransactionID,
			"error":          result.Error.Error(),
		})
		return r.errorClassifier.wrapStorageError(result.Error)
	}

	if result.RowsAffected == 0 {
		current, err := r.GetByTransactionID(ctx, transaction.TransactionID)
		if err != nil {
			r.logger.Warn("Transaction not found during update", map[string]any{
				"transaction_id": transaction.TransactionID,
			})
			return err
		}
		r.logger.Warn("Stale transaction update rejected", map[string]any{
			"transaction_id": transaction.TransactionID,
			"stored_status":  current.Status,
		})
		return fmt.Errorf("%w: %s is %s", errs.ErrAlreadyTerminal, transaction.TransactionID, current.Status)
	}

	return nil
}

// GetByTransactionID retrieves a transaction by its external id
func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Transaction, error) {
	var transactionModel model.Transaction
	result := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&transactionModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Warn("Transaction not found", map[string]any{
				"transaction_id": transactionID,
			})
			return nil, errs.ErrTransactionNotFound
		}
		r.logger.Error("Failed to get transaction", map[string]any{
			"transaction_id": transactionID,
			"error":          result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStorageError(result.Error)
	}

	return r.modelToEntity(&transactionModel), nil
}

// GetByOrderRef retrieves a transaction by its gateway correlation key
func (r *TransactionRepository) GetByOrderRef(ctx context.Context, orderRef string) (*entity.Transaction, error) {
	var transactionModel model.Transaction
	result := r.db.WithContext(ctx).
		Where("order_ref = ?", orderRef).
		Order("id ASC").
		First(&transactionModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTransactionNotFound
		}
		r.logger.Error("Failed to get transaction by order ref", map[string]any{
			"order_ref": orderRef,
			"error":     result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStorageError(result.Error)
	}

	return r.modelToEntity(&transactionModel), nil
}

// GetByGatewayPaymentID retrieves a transaction by the gateway-assigned
// payment id
func (r *TransactionRepository) GetByGatewayPaymentID(ctx context.Context, gateway, paymentID string) (*entity.Transaction, error) {
	var transactionModel model.Transaction
	result := r.db.WithContext(ctx).
		Where("gateway = ? AND gateway_payment_id = ?", gateway, paymentID).
		First(&transactionModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPaymentNotFound
		}
		r.logger.Error("Failed to get transaction by gateway payment id", map[string]any{
			"gateway":            gateway,
			"gateway_payment_id": paymentID,
			"error":              result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStorageError(result.Error)
	}

	return r.modelToEntity(&transactionModel), nil
}

// ListByOrderRef returns every transaction correlated with an order, newest first
func (r *TransactionRepository) ListByOrderRef(ctx context.Context, orderRef string) ([]*entity.Transaction, error) {
	var transactionModels []model.Transaction
	result := r.db.WithContext(ctx).
		Where("order_ref = ?", orderRef).
		Order("id DESC").
		Find(&transactionModels)

	if result.Error != nil {
		r.logger.Error("Failed to list transactions by order ref", map[string]any{
			"order_ref": orderRef,
			"error":     result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStorageError(result.Error)
	}

	transactions := make([]*entity.Transaction, 0, len(transactionModels))
	for i := range transactionModels {
		transactions = append(transactions, r.modelToEntity(&transactionModels[i]))
	}
	return transactions, nil
}

// SumCompletedNet computes the owner's derived balance: the sum of net cents
// over completed transactions
func (r *TransactionRepository) SumCompletedNet(ctx context.Context, ownerID uint64) (int64, error) {
	var sum int64
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("COALESCE(SUM(net_cents), 0)").
		Where("owner_id = ? AND status = ?", ownerID, string(entity.TxStatusCompleted)).
		Scan(&sum)

	if result.Error != nil {
		r.logger.Error("Failed to sum completed net cents", map[string]any{
			"owner_id": ownerID,
			"error":    result.Error.Error(),
		})
		return 0, r.errorClassifier.wrapStorageError(result.Error)
	}

	return sum, nil
}
