package inventory

import (
	"context"
	"fmt"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/domain/port/persistence"
)

// Allocator manages per-product pools of access codes. The atomicity of the
// claim lives in the repository (a single select-and-mark statement); the
// allocator enforces the all-or-nothing contract and keeps the operator log.
type Allocator struct {
	codeRepo persistence.AccessCodeRepository
	logger   coreport.Logger
}

// NewAllocator creates an inventory allocator
func NewAllocator(codeRepo persistence.AccessCodeRepository, logger coreport.Logger) *Allocator {
	return &Allocator{
		codeRepo: codeRepo,
		logger:   logger,
	}
}

// Reserve claims exactly quantity available codes for the order. On a
// shortfall no code is reserved and the InventoryExhaustedError carries the
// missing count for the operator.
func (a *Allocator) Reserve(ctx context.Context, productID, orderID uint64, quantity int) ([]uint64, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", errs.ErrValidation)
	}
	if productID == 0 || orderID == 0 {
		return nil, fmt.Errorf("%w: product and order ids must be positive", errs.ErrValidation)
	}

	codeIDs, err := a.codeRepo.ReserveForOrder(ctx, productID, orderID, quantity)
	if err != nil {
		if errs.IsInventoryExhaustedError(err) {
			a.logger.Warn("Inventory reservation short", map[string]any{
				"product_id": productID,
				"order_id":   orderID,
				"requested":  quantity,
				"error":      err.Error(),
			})
		}
		return nil, err
	}

	a.logger.Info("Access codes reserved", map[string]any{
		"product_id": productID,
		"order_id":   orderID,
		"quantity":   len(codeIDs),
	})
	return codeIDs, nil
}

// Finalize transitions the order's reserved codes to sold. Calling it again
// for codes already sold to the same order is a no-op.
func (a *Allocator) Finalize(ctx context.Context, orderID uint64, codeIDs []uint64) error {
	if len(codeIDs) == 0 {
		return fmt.Errorf("%w: no codes to finalize", errs.ErrValidation)
	}

	if err := a.codeRepo.FinalizeForOrder(ctx, orderID, codeIDs); err != nil {
		return err
	}

	a.logger.Info("Access codes finalized", map[string]any{
		"order_id": orderID,
		"quantity": len(codeIDs),
	})
	return nil
}

// Release returns every reserved code of the order to the pool. Safe to call
// when nothing is reserved.
func (a *Allocator) Release(ctx context.Context, orderID uint64) error {
	released, err := a.codeRepo.ReleaseForOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if released > 0 {
		a.logger.Info("Access codes released", map[string]any{
			"order_id": orderID,
			"quantity": released,
		})
	}
	return nil
}

// SoldCount reports how many codes the order currently holds in sold status.
// Used by the fulfillment engine's completion precondition.
func (a *Allocator) SoldCount(ctx context.Context, orderID uint64) (int, error) {
	codes, err := a.codeRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}

	sold := 0
	for _, code := range codes {
		if code.Status == entity.CodeStatusSold {
			sold++
		}
	}
	return sold, nil
}

// AvailableCount reports the free pool size for a product
func (a *Allocator) AvailableCount(ctx context.Context, productID uint64) (int, error) {
	return a.codeRepo.CountAvailable(ctx, productID)
}
