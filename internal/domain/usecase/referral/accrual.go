package referral

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/domain/port/persistence"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/ledger"
)

// Config carries the commission parameters
type Config struct {
	CommissionRate     float64 // fraction of the order net, e.g. 0.05
	MinimumPayoutCents int64   // payout threshold, enforced by the out-of-scope payout process
}

// Accrual posts referral commissions when referred customers complete
// orders. The commission is a pending ledger transaction for the referrer; a
// separate payout process later completes or cancels it.
type Accrual struct {
	ledger       *ledger.Ledger
	customerRepo persistence.CustomerRepository
	config       Config
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// New creates a referral accrual
func New(
	ldgr *ledger.Ledger,
	customerRepo persistence.CustomerRepository,
	config Config,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Accrual {
	return &Accrual{
		ledger:       ldgr,
		customerRepo: customerRepo,
		config:       config,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// AccrueForOrder posts the commission for one completed order. Returns nil
// when the buyer has no referrer or the commission floors to zero. Callers
// must not roll back order completion on failure; they log the discrepancy
// and leave it to reconciliation.
func (a *Accrual) AccrueForOrder(ctx context.Context, order *entity.Order) error {
	if order.Status != entity.OrderStatusCompleted {
		return fmt.Errorf("%w: order %s is not completed", errs.ErrValidation, order.OrderNumber)
	}

	buyer, err := a.customerRepo.GetByID(ctx, order.OwnerID)
	if err != nil {
		return err
	}
	if !buyer.HasReferrer() {
		return nil
	}

	commission := entity.CommissionCents(order.NetCents, a.config.CommissionRate)
	if commission <= 0 {
		return nil
	}

	metadata := map[string]string{
		"order_number": order.OrderNumber,
		"referred_id":  fmt.Sprintf("%d", order.OwnerID),
	}

	txn, err := a.ledger.RecordPending(
		ctx,
		uuid.NewString(),
		*buyer.ReferrerID,
		entity.KindReferralCommission,
		commission,
		0,
		order.OrderNumber,
		metadata,
	)
	if err != nil {
		return err
	}

	a.logger.Info("Referral commission accrued", map[string]any{
		"transaction_id":   txn.TransactionID,
		"referrer_id":      *buyer.ReferrerID,
		"order_number":     order.OrderNumber,
		"commission_cents": commission,
	})
	return nil
}
