package entity

import (
	"fmt"
	"time"

	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
)

// TransactionKind classifies a ledger movement
type TransactionKind string

// Transaction kinds
const (
	KindDeposit            TransactionKind = "deposit"
	KindPurchase           TransactionKind = "purchase"
	KindRefund             TransactionKind = "refund"
	KindReferralCommission TransactionKind = "referral_commission"
	KindPayoutRequest      TransactionKind = "payout_request"
	KindAdjustment         TransactionKind = "adjustment"
)

// TransactionStatus defines the lifecycle status of a transaction
type TransactionStatus string

// Transaction statuses. Transitions are monotonic: pending is the only
// non-terminal status, and a completed transaction is never mutated back -
// refunds are compensating transactions of their own.
const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"
	TxStatusFailed    TransactionStatus = "failed"
	TxStatusCancelled TransactionStatus = "cancelled"
	TxStatusRefunded  TransactionStatus = "refunded"
)

// SettlementCurrency is the single currency the ledger settles in
const SettlementCurrency = "USD"

// Transaction represents one signed monetary movement on an owner's ledger.
// Amounts are signed cents: credits carry a non-negative amount, purchase
// debits a negative one. NetCents = AmountCents - FeeCents is the quantity
// that affects the derived balance.
type Transaction struct {
	ID               uint64
	TransactionID    string // external unique identifier
	OwnerID          uint64
	Kind             TransactionKind
	AmountCents      int64
	FeeCents         int64
	NetCents         int64
	Currency         string
	PayCurrency      string // crypto payment annotation, empty for non-deposits
	PayAmount        string // amount in the payment currency as reported by the gateway
	Status           TransactionStatus
	Gateway          string
	GatewayPaymentID string // unique when present; webhook idempotency key
	InvoiceURL       string
	OrderRef         string // correlation key shared with the gateway
	Metadata         map[string]string
	FailureReason    string
	CreatedAt        time.Time
	CompletedAt      *time.Time
}

// NewTransaction creates a pending transaction, enforcing the sign
// convention per kind: purchases are debits (amount < 0), every other kind
// is a credit (amount >= 0). Fee is always non-negative.
func NewTransaction(
	transactionID string,
	ownerID uint64,
	kind TransactionKind,
	amountCents int64,
	feeCents int64,
	orderRef string,
	metadata map[string]string,
	timeProvider coreport.TimeProvider,
) (*Transaction, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("%w: transaction id cannot be empty", errs.ErrValidation)
	}
	if ownerID == 0 {
		return nil, fmt.Errorf("%w: owner id must be positive", errs.ErrValidation)
	}
	if feeCents < 0 {
		return nil, fmt.Errorf("%w: fee cannot be negative", errs.ErrValidation)
	}
	if !isValidKind(kind) {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", errs.ErrValidation, kind)
	}

	if kind == KindPurchase {
		if amountCents >= 0 {
			return nil, fmt.Errorf("%w: purchase amount must be negative", errs.ErrValidation)
		}
	} else if amountCents < 0 {
		return nil, fmt.Errorf("%w: %s amount cannot be negative", errs.ErrValidation, kind)
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	return &Transaction{
		TransactionID: transactionID,
		OwnerID:       ownerID,
		Kind:          kind,
		AmountCents:   amountCents,
		FeeCents:      feeCents,
		NetCents:      amountCents - feeCents,
		Currency:      SettlementCurrency,
		Status:        TxStatusPending,
		OrderRef:      orderRef,
		Metadata:      metadata,
		CreatedAt:     timeProvider.Now(),
	}, nil
}

// IsPending reports whether the transaction can still transition
func (t *Transaction) IsPending() bool {
	return t.Status == TxStatusPending
}

// IsTerminal reports whether the transaction reached a final status
func (t *Transaction) IsTerminal() bool {
	return !t.IsPending()
}

// MarkCompleted transitions pending -> completed, stamping CompletedAt.
// Any other starting status yields ErrAlreadyTerminal.
func (t *Transaction) MarkCompleted(timeProvider coreport.TimeProvider) error {
	if t.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", errs.ErrAlreadyTerminal, t.TransactionID, t.Status)
	}
	now := timeProvider.Now()
	t.CompletedAt = &now
	t.Status = TxStatusCompleted
	return nil
}

// MarkFailed transitions pending -> failed with a reason
func (t *Transaction) MarkFailed(timeProvider coreport.TimeProvider, reason string) error {
	if t.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", errs.ErrAlreadyTerminal, t.TransactionID, t.Status)
	}
	now := timeProvider.Now()
	t.CompletedAt = &now
	t.Status = TxStatusFailed
	t.FailureReason = reason
	return nil
}

// MarkCancelled transitions pending -> cancelled with a reason
func (t *Transaction) MarkCancelled(timeProvider coreport.TimeProvider, reason string) error {
	if t.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", errs.ErrAlreadyTerminal, t.TransactionID, t.Status)
	}
	now := timeProvider.Now()
	t.CompletedAt = &now
	t.Status = TxStatusCancelled
	t.FailureReason = reason
	return nil
}

// AttachGateway links the gateway-assigned payment identity to the
// transaction after invoice creation
func (t *Transaction) AttachGateway(gateway, paymentID, invoiceURL, payCurrency string) {
	t.Gateway = gateway
	t.GatewayPaymentID = paymentID
	t.InvoiceURL = invoiceURL
	t.PayCurrency = payCurrency
}

// Annotate records a gateway-reported fact in the transaction metadata
func (t *Transaction) Annotate(key, value string) {
	if t.Metadata == nil {
		t.Metadata = map[string]string{}
	}
	t.Metadata[key] = value
}

// IsCredit reports whether the transaction increases the owner's balance
func (t *Transaction) IsCredit() bool {
	return t.NetCents >= 0
}

// IsDebit reports whether the transaction decreases the owner's balance
func (t *Transaction) IsDebit() bool {
	return t.NetCents < 0
}

func isValidKind(kind TransactionKind) bool {
	switch kind {
	case KindDeposit, KindPurchase, KindRefund, KindReferralCommission, KindPayoutRequest, KindAdjustment:
		return true
	}
	return false
}
