package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeValidation           = 4001
	CodeInsufficientFunds    = 4002
	CodeInventoryExhausted   = 4003
	CodeSignatureInvalid     = 4004
	CodeCannotCancel         = 4005
	CodeRefundExceedsNet     = 4006
	CodeDuplicateTransaction = 4007
	CodeOrderNotFound        = 4040
	CodeTransactionNotFound  = 4041
	CodePaymentNotFound      = 4042
	CodeCustomerNotFound     = 4043
	CodeAlreadyTerminal      = 4090
	CodeAccountLocked        = 4230

	// 5xxx - Server errors
	CodeGatewayUnavailable  = 5020
	CodeConcurrencyConflict = 5030
	CodeInternalServer      = 5000
)

// Base error types
var (
	// ErrValidation is returned when caller input violates a business rule;
	// nothing is persisted
	ErrValidation = errors.New("validation failed")

	// ErrInvalidAmount is returned when a monetary amount cannot be parsed
	ErrInvalidAmount = errors.New("invalid amount format")

	// ErrInsufficientFunds is returned when a purchase debit would push the
	// owner's balance below zero
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInventoryExhausted is returned when a reservation cannot claim the
	// requested quantity; no codes are reserved in that case
	ErrInventoryExhausted = errors.New("inventory exhausted")

	// ErrSignatureVerification is returned when a webhook signature does not
	// match the shared secret
	ErrSignatureVerification = errors.New("webhook signature verification failed")

	// ErrAlreadyTerminal is returned when a status transition is attempted on
	// a transaction that is no longer pending. Webhook replay treats this as
	// a successful no-op.
	ErrAlreadyTerminal = errors.New("transaction is already in a terminal state")

	// ErrCannotCancel is returned when an order no longer satisfies the
	// cancellation guard
	ErrCannotCancel = errors.New("order can no longer be cancelled")

	// ErrGatewayUnavailable is returned when the payment gateway call fails
	// or times out; the pending transaction is kept for out-of-band retry
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrConcurrencyConflict is returned on serialization or lock conflicts;
	// the whole operation is safe to retry
	ErrConcurrencyConflict = errors.New("concurrent modification conflict")

	// ErrAccountLocked is returned when another ledger mutation holds the
	// owner's account lock
	ErrAccountLocked = errors.New("account is locked by another operation")

	// ErrOrderNotFound is returned when the referenced order doesn't exist
	ErrOrderNotFound = errors.New("order not found")

	// ErrTransactionNotFound is returned when the referenced transaction doesn't exist
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrPaymentNotFound is returned when no transaction carries the given
	// gateway payment id
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrCustomerNotFound is returned when the referenced customer doesn't exist
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrDuplicateTransaction is returned when a transaction with the same
	// external id already exists
	ErrDuplicateTransaction = errors.New("transaction with this ID already exists")

	// ErrDatabaseConnection is returned when the storage layer is unreachable
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidAmount):
		return CodeValidation
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrInventoryExhausted):
		return CodeInventoryExhausted
	case errors.Is(err, ErrSignatureVerification):
		return CodeSignatureInvalid
	case errors.Is(err, ErrCannotCancel):
		return CodeCannotCancel
	case errors.Is(err, ErrDuplicateTransaction):
		return CodeDuplicateTransaction
	case errors.Is(err, ErrOrderNotFound):
		return CodeOrderNotFound
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrPaymentNotFound):
		return CodePaymentNotFound
	case errors.Is(err, ErrCustomerNotFound):
		return CodeCustomerNotFound
	case errors.Is(err, ErrAlreadyTerminal):
		return CodeAlreadyTerminal
	case errors.Is(err, ErrAccountLocked):
		return CodeAccountLocked
	case errors.Is(err, ErrGatewayUnavailable):
		return CodeGatewayUnavailable
	case errors.Is(err, ErrConcurrencyConflict):
		return CodeConcurrencyConflict
	default:
		return CodeInternalServer
	}
}

// InsufficientFundsError carries the balance context of a blocked debit
type InsufficientFundsError struct {
	OwnerID        uint64
	RequiredCents  int64
	AvailableCents int64
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for owner %d: required %d cents, available %d cents",
		e.OwnerID, e.RequiredCents, e.AvailableCents)
}

// Is checks if the target error is an ErrInsufficientFunds
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientFundsError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "insufficient_funds",
		"owner_id":        e.OwnerID,
		"required_cents":  e.RequiredCents,
		"available_cents": e.AvailableCents,
		"error_code":      CodeInsufficientFunds,
	}
}

// NewInsufficientFundsError creates a detailed insufficient funds error
func NewInsufficientFundsError(ownerID uint64, requiredCents, availableCents int64) error {
	return &InsufficientFundsError{
		OwnerID:        ownerID,
		RequiredCents:  requiredCents,
		AvailableCents: availableCents,
	}
}

// InventoryExhaustedError carries the shortfall of a failed reservation
type InventoryExhaustedError struct {
	ProductID uint64
	Requested int
	Available int
}

// Error implements the error interface
func (e *InventoryExhaustedError) Error() string {
	return fmt.Sprintf("inventory exhausted for product %d: requested %d, available %d (short %d)",
		e.ProductID, e.Requested, e.Available, e.Shortfall())
}

// Shortfall returns how many codes were missing from the pool
func (e *InventoryExhaustedError) Shortfall() int {
	return e.Requested - e.Available
}

// Is checks if the target error is an ErrInventoryExhausted
func (e *InventoryExhaustedError) Is(target error) bool {
	return target == ErrInventoryExhausted
}

// LogFields returns a map of fields for structured logging
func (e *InventoryExhaustedError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "inventory_exhausted",
		"product_id": e.ProductID,
		"requested":  e.Requested,
		"available":  e.Available,
		"shortfall":  e.Shortfall(),
		"error_code": CodeInventoryExhausted,
	}
}

// NewInventoryExhaustedError creates a detailed inventory exhaustion error
func NewInventoryExhaustedError(productID uint64, requested, available int) error {
	return &InventoryExhaustedError{
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

// RefundBoundError is raised when a refund request exceeds the amount still
// refundable on an order
type RefundBoundError struct {
	OrderNumber     string
	RequestedCents  int64
	RefundableCents int64
}

// Error implements the error interface
func (e *RefundBoundError) Error() string {
	return fmt.Sprintf("refund of %d cents on order %s exceeds remaining refundable amount of %d cents",
		e.RequestedCents, e.OrderNumber, e.RefundableCents)
}

// Is reports a RefundBoundError as a validation failure
func (e *RefundBoundError) Is(target error) bool {
	return target == ErrValidation
}

// NewRefundBoundError creates a detailed refund bound violation error
func NewRefundBoundError(orderNumber string, requestedCents, refundableCents int64) error {
	return &RefundBoundError{
		OrderNumber:     orderNumber,
		RequestedCents:  requestedCents,
		RefundableCents: refundableCents,
	}
}

// GatewayError wraps a failed or timed-out gateway call. The caller must not
// treat it as a definite failure of the invoice.
type GatewayError struct {
	Gateway   string
	Operation string
	Err       error
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %s failed: %v", e.Gateway, e.Operation, e.Err)
}

// Unwrap returns the underlying error
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is checks if the target error is an ErrGatewayUnavailable
func (e *GatewayError) Is(target error) bool {
	return target == ErrGatewayUnavailable
}

// NewGatewayError wraps a gateway call failure
func NewGatewayError(gateway, operation string, err error) error {
	return &GatewayError{Gateway: gateway, Operation: operation, Err: err}
}

// IsValidationError checks if the error is a caller input violation
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidAmount)
}

// IsInsufficientFundsError checks if the error is related to a blocked debit
func IsInsufficientFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsInventoryExhaustedError checks if the error is a reservation shortfall
func IsInventoryExhaustedError(err error) bool {
	return errors.Is(err, ErrInventoryExhausted)
}

// IsAlreadyTerminalError checks if the error marks an idempotent replay
func IsAlreadyTerminalError(err error) bool {
	return errors.Is(err, ErrAlreadyTerminal)
}

// IsGatewayError checks if the error came from the payment gateway
func IsGatewayError(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrCustomerNotFound)
}

// IsConflictError checks if the error is retryable lock or serialization contention
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrAccountLocked)
}
