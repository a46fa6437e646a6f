package model

import (
	"time"
)

// Transaction is the database model for ledger transactions. The partial
// unique index on (gateway, gateway_payment_id) is the storage-enforced
// webhook idempotency key.
type Transaction struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement"`
	TransactionID    string     `gorm:"uniqueIndex;not null;size:64"`
	OwnerID          uint64     `gorm:"not null;index"`
	Kind             string     `gorm:"not null;size:32"`
	AmountCents      int64      `gorm:"not null"`
	FeeCents         int64      `gorm:"not null"`
	NetCents         int64      `gorm:"not null"`
	Currency         string     `gorm:"not null;size:8"`
	PayCurrency      string     `gorm:"size:16"`
	PayAmount        string     `gorm:"size:64"`
	Status           string     `gorm:"not null;size:32;index:idx_transactions_owner_status,priority:2"`
	Gateway          string     `gorm:"size:32"`
	GatewayPaymentID string     `gorm:"size:128"`
	InvoiceURL       string     `gorm:"type:text"`
	OrderRef         string     `gorm:"index;size:64"`
	Metadata         string     `gorm:"type:jsonb;default:'{}'"`
	FailureReason    string     `gorm:"type:text"`
	CreatedAt        time.Time  `gorm:"not null"`
	CompletedAt      *time.Time
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
