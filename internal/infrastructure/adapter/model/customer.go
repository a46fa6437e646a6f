package model

import (
	"time"
)

// Customer is the database model for account owners. Balances are derived
// from the transactions table, not stored here.
type Customer struct {
	ID         uint64    `gorm:"primaryKey"`
	ReferrerID *uint64   `gorm:"index"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName specifies the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

// AccountLock serializes ledger mutations per owner via upsert with expiry
type AccountLock struct {
	OwnerID   uint64    `gorm:"primaryKey"`
	LockedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for AccountLock
func (AccountLock) TableName() string {
	return "account_locks"
}
