package model

import (
	"time"
)

// Order is the database model for purchase orders
type Order struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement"`
	OrderNumber    string     `gorm:"uniqueIndex;not null;size:64"`
	OwnerID        uint64     `gorm:"not null;index"`
	ProductID      uint64     `gorm:"not null;index"`
	Quantity       int        `gorm:"not null"`
	UnitPriceCents int64      `gorm:"not null"`
	TotalCents     int64      `gorm:"not null"`
	DiscountCents  int64      `gorm:"not null"`
	NetCents       int64      `gorm:"not null"`
	Status         string     `gorm:"not null;size:32;index"`
	PaymentStatus  string     `gorm:"not null;size:32"`
	DeliveryMode   string     `gorm:"not null;size:16"`
	RefundedCents  int64      `gorm:"not null;default:0"`
	DeliveryFiles  string     `gorm:"type:jsonb;default:'[]'"`
	DeliveryNotes  string     `gorm:"type:text"`
	CreatedAt      time.Time  `gorm:"not null"`
	PaidAt         *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}

// OrderEvent is the database model for order timeline entries
type OrderEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64    `gorm:"not null;index"`
	Cause     string    `gorm:"not null;size:64"`
	Actor     string    `gorm:"not null;size:128"`
	Detail    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for OrderEvent
func (OrderEvent) TableName() string {
	return "order_events"
}
