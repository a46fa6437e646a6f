package model

import (
	"time"
)

// AccessCode is the database model for credential inventory. Claims are
// issued with FOR UPDATE SKIP LOCKED over the (product_id, status) index so
// concurrent reservations never overlap.
type AccessCode struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	ProductID   uint64     `gorm:"not null;index:idx_access_codes_product_status,priority:1"`
	Payload     string     `gorm:"type:text;not null"`
	Status      string     `gorm:"not null;size:16;index:idx_access_codes_product_status,priority:2"`
	OrderID     *uint64    `gorm:"index"`
	ReservedAt  *time.Time
	DeliveredAt *time.Time
	CreatedAt   time.Time  `gorm:"not null"`
}

// TableName specifies the table name for AccessCode
func (AccessCode) TableName() string {
	return "access_codes"
}
