package entity

import (
	"time"
)

// AccessCodeStatus tracks a credential unit through the allocation lifecycle
type AccessCodeStatus string

// Access code statuses: available -> reserved -> sold, with reserved codes
// returning to available on release. A code in available status carries no
// order reference.
const (
	CodeStatusAvailable AccessCodeStatus = "available"
	CodeStatusReserved  AccessCodeStatus = "reserved"
	CodeStatusSold      AccessCodeStatus = "sold"
)

// AccessCode is one unit of sellable credential inventory for a product.
// The payload is opaque to the core.
type AccessCode struct {
	ID          uint64
	ProductID   uint64
	Payload     string
	Status      AccessCodeStatus
	OrderID     *uint64
	ReservedAt  *time.Time
	DeliveredAt *time.Time
	CreatedAt   time.Time
}

// IsAvailable reports whether the code can currently be reserved
func (c *AccessCode) IsAvailable() bool {
	return c.Status == CodeStatusAvailable
}

// IsReserved reports whether the code is claimed but not yet finalized
func (c *AccessCode) IsReserved() bool {
	return c.Status == CodeStatusReserved
}
