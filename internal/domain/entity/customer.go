package entity

import (
	"fmt"
	"time"

	errs "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
)

// Customer is a storefront account owner. The balance is never stored here;
// it is derived from completed ledger transactions.
type Customer struct {
	ID         uint64
	ReferrerID *uint64 // set when the customer signed up through a referral link
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCustomer creates a customer, optionally linked to a referrer
func NewCustomer(id uint64, referrerID *uint64, timeProvider coreport.TimeProvider) (*Customer, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: customer id must be positive", errs.ErrValidation)
	}
	if referrerID != nil && *referrerID == id {
		return nil, fmt.Errorf("%w: customer cannot refer themselves", errs.ErrValidation)
	}

	now := timeProvider.Now()
	return &Customer{
		ID:         id,
		ReferrerID: referrerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// HasReferrer reports whether completed orders of this customer accrue
// commission for somebody
func (c *Customer) HasReferrer() bool {
	return c.ReferrerID != nil
}
