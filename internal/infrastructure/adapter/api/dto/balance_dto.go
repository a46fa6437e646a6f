package dto

// BalanceResponse represents the API response for an owner's derived balance
type BalanceResponse struct {
	OwnerID uint64 `json:"ownerId"`
	Balance string `json:"balance"`
}
