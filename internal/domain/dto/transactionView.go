package dto

import "time"

// TransactionView is the enhanced transaction row served by the listing
// endpoints: the raw transaction joined with both client names and the
// coin's components, plus the rendered identity.
type TransactionView struct {
	ID              int64     `json:"id"`
	CoinID          int64     `json:"coin_id"`
	Amount          float64   `json:"amount"`
	TransactionDate time.Time `json:"transaction_date"`
	SellerID        *int64    `json:"seller_id"`
	SellerName      *string   `json:"seller_name"`
	BuyerID         int64     `json:"buyer_id"`
	BuyerName       string    `json:"buyer_name"`
	Bit1            int       `json:"bit1"`
	Bit2            int       `json:"bit2"`
	Bit3            int       `json:"bit3"`
	Value           float64   `json:"value"`
	ComputedBitSlow string    `json:"computedBitSlow"`
}
