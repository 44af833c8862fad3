package models

import "time"

// Transaction is one append-only ownership transfer. SellerID is nil
// for rows issued directly from mint with no prior owner. The current
// owner of a coin is the buyer of its latest transaction, or the
// minting owner if the coin has none.
type Transaction struct {
	ID              int64     `json:"id" db:"id"`
	CoinID          int64     `json:"coin_id" db:"coin_id"`
	SellerID        *int64    `json:"seller_id" db:"seller_id"`
	BuyerID         int64     `json:"buyer_id" db:"buyer_id"`
	Amount          float64   `json:"amount" db:"amount"`
	TransactionDate time.Time `json:"transaction_date" db:"transaction_date"`
}
