package models

// Coin is a minted BitSlow. The (Bit1, Bit2, Bit3) triple is globally
// unique across all coins that have ever existed; OwnerID is the only
// field that changes after minting, and only through a ledger transfer.
type Coin struct {
	CoinID  int64   `json:"coin_id" db:"coin_id"`
	OwnerID *int64  `json:"client_id" db:"client_id"`
	Bit1    int     `json:"bit1" db:"bit1"`
	Bit2    int     `json:"bit2" db:"bit2"`
	Bit3    int     `json:"bit3" db:"bit3"`
	Value   float64 `json:"value" db:"value"`
}
