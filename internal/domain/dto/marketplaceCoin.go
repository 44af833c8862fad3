package dto

// MarketplaceCoin is a coin listing row with the owner's name resolved
// and the display hash rendered.
type MarketplaceCoin struct {
	CoinID  int64   `json:"coin_id"`
	OwnerID *int64  `json:"owner_id"`
	Owner   *string `json:"owner"`
	Bit1    int     `json:"bit1"`
	Bit2    int     `json:"bit2"`
	Bit3    int     `json:"bit3"`
	Value   float64 `json:"value"`
	Hash    string  `json:"hash"`
}
