package dto

// ClientData is the public profile shape returned by /api/protected and
// /api/clients; it never carries the password hash.
type ClientData struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Email   string `json:"email" db:"email"`
	Phone   string `json:"phone" db:"phone"`
	Address string `json:"address" db:"address"`
}

// ClientStats aggregates a client's ledger footprint.
type ClientStats struct {
	CoinsMinted          int     `json:"coinsMinted"`
	CoinsOwnedNow        int     `json:"coinsOwnedNow"`
	SentTransactions     int     `json:"sentTransactions"`
	ReceivedTransactions int     `json:"receivedTransactions"`
	TotalOwnedValue      float64 `json:"totalOwnedValue"`
}
