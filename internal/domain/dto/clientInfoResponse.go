package dto

// ClientInfoResponse is the per-client history page: everything the
// client sold, everything it bought, and its current holdings.
type ClientInfoResponse struct {
	Client               ClientName        `json:"client"`
	TransactionsMadeBy   []TransactionView `json:"transactionsMadeBy"`
	TransactionsBuyed    []TransactionView `json:"transactionsBuyed"`
	TotalBitSlowCurrency int               `json:"totalBitSlowCurrency"`
	TotalMonetaryValue   float64           `json:"totalMonetaryValue"`
	Stats                ClientStats       `json:"stats"`
}

type ClientName struct {
	Name string `json:"name"`
}
