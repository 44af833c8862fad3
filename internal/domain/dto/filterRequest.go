package dto

import (
	"bytes"
	"encoding/json"
)

// OptionalAmount accepts a JSON number, null, or the empty string the
// filtering form sends when a bound is left blank.
type OptionalAmount struct {
	Value float64
	Set   bool
}

func (a *OptionalAmount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		*a = OptionalAmount{}
		return nil
	}

	if err := json.Unmarshal(trimmed, &a.Value); err != nil {
		return err
	}
	a.Set = true
	return nil
}

func (a OptionalAmount) MarshalJSON() ([]byte, error) {
	if !a.Set {
		return []byte(`""`), nil
	}
	return json.Marshal(a.Value)
}

// swagger:model
type FilterRequest struct {
	StartDate       string         `json:"startDate"`
	FinishDate      string         `json:"finishDate"`
	MinBitSlowValue OptionalAmount `json:"minBitSlowValue"`
	MaxBitSlowValue OptionalAmount `json:"maxBitSlowValue"`
	BuyerName       string         `json:"buyerName"`
	SellerName      string         `json:"sellerName"`
}
