package dto

// swagger:model
type FindBitsResponse struct {
	Bit1     int    `json:"bit1,omitempty"`
	Bit2     int    `json:"bit2,omitempty"`
	Bit3     int    `json:"bit3,omitempty"`
	NoValues bool   `json:"noValues"`
	Message  string `json:"message,omitempty"`
}
