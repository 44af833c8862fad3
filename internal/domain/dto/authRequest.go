package dto

// swagger:model
type SignupRequest struct {
	Name        string `json:"name" example:"John Doe"`
	Email       string `json:"email" example:"john@example.com"`
	Password    string `json:"password" example:"secretpass"`
	PhoneNumber string `json:"phoneNumber" example:"0712345678"`
	Address     string `json:"address" example:"12 Main St"`
}

// swagger:model
type LoginRequest struct {
	Email    string `json:"email" example:"john@example.com"`
	Password string `json:"password" example:"secretpass"`
}
