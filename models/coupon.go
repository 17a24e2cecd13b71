package models

// Coupon is an entry in the static coupon catalog served by /api/v1/coupons.
type Coupon struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Company     string  `json:"company"`
	Discount    float64 `json:"discount"`
	Category    string  `json:"category"`
	ExpiresAt   string  `json:"expiresAt"`
}
