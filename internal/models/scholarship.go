package models

// Scholarship is a discount applied to an enrollment.
type Scholarship struct {
	ID                 uint    `gorm:"primaryKey" json:"id"`
	Name               string  `gorm:"not null" json:"name"`
	DiscountPercentage float32 `json:"discount_percentage"`
}
