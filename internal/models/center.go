package models

import "time"

// Center is an education center managed by a teacher. Membership of users in
// a center lives in the user_centers join table; no delete cascades are
// implied by the association.
type Center struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"not null" json:"name"`
	PhoneNumber string `json:"phone_number"`
	Description string `gorm:"type:text" json:"description"`
	AvatarImg   string `json:"avatar_img"`

	ManagerID uint `gorm:"not null" json:"manager_id"`
	Manager   User `json:"manager"`

	Members []User `gorm:"many2many:user_centers;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
