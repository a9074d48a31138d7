package models

import "time"

// Role names seeded at startup.
const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
)

// User is an account of any role. Email is the login address; it starts equal
// to PersonalEmail and is replaced by a generated institutional address when a
// teacher registration is verified. PersonalEmail never changes.
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`

	Email         string `gorm:"uniqueIndex" json:"email"`
	PersonalEmail string `gorm:"uniqueIndex;not null" json:"personal_email"`
	Password      string `gorm:"not null" json:"-"`

	PhoneNumber string     `json:"phone_number"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	AvatarImg   string     `json:"avatar_img"`

	// Enabled flips to true on successful OTP verification. Locked is
	// admin-controlled and independent of Enabled.
	Enabled bool `gorm:"default:false" json:"enabled"`
	Locked  bool `gorm:"default:false" json:"locked"`

	RoleID uint `gorm:"not null" json:"role_id"`
	Role   Role `json:"role"`

	Centers []Center `gorm:"many2many:user_centers;" json:"-"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns the display name used in schedules and emails.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
