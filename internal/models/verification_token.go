package models

import "time"

// VerificationToken holds the one outstanding OTP for an unverified account.
// The unique index on UserID enforces the zero-or-one invariant: issuing a
// fresh code replaces the existing row instead of adding a second one.
type VerificationToken struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Code string `gorm:"not null" json:"-"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `json:"-"`

	ExpiresAt time.Time `gorm:"index" json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Live reports whether the code is still valid at the given instant.
func (t *VerificationToken) Live(now time.Time) bool {
	return t.ExpiresAt.After(now)
}
