package models

import "time"

// Attendance records presence of one enrolled student at one class slot on a
// concrete date. The composite index makes the batch upsert idempotent per
// (slot, date, enrollment).
type Attendance struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EnrollmentID uint       `gorm:"not null;uniqueIndex:idx_attendance_slot_date_enrollment" json:"enrollment_id"`
	Enrollment   Enrollment `json:"enrollment"`

	ClassSlotID uint      `gorm:"not null;uniqueIndex:idx_attendance_slot_date_enrollment" json:"class_slot_id"`
	ClassSlot   ClassSlot `json:"-"`

	Date time.Time `gorm:"not null;uniqueIndex:idx_attendance_slot_date_enrollment" json:"date"`

	Present bool   `json:"present"`
	Note    string `json:"note"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
