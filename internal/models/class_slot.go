package models

import "time"

// ClassSlot is a weekly recurring teaching slot for a course.
// DayOfWeek follows the 1=Monday .. 7=Sunday convention. Times are wall-clock
// strings in "15:04" form; the slot carries no date of its own.
type ClassSlot struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DayOfWeek int    `gorm:"not null" json:"day_of_week"`
	StartTime string `gorm:"not null" json:"start_time"`
	EndTime   string `gorm:"not null" json:"end_time"`

	Recurring bool `gorm:"default:true" json:"recurring"`

	CourseID uint   `gorm:"not null" json:"course_id"`
	Course   Course `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
