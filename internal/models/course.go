package models

import "time"

// Course lifecycle states.
const (
	CourseStatusActive = "ACTIVE"
	CourseStatusClosed = "CLOSED"
)

// Teacher invitation states on a course.
const (
	InvitationAccepted = "ACCEPTED"
	InvitationPending  = "PENDING"
	InvitationRejected = "REJECTED"
)

// Course belongs to a center and a teacher. PendingTeacher is set while a
// teacher-transfer invitation awaits a response.
type Course struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"not null" json:"name"`
	Subject     string `json:"subject"`
	Grade       int    `json:"grade"`
	Description string `gorm:"type:text" json:"description"`

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	Status           string `gorm:"default:ACTIVE" json:"status"`
	InvitationStatus string `gorm:"default:ACCEPTED" json:"invitation_status"`

	CenterID uint   `gorm:"not null" json:"center_id"`
	Center   Center `json:"center"`

	TeacherID uint `gorm:"not null" json:"teacher_id"`
	Teacher   User `json:"teacher"`

	PendingTeacherID *uint `json:"pending_teacher_id"`
	PendingTeacher   *User `json:"pending_teacher,omitempty"`

	Enrollments []Enrollment `json:"-"`
	Slots       []ClassSlot  `json:"slots,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
