package models

import "time"

// Enrollment joins a student to a course. The composite unique index keeps a
// student from being enrolled in the same course twice.
type Enrollment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	StudentID uint `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	Student   User `json:"student"`

	CourseID uint   `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"course_id"`
	Course   Course `json:"-"`

	ScholarshipID *uint        `json:"scholarship_id"`
	Scholarship   *Scholarship `json:"scholarship,omitempty"`

	EnrolledOn time.Time `json:"enrolled_on"`

	ProgressScore float32 `json:"progress_score"`
	TestScore     float32 `json:"test_score"`
	FinalScore    float32 `json:"final_score"`
	Performance   string  `gorm:"size:3" json:"performance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
