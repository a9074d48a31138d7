package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/models"
)

// ScheduleService answers weekly timetable queries for teachers and students.
type ScheduleService struct {
	db *gorm.DB
}

// NewScheduleService constructs a ScheduleService instance.
func NewScheduleService(db *gorm.DB) (*ScheduleService, error) {
	if db == nil {
		return nil, errors.New("schedule service: db is required")
	}
	return &ScheduleService{db: db}, nil
}

// ScheduleEntry is one weekly slot with its course context.
type ScheduleEntry struct {
	CourseID   uint   `json:"course_id"`
	CourseName string `json:"course_name"`
	Subject    string `json:"subject"`
	CenterName string `json:"center_name"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// ForTeacher returns the weekly slots of every active course the teacher runs.
func (s *ScheduleService) ForTeacher(ctx context.Context, teacherID uint) ([]ScheduleEntry, error) {
	ctx = ensureContext(ctx)

	var slots []models.ClassSlot
	err := s.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Center").
		Joins("JOIN courses ON courses.id = class_slots.course_id").
		Where("courses.teacher_id = ? AND courses.status = ?", teacherID, models.CourseStatusActive).
		Order("class_slots.day_of_week, class_slots.start_time").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("schedule service: teacher schedule: %w", err)
	}

	return toScheduleEntries(slots), nil
}

// ForStudent returns the weekly slots of every active course the student is
// enrolled in.
func (s *ScheduleService) ForStudent(ctx context.Context, studentID uint) ([]ScheduleEntry, error) {
	ctx = ensureContext(ctx)

	var slots []models.ClassSlot
	err := s.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Center").
		Joins("JOIN courses ON courses.id = class_slots.course_id").
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.student_id = ? AND courses.status = ?", studentID, models.CourseStatusActive).
		Order("class_slots.day_of_week, class_slots.start_time").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("schedule service: student schedule: %w", err)
	}

	return toScheduleEntries(slots), nil
}

func toScheduleEntries(slots []models.ClassSlot) []ScheduleEntry {
	entries := make([]ScheduleEntry, 0, len(slots))
	for _, slot := range slots {
		entries = append(entries, ScheduleEntry{
			CourseID:   slot.CourseID,
			CourseName: slot.Course.Name,
			Subject:    slot.Course.Subject,
			CenterName: slot.Course.Center.Name,
			DayOfWeek:  slot.DayOfWeek,
			StartTime:  slot.StartTime,
			EndTime:    slot.EndTime,
		})
	}
	return entries
}
