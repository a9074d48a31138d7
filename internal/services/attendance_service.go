package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/models"
	apperrors "github.com/anhhh1801/Capstone-ECM/pkg/errors"
)

// AttendanceService records presence per class slot and date.
type AttendanceService struct {
	db *gorm.DB
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(db *gorm.DB) (*AttendanceService, error) {
	if db == nil {
		return nil, errors.New("attendance service: db is required")
	}
	return &AttendanceService{db: db}, nil
}

// AttendanceEntry is one student's record inside a batch.
type AttendanceEntry struct {
	StudentID uint
	Present   bool
	Note      string
}

// RecordBatchInput carries the attendance sheet of one slot on one date.
type RecordBatchInput struct {
	ClassSlotID uint
	Date        time.Time
	Entries     []AttendanceEntry
}

// RecordBatch upserts the whole sheet atomically: existing records for the
// (slot, date, enrollment) key are updated, missing ones created. Any entry
// for a student who is not enrolled aborts the batch.
func (s *AttendanceService) RecordBatch(ctx context.Context, input RecordBatchInput) ([]models.Attendance, error) {
	ctx = ensureContext(ctx)

	if len(input.Entries) == 0 {
		return nil, apperrors.NewBadRequest("attendance batch is empty")
	}

	var slot models.ClassSlot
	if err := s.db.WithContext(ctx).First(&slot, input.ClassSlotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewBadRequest("class slot does not exist")
		}
		return nil, fmt.Errorf("attendance service: load slot: %w", err)
	}

	date := input.Date.Truncate(24 * time.Hour)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range input.Entries {
			var enrollment models.Enrollment
			err := tx.Where("course_id = ? AND student_id = ?", slot.CourseID, entry.StudentID).
				First(&enrollment).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotEnrolled
				}
				return err
			}

			var existing models.Attendance
			err = tx.Where("enrollment_id = ? AND class_slot_id = ? AND date = ?",
				enrollment.ID, slot.ID, date).First(&existing).Error
			switch {
			case err == nil:
				if err := tx.Model(&existing).Updates(map[string]any{
					"present": entry.Present,
					"note":    entry.Note,
				}).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				record := models.Attendance{
					EnrollmentID: enrollment.ID,
					ClassSlotID:  slot.ID,
					Date:         date,
					Present:      entry.Present,
					Note:         entry.Note,
				}
				if err := tx.Create(&record).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("attendance service: record batch: %w", err)
	}

	return s.ListBySlotAndDate(ctx, slot.ID, date)
}

// ListBySlotAndDate returns the attendance sheet of one slot on one date.
func (s *AttendanceService) ListBySlotAndDate(ctx context.Context, slotID uint, date time.Time) ([]models.Attendance, error) {
	ctx = ensureContext(ctx)

	var records []models.Attendance
	err := s.db.WithContext(ctx).
		Preload("Enrollment").
		Preload("Enrollment.Student").
		Where("class_slot_id = ? AND date = ?", slotID, date.Truncate(24*time.Hour)).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("attendance service: list sheet: %w", err)
	}
	return records, nil
}

// ListByEnrollment returns one student's attendance history in a course.
func (s *AttendanceService) ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.Attendance, error) {
	ctx = ensureContext(ctx)

	var records []models.Attendance
	err := s.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("date").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("attendance service: list history: %w", err)
	}
	return records, nil
}
