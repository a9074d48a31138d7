package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/models"
	apperrors "github.com/anhhh1801/Capstone-ECM/pkg/errors"
)

// ErrNoPendingInvitation rejects a response to a course without one.
var ErrNoPendingInvitation = apperrors.New("NO_PENDING_INVITATION", "Course has no pending invitation", http.StatusConflict)

// CourseService manages courses, their class slots and the teacher
// invitation workflow.
type CourseService struct {
	db *gorm.DB
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(db *gorm.DB) (*CourseService, error) {
	if db == nil {
		return nil, errors.New("course service: db is required")
	}
	return &CourseService{db: db}, nil
}

// ClassSlotInput describes one weekly slot on a new course.
type ClassSlotInput struct {
	DayOfWeek int
	StartTime string
	EndTime   string
	Recurring bool
}

// CreateCourseInput describes a new course with its slots.
type CreateCourseInput struct {
	Name        string
	Subject     string
	Grade       int
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	CenterID    uint
	TeacherID   uint
	Slots       []ClassSlotInput
}

// UpdateCourseInput enumerates mutable course attributes.
type UpdateCourseInput struct {
	Name        *string
	Subject     *string
	Grade       *int
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *string
}

// Create provisions a course together with all its class slots. The whole
// write commits atomically or not at all.
func (s *CourseService) Create(ctx context.Context, input CreateCourseInput) (*models.Course, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("course name is required")
	}

	var center models.Center
	if err := s.db.WithContext(ctx).First(&center, input.CenterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("course service: load center: %w", err)
	}

	var teacher models.User
	if err := s.db.WithContext(ctx).First(&teacher, input.TeacherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("course service: load teacher: %w", err)
	}

	for _, slot := range input.Slots {
		if slot.DayOfWeek < 1 || slot.DayOfWeek > 7 {
			return nil, apperrors.NewBadRequest("slot day of week must be between 1 and 7")
		}
		if err := validateSlotTimes(slot.StartTime, slot.EndTime); err != nil {
			return nil, err
		}
	}

	course := models.Course{
		Name:             name,
		Subject:          strings.TrimSpace(input.Subject),
		Grade:            input.Grade,
		Description:      input.Description,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		Status:           models.CourseStatusActive,
		InvitationStatus: models.InvitationAccepted,
		CenterID:         center.ID,
		TeacherID:        teacher.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&course).Error; err != nil {
			return err
		}
		for _, slot := range input.Slots {
			record := models.ClassSlot{
				DayOfWeek: slot.DayOfWeek,
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
				Recurring: slot.Recurring,
				CourseID:  course.ID,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("course service: create course: %w", err)
	}

	return s.GetByID(ctx, course.ID)
}

// GetByID loads a course with its center, teacher and slots.
func (s *CourseService) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	ctx = ensureContext(ctx)

	var course models.Course
	err := s.db.WithContext(ctx).
		Preload("Center").
		Preload("Teacher").
		Preload("PendingTeacher").
		Preload("Slots").
		First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("course service: get course: %w", err)
	}
	return &course, nil
}

// List returns courses, optionally filtered by center or teacher.
func (s *CourseService) List(ctx context.Context, centerID, teacherID uint) ([]models.Course, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Preload("Center").Preload("Teacher").Preload("Slots")
	if centerID != 0 {
		query = query.Where("center_id = ?", centerID)
	}
	if teacherID != 0 {
		query = query.Where("teacher_id = ?", teacherID)
	}

	var courses []models.Course
	if err := query.Order("id").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("course service: list courses: %w", err)
	}
	return courses, nil
}

// Update applies the non-nil fields to a course.
func (s *CourseService) Update(ctx context.Context, id uint, input UpdateCourseInput) (*models.Course, error) {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("course name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Subject != nil {
		updates["subject"] = strings.TrimSpace(*input.Subject)
	}
	if input.Grade != nil {
		updates["grade"] = *input.Grade
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.StartDate != nil {
		updates["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		updates["end_date"] = *input.EndDate
	}
	if input.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*input.Status))
		if status != models.CourseStatusActive && status != models.CourseStatusClosed {
			return nil, apperrors.NewBadRequest("unknown course status")
		}
		updates["status"] = status
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("course service: update course: %w", err)
		}
	}

	return s.GetByID(ctx, id)
}

// Delete removes a course with its slots and enrollments.
func (s *CourseService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollmentIDs := tx.Model(&models.Enrollment{}).Select("id").Where("course_id = ?", id)
		if err := tx.Where("enrollment_id IN (?)", enrollmentIDs).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.ClassSlot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Course{}, id).Error
	})
}

// InviteTeacher records a pending teacher-transfer invitation by email.
func (s *CourseService) InviteTeacher(ctx context.Context, courseID uint, teacherEmail string) (*models.Course, error) {
	ctx = ensureContext(ctx)

	course, err := s.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(teacherEmail))
	var invitee models.User
	if findErr := s.db.WithContext(ctx).Where("email = ?", email).First(&invitee).Error; findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownEmail
		}
		return nil, fmt.Errorf("course service: load invitee: %w", findErr)
	}

	updates := map[string]any{
		"pending_teacher_id": invitee.ID,
		"invitation_status":  models.InvitationPending,
	}
	if err := s.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", course.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("course service: invite teacher: %w", err)
	}

	return s.GetByID(ctx, course.ID)
}

// RespondToInvitation accepts or rejects the pending invitation. Accepting
// installs the invitee as the course teacher.
func (s *CourseService) RespondToInvitation(ctx context.Context, courseID, teacherID uint, accept bool) (*models.Course, error) {
	ctx = ensureContext(ctx)

	course, err := s.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if course.InvitationStatus != models.InvitationPending || course.PendingTeacherID == nil {
		return nil, ErrNoPendingInvitation
	}
	if *course.PendingTeacherID != teacherID {
		return nil, apperrors.ErrForbidden
	}

	updates := map[string]any{
		"pending_teacher_id": nil,
	}
	if accept {
		updates["teacher_id"] = teacherID
		updates["invitation_status"] = models.InvitationAccepted
	} else {
		updates["invitation_status"] = models.InvitationRejected
	}

	if err := s.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", course.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("course service: respond to invitation: %w", err)
	}

	return s.GetByID(ctx, course.ID)
}

// PendingInvitations lists courses waiting on the given teacher's response.
func (s *CourseService) PendingInvitations(ctx context.Context, teacherID uint) ([]models.Course, error) {
	ctx = ensureContext(ctx)

	var courses []models.Course
	err := s.db.WithContext(ctx).
		Preload("Center").
		Preload("Teacher").
		Where("pending_teacher_id = ? AND invitation_status = ?", teacherID, models.InvitationPending).
		Order("id").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("course service: pending invitations: %w", err)
	}
	return courses, nil
}

func validateSlotTimes(start, end string) error {
	startAt, err := time.Parse("15:04", start)
	if err != nil {
		return apperrors.NewBadRequest("slot start time must be HH:MM")
	}
	endAt, err := time.Parse("15:04", end)
	if err != nil {
		return apperrors.NewBadRequest("slot end time must be HH:MM")
	}
	if !endAt.After(startAt) {
		return apperrors.NewBadRequest("slot end time must be after start time")
	}
	return nil
}
