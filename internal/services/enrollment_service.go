package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/models"
	apperrors "github.com/anhhh1801/Capstone-ECM/pkg/errors"
)

// EnrollmentOption customises the EnrollmentService.
type EnrollmentOption func(*EnrollmentService)

// WithEnrollmentClock injects a custom time source.
func WithEnrollmentClock(clock func() time.Time) EnrollmentOption {
	return func(s *EnrollmentService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// EnrollmentService joins students to courses and tracks their scores.
type EnrollmentService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(db *gorm.DB, opts ...EnrollmentOption) (*EnrollmentService, error) {
	if db == nil {
		return nil, errors.New("enrollment service: db is required")
	}
	service := &EnrollmentService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// AddStudentInput describes an enrollment request.
type AddStudentInput struct {
	StudentID     uint
	CourseID      uint
	ScholarshipID *uint
}

// UpdateScoresInput carries score updates for one enrollment.
type UpdateScoresInput struct {
	ProgressScore *float32
	TestScore     *float32
	FinalScore    *float32
	Performance   *string
}

// AddStudent enrolls a student in a course and connects the student to the
// course's center. Enrolling the same student twice yields a conflict.
func (s *EnrollmentService) AddStudent(ctx context.Context, input AddStudentInput) (*models.Enrollment, error) {
	ctx = ensureContext(ctx)

	var student models.User
	if err := s.db.WithContext(ctx).First(&student, input.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("enrollment service: load student: %w", err)
	}

	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("enrollment service: load course: %w", err)
	}

	if input.ScholarshipID != nil {
		var scholarship models.Scholarship
		if err := s.db.WithContext(ctx).First(&scholarship, *input.ScholarshipID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewBadRequest("scholarship does not exist")
			}
			return nil, fmt.Errorf("enrollment service: load scholarship: %w", err)
		}
	}

	enrollment := models.Enrollment{
		StudentID:     student.ID,
		CourseID:      course.ID,
		ScholarshipID: input.ScholarshipID,
		EnrolledOn:    s.now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}
		var center models.Center
		if err := tx.First(&center, course.CenterID).Error; err != nil {
			return err
		}
		return tx.Model(&center).Association("Members").Append(&student)
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("enrollment service: add student: %w", err)
	}

	return s.GetByID(ctx, enrollment.ID)
}

// GetByID loads an enrollment with its student and scholarship.
func (s *EnrollmentService) GetByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	ctx = ensureContext(ctx)

	var enrollment models.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Scholarship").
		First(&enrollment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("enrollment service: get enrollment: %w", err)
	}
	return &enrollment, nil
}

// ListByCourse returns the enrollments of a course.
func (s *EnrollmentService) ListByCourse(ctx context.Context, courseID uint) ([]models.Enrollment, error) {
	ctx = ensureContext(ctx)

	var enrollments []models.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Scholarship").
		Where("course_id = ?", courseID).
		Order("id").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("enrollment service: list by course: %w", err)
	}
	return enrollments, nil
}

// UpdateScores applies the non-nil score fields to an enrollment.
func (s *EnrollmentService) UpdateScores(ctx context.Context, id uint, input UpdateScoresInput) (*models.Enrollment, error) {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.ProgressScore != nil {
		updates["progress_score"] = *input.ProgressScore
	}
	if input.TestScore != nil {
		updates["test_score"] = *input.TestScore
	}
	if input.FinalScore != nil {
		updates["final_score"] = *input.FinalScore
	}
	if input.Performance != nil {
		updates["performance"] = strings.ToUpper(strings.TrimSpace(*input.Performance))
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Enrollment{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("enrollment service: update scores: %w", err)
		}
	}

	return s.GetByID(ctx, id)
}

// RemoveStudent deletes the enrollment join row and its attendance records.
// Center membership is left untouched.
func (s *EnrollmentService) RemoveStudent(ctx context.Context, courseID, studentID uint) error {
	ctx = ensureContext(ctx)

	var enrollment models.Enrollment
	err := s.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("enrollment service: load enrollment: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("enrollment_id = ?", enrollment.ID).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Enrollment{}, enrollment.ID).Error
	})
}

// ListScholarships returns the scholarship catalogue.
func (s *EnrollmentService) ListScholarships(ctx context.Context) ([]models.Scholarship, error) {
	ctx = ensureContext(ctx)

	var scholarships []models.Scholarship
	if err := s.db.WithContext(ctx).Order("id").Find(&scholarships).Error; err != nil {
		return nil, fmt.Errorf("enrollment service: list scholarships: %w", err)
	}
	return scholarships, nil
}

// CreateScholarship adds a catalogue entry.
func (s *EnrollmentService) CreateScholarship(ctx context.Context, name string, discount float32) (*models.Scholarship, error) {
	ctx = ensureContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequest("scholarship name is required")
	}
	if discount < 0 || discount > 100 {
		return nil, apperrors.NewBadRequest("discount must be between 0 and 100")
	}

	scholarship := models.Scholarship{Name: name, DiscountPercentage: discount}
	if err := s.db.WithContext(ctx).Create(&scholarship).Error; err != nil {
		return nil, fmt.Errorf("enrollment service: create scholarship: %w", err)
	}
	return &scholarship, nil
}
