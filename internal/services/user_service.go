package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/models"
	"github.com/anhhh1801/Capstone-ECM/pkg/crypto"
	apperrors "github.com/anhhh1801/Capstone-ECM/pkg/errors"
)

// UserOption customises the UserService.
type UserOption func(*UserService)

// WithUserEmailDomain sets the domain of generated student addresses.
func WithUserEmailDomain(domain string) UserOption {
	return func(s *UserService) {
		domain = strings.TrimPrefix(strings.TrimSpace(domain), "@")
		if domain != "" {
			s.emailDomain = domain
		}
	}
}

// WithUserDefaultPassword sets the initial password for created students.
func WithUserDefaultPassword(password string) UserOption {
	return func(s *UserService) {
		if password != "" {
			s.defaultPassword = password
		}
	}
}

// UserService covers profile management and the admin-facing account
// operations outside the registration lifecycle.
type UserService struct {
	db              *gorm.DB
	emailDomain     string
	defaultPassword string
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, opts ...UserOption) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	service := &UserService{
		db:              db,
		emailDomain:     defaultEmailDomain,
		defaultPassword: defaultInitialPassword,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// UpdateProfileInput enumerates mutable profile attributes.
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	DateOfBirth *time.Time
	AvatarImg   *string
}

// GetByID loads a user with its role.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).Preload("Role").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: get user: %w", err)
	}
	return &user, nil
}

// ListAll returns every account with its role, admin listing view.
func (s *UserService) ListAll(ctx context.Context) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Role").Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}
	return users, nil
}

// UpdateProfile applies the non-nil fields to the given account.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, input UpdateProfileInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	_, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			return nil, apperrors.NewBadRequest("first name cannot be empty")
		}
		updates["first_name"] = name
	}
	if input.LastName != nil {
		name := strings.TrimSpace(*input.LastName)
		if name == "" {
			return nil, apperrors.NewBadRequest("last name cannot be empty")
		}
		updates["last_name"] = name
	}
	if input.PhoneNumber != nil {
		updates["phone_number"] = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.DateOfBirth != nil {
		updates["date_of_birth"] = *input.DateOfBirth
	}
	if input.AvatarImg != nil {
		updates["avatar_img"] = strings.TrimSpace(*input.AvatarImg)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("user service: update profile: %w", err)
		}
	}

	return s.GetByID(ctx, id)
}

// ChangePassword verifies the old password before installing the new one.
func (s *UserService) ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(newPassword) == "" {
		return apperrors.NewBadRequest("new password cannot be empty")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !crypto.VerifyPassword(user.Password, oldPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("user service: hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("password", hashed).Error; err != nil {
		return fmt.Errorf("user service: change password: %w", err)
	}
	return nil
}

// Deactivate flips the account to disabled. The owner can re-activate via OTP.
func (s *UserService) Deactivate(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("enabled", false).Error; err != nil {
		return fmt.Errorf("user service: deactivate: %w", err)
	}
	return nil
}

// Delete permanently removes an account and its verification code.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}

// CreateStudentInput describes a quick student creation by staff.
type CreateStudentInput struct {
	FirstName     string
	LastName      string
	PersonalEmail string
	PhoneNumber   string
	DateOfBirth   *time.Time
}

// CreateStudent provisions an enabled student account with a generated
// institutional email and the default password.
func (s *UserService) CreateStudent(ctx context.Context, input CreateStudentInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	personalEmail := strings.ToLower(strings.TrimSpace(input.PersonalEmail))
	if firstName == "" || lastName == "" {
		return nil, apperrors.NewBadRequest("first and last name are required")
	}
	if personalEmail == "" {
		return nil, apperrors.NewBadRequest("personal email is required")
	}

	var role models.Role
	if err := s.db.WithContext(ctx).Where("name = ?", models.RoleStudent).First(&role).Error; err != nil {
		return nil, fmt.Errorf("user service: load student role: %w", err)
	}

	hashed, err := crypto.HashPassword(s.defaultPassword)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	var student models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		email, err := nextInstitutionalEmail(ctx, tx, firstName, lastName, s.emailDomain)
		if err != nil {
			return err
		}

		student = models.User{
			FirstName:     firstName,
			LastName:      lastName,
			Email:         email,
			PersonalEmail: personalEmail,
			Password:      hashed,
			PhoneNumber:   strings.TrimSpace(input.PhoneNumber),
			DateOfBirth:   input.DateOfBirth,
			Enabled:       true,
			RoleID:        role.ID,
		}
		return tx.Create(&student).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("user service: create student: %w", err)
	}

	return s.GetByID(ctx, student.ID)
}

// SearchStudents finds students whose name or email contains the keyword.
func (s *UserService) SearchStudents(ctx context.Context, keyword string) ([]models.User, error) {
	ctx = ensureContext(ctx)

	keyword = strings.TrimSpace(keyword)
	query := s.db.WithContext(ctx).
		Preload("Role").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ?", models.RoleStudent)

	if keyword != "" {
		pattern := "%" + strings.ToLower(keyword) + "%"
		query = query.Where(
			"LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ? OR LOWER(users.email) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var students []models.User
	if err := query.Order("users.id").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("user service: search students: %w", err)
	}
	return students, nil
}

// SystemStats summarises the platform for the admin dashboard.
type SystemStats struct {
	Centers  int64 `json:"centers"`
	Courses  int64 `json:"courses"`
	Students int64 `json:"students"`
	Teachers int64 `json:"teachers"`
}

// Stats counts centers, courses and accounts per role.
func (s *UserService) Stats(ctx context.Context) (*SystemStats, error) {
	ctx = ensureContext(ctx)

	var stats SystemStats
	if err := s.db.WithContext(ctx).Model(&models.Center{}).Count(&stats.Centers).Error; err != nil {
		return nil, fmt.Errorf("user service: count centers: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Course{}).Count(&stats.Courses).Error; err != nil {
		return nil, fmt.Errorf("user service: count courses: %w", err)
	}

	countRole := func(role string, dst *int64) error {
		return s.db.WithContext(ctx).Model(&models.User{}).
			Joins("JOIN roles ON roles.id = users.role_id").
			Where("roles.name = ?", role).
			Count(dst).Error
	}
	if err := countRole(models.RoleStudent, &stats.Students); err != nil {
		return nil, fmt.Errorf("user service: count students: %w", err)
	}
	if err := countRole(models.RoleTeacher, &stats.Teachers); err != nil {
		return nil, fmt.Errorf("user service: count teachers: %w", err)
	}

	return &stats, nil
}
