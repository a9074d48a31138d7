package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/models"
	apperrors "github.com/anhhh1801/Capstone-ECM/pkg/errors"
)

// CenterService manages education centers and their memberships.
type CenterService struct {
	db *gorm.DB
}

// NewCenterService constructs a CenterService instance.
func NewCenterService(db *gorm.DB) (*CenterService, error) {
	if db == nil {
		return nil, errors.New("center service: db is required")
	}
	return &CenterService{db: db}, nil
}

// CreateCenterInput describes a new center.
type CreateCenterInput struct {
	Name        string
	PhoneNumber string
	Description string
	AvatarImg   string
	ManagerID   uint
}

// UpdateCenterInput enumerates mutable center attributes.
type UpdateCenterInput struct {
	Name        *string
	PhoneNumber *string
	Description *string
	AvatarImg   *string
}

// Create provisions a center and connects the manager to it.
func (s *CenterService) Create(ctx context.Context, input CreateCenterInput) (*models.Center, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("center name is required")
	}

	var manager models.User
	if err := s.db.WithContext(ctx).First(&manager, input.ManagerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("center service: load manager: %w", err)
	}

	center := models.Center{
		Name:        name,
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Description: input.Description,
		AvatarImg:   strings.TrimSpace(input.AvatarImg),
		ManagerID:   manager.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&center).Error; err != nil {
			return err
		}
		return tx.Model(&center).Association("Members").Append(&manager)
	})
	if err != nil {
		return nil, fmt.Errorf("center service: create center: %w", err)
	}

	return s.GetByID(ctx, center.ID)
}

// GetByID loads a center with its manager.
func (s *CenterService) GetByID(ctx context.Context, id uint) (*models.Center, error) {
	ctx = ensureContext(ctx)

	var center models.Center
	if err := s.db.WithContext(ctx).Preload("Manager").First(&center, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCenterNotFound
		}
		return nil, fmt.Errorf("center service: get center: %w", err)
	}
	return &center, nil
}

// List returns every center.
func (s *CenterService) List(ctx context.Context) ([]models.Center, error) {
	ctx = ensureContext(ctx)

	var centers []models.Center
	if err := s.db.WithContext(ctx).Preload("Manager").Order("id").Find(&centers).Error; err != nil {
		return nil, fmt.Errorf("center service: list centers: %w", err)
	}
	return centers, nil
}

// ListByManager returns the centers a teacher manages.
func (s *CenterService) ListByManager(ctx context.Context, managerID uint) ([]models.Center, error) {
	ctx = ensureContext(ctx)

	var centers []models.Center
	if err := s.db.WithContext(ctx).Preload("Manager").
		Where("manager_id = ?", managerID).Order("id").Find(&centers).Error; err != nil {
		return nil, fmt.Errorf("center service: list by manager: %w", err)
	}
	return centers, nil
}

// ListTaughtBy returns the centers where the teacher has at least one course.
func (s *CenterService) ListTaughtBy(ctx context.Context, teacherID uint) ([]models.Center, error) {
	ctx = ensureContext(ctx)

	var centers []models.Center
	err := s.db.WithContext(ctx).Preload("Manager").
		Where("id IN (?)", s.db.Model(&models.Course{}).
			Select("center_id").
			Where("teacher_id = ?", teacherID)).
		Order("id").
		Find(&centers).Error
	if err != nil {
		return nil, fmt.Errorf("center service: list taught centers: %w", err)
	}
	return centers, nil
}

// Update applies the non-nil fields to a center.
func (s *CenterService) Update(ctx context.Context, id uint, input UpdateCenterInput) (*models.Center, error) {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("center name cannot be empty")
		}
		updates["name"] = name
	}
	if input.PhoneNumber != nil {
		updates["phone_number"] = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.AvatarImg != nil {
		updates["avatar_img"] = strings.TrimSpace(*input.AvatarImg)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Center{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("center service: update center: %w", err)
		}
	}

	return s.GetByID(ctx, id)
}

// Delete removes a center when nothing depends on it.
func (s *CenterService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	center, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var courseCount int64
	if err := s.db.WithContext(ctx).Model(&models.Course{}).
		Where("center_id = ?", id).Count(&courseCount).Error; err != nil {
		return fmt.Errorf("center service: count courses: %w", err)
	}
	if courseCount > 0 {
		return ErrCenterInUse
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(center).Association("Members").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Center{}, id).Error
	})
}

// Connect adds a user to the center's membership. Repeated connects are no-ops.
func (s *CenterService) Connect(ctx context.Context, centerID, userID uint) error {
	ctx = ensureContext(ctx)

	center, err := s.GetByID(ctx, centerID)
	if err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("center service: load user: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(center).Association("Members").Append(&user); err != nil {
		return fmt.Errorf("center service: connect user: %w", err)
	}
	return nil
}
