package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/models"
	"github.com/anhhh1801/Capstone-ECM/pkg/crypto"
	"github.com/anhhh1801/Capstone-ECM/pkg/logger"
)

// SeedConfig describes the bootstrap admin account created on first start.
type SeedConfig struct {
	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string
}

// AutoMigrate creates or updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.VerificationToken{},
		&models.Center{},
		&models.Course{},
		&models.ClassSlot{},
		&models.Enrollment{},
		&models.Attendance{},
		&models.Scholarship{},
	)
}

// SeedData inserts the built-in roles and the bootstrap admin. It is
// idempotent and safe to run on every start.
func SeedData(db *gorm.DB, seed SeedConfig) error {
	roleIDs := map[string]uint{}
	for _, name := range []string{models.RoleAdmin, models.RoleTeacher, models.RoleStudent} {
		role := models.Role{Name: name}
		if err := db.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
		roleIDs[name] = role.ID
	}

	if seed.AdminEmail == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", seed.AdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("seed admin lookup: %w", err)
	}

	if seed.AdminPassword == "" {
		return errors.New("seed admin requires a password")
	}

	hashed, err := crypto.HashPassword(seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin password: %w", err)
	}

	admin := models.User{
		FirstName:     seed.AdminFirstName,
		LastName:      seed.AdminLastName,
		Email:         seed.AdminEmail,
		PersonalEmail: seed.AdminEmail,
		Password:      hashed,
		Enabled:       true,
		RoleID:        roleIDs[models.RoleAdmin],
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	logger.Info("seeded bootstrap admin account")
	return nil
}
