package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/models"
	"github.com/anhhh1801/Capstone-ECM/pkg/crypto"
)

func openMigrated(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	// The shared-cache DSN keeps the database alive while any connection
	// is open, so each test must close its pool to start clean.
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestSeedDataCreatesRolesAndAdmin(t *testing.T) {
	db := openMigrated(t)

	seed := SeedConfig{
		AdminEmail:     "admin@ecm.edu.vn",
		AdminPassword:  "changeme",
		AdminFirstName: "System",
		AdminLastName:  "Admin",
	}
	require.NoError(t, SeedData(db, seed))

	var roles []models.Role
	require.NoError(t, db.Find(&roles).Error)
	assert.Len(t, roles, 3)

	var admin models.User
	require.NoError(t, db.Preload("Role").Where("email = ?", seed.AdminEmail).First(&admin).Error)
	assert.True(t, admin.Enabled)
	assert.Equal(t, models.RoleAdmin, admin.Role.Name)
	assert.True(t, crypto.VerifyPassword(admin.Password, "changeme"))
}

func TestSeedDataIsIdempotent(t *testing.T) {
	db := openMigrated(t)

	seed := SeedConfig{AdminEmail: "admin@ecm.edu.vn", AdminPassword: "changeme"}
	require.NoError(t, SeedData(db, seed))
	require.NoError(t, SeedData(db, seed))

	var roleCount, userCount int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roleCount).Error)
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 3, roleCount)
	assert.EqualValues(t, 1, userCount)
}

func TestSeedDataSkipsAdminWithoutEmail(t *testing.T) {
	db := openMigrated(t)

	require.NoError(t, SeedData(db, SeedConfig{}))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Zero(t, userCount)
}
