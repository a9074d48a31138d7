package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/database"
	"github.com/anhhh1801/Capstone-ECM/internal/database/testutil"
	"github.com/anhhh1801/Capstone-ECM/internal/models"
	"github.com/anhhh1801/Capstone-ECM/internal/services"
)

func seedUnverifiedRegistration(t *testing.T, db *gorm.DB, email string, expiresAt, createdAt time.Time) uint {
	t.Helper()

	var role models.Role
	require.NoError(t, db.Where("name = ?", models.RoleTeacher).First(&role).Error)

	user := models.User{
		FirstName:     "Văn A",
		LastName:      "Nguyễn",
		Email:         email,
		PersonalEmail: email,
		Password:      "placeholder",
		Enabled:       false,
		RoleID:        role.ID,
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Model(&user).Update("created_at", createdAt).Error)
	require.NoError(t, db.Create(&models.VerificationToken{
		Code:      "123456",
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}).Error)
	return user.ID
}

func newCleanerFixture(t *testing.T, clock time.Time, opts ...Option) (*gorm.DB, *Cleaner) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData(database.SeedConfig{}))

	accounts, err := services.NewAccountService(db, nil, nil,
		services.WithAccountClock(func() time.Time { return clock }))
	require.NoError(t, err)

	return db, NewCleaner(accounts, opts...)
}

func TestRunOncePurgesExpiredRegistrations(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	db, cleaner := newCleanerFixture(t, now)

	expiredID := seedUnverifiedRegistration(t, db, "expired@gmail.com", now.Add(-time.Minute), now.Add(-time.Hour))
	liveID := seedUnverifiedRegistration(t, db, "live@gmail.com", now.Add(time.Hour), now.Add(-time.Hour))

	require.NoError(t, cleaner.RunOnce(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", expiredID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", liveID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRunOnceRetainPolicy(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	db, cleaner := newCleanerFixture(t, now,
		WithPolicy(PolicyRetain),
		WithRetention(24*time.Hour),
	)

	// Expired code but still inside the retention window: retained.
	recentID := seedUnverifiedRegistration(t, db, "recent@gmail.com", now.Add(-time.Minute), now.Add(-time.Hour))
	// Older than the window: purged even with a live code.
	oldID := seedUnverifiedRegistration(t, db, "old@gmail.com", now.Add(time.Hour), now.Add(-25*time.Hour))

	require.NoError(t, cleaner.RunOnce(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", recentID).Count(&count).Error)
	require.EqualValues(t, 1, count)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", oldID).Count(&count).Error)
	require.Zero(t, count)
}

func TestCleanerStartAndStop(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	_, cleaner := newCleanerFixture(t, now, WithSchedule("@every 1h"))

	require.NoError(t, cleaner.Start())
	<-cleaner.Stop().Done()
}

func TestCleanerWithoutAccountsIsInert(t *testing.T) {
	cleaner := NewCleaner(nil)
	require.NoError(t, cleaner.Start())
	require.NoError(t, cleaner.RunOnce(context.Background()))
	<-cleaner.Stop().Done()
}
