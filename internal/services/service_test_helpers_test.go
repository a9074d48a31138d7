package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/anhhh1801/Capstone-ECM/internal/auth"
	"github.com/anhhh1801/Capstone-ECM/internal/database"
	"github.com/anhhh1801/Capstone-ECM/internal/database/testutil"
	"github.com/anhhh1801/Capstone-ECM/internal/models"
	"github.com/anhhh1801/Capstone-ECM/pkg/crypto"
	"github.com/anhhh1801/Capstone-ECM/pkg/mail"
)

const testAdminPassword = "admin123"

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t, testutil.WithSeedData(database.SeedConfig{
		AdminEmail:     "admin@ecm.edu.vn",
		AdminPassword:  testAdminPassword,
		AdminFirstName: "System",
		AdminLastName:  "Admin",
	}))
}

// recordingMailer captures outbound messages for assertions.
type recordingMailer struct {
	messages []mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.messages = append(m.messages, msg)
	return nil
}

func (m *recordingMailer) last(t *testing.T) mail.Message {
	t.Helper()
	require.NotEmpty(t, m.messages)
	return m.messages[len(m.messages)-1]
}

func testJWTService(t *testing.T, clock func() time.Time) *iauth.JWTService {
	t.Helper()
	svc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret: "service-test-secret",
		Clock:  clock,
	})
	require.NoError(t, err)
	return svc
}

func roleID(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	var role models.Role
	require.NoError(t, db.Where("name = ?", name).First(&role).Error)
	return role.ID
}

func createEnabledUser(t *testing.T, db *gorm.DB, role, first, last, email, password string) *models.User {
	t.Helper()
	hashed, err := crypto.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		FirstName:     first,
		LastName:      last,
		Email:         email,
		PersonalEmail: email,
		Password:      hashed,
		Enabled:       true,
		RoleID:        roleID(t, db, role),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTeacher(t *testing.T, db *gorm.DB, first, last, email string) *models.User {
	t.Helper()
	return createEnabledUser(t, db, models.RoleTeacher, first, last, email, "teacher123")
}

func createStudent(t *testing.T, db *gorm.DB, first, last, email string) *models.User {
	t.Helper()
	return createEnabledUser(t, db, models.RoleStudent, first, last, email, "student123")
}

func createCenter(t *testing.T, db *gorm.DB, svc *CenterService, managerID uint, name string) *models.Center {
	t.Helper()
	center, err := svc.Create(context.Background(), CreateCenterInput{
		Name:      name,
		ManagerID: managerID,
	})
	require.NoError(t, err)
	return center
}

func createCourse(t *testing.T, svc *CourseService, centerID, teacherID uint, name string, slots ...ClassSlotInput) *models.Course {
	t.Helper()
	course, err := svc.Create(context.Background(), CreateCourseInput{
		Name:      name,
		Subject:   "Math",
		Grade:     9,
		CenterID:  centerID,
		TeacherID: teacherID,
		Slots:     slots,
	})
	require.NoError(t, err)
	return course
}
