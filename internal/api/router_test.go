package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/app"
	iauth "github.com/anhhh1801/Capstone-ECM/internal/auth"
	"github.com/anhhh1801/Capstone-ECM/internal/database"
	"github.com/anhhh1801/Capstone-ECM/internal/database/testutil"
	"github.com/anhhh1801/Capstone-ECM/internal/models"
	"github.com/anhhh1801/Capstone-ECM/pkg/mail"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData(database.SeedConfig{
		AdminEmail:     "admin@ecm.edu.vn",
		AdminPassword:  "admin123",
		AdminFirstName: "System",
		AdminLastName:  "Admin",
	}))

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "router-test-secret",
		Issuer:         "ecm-test",
		AccessTokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	mailer, err := mail.NewSMTPMailer(mail.SMTPSettings{Enabled: false})
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Auth.JWT.Secret = "router-test-secret"
	cfg.Auth.OTP.TTL = 10 * time.Minute
	cfg.School.EmailDomain = "ecm.edu.vn"
	cfg.School.DefaultPassword = "ecm123"
	cfg.Metrics.Enabled = true
	cfg.Metrics.Endpoint = "/metrics"

	router, err := NewRouter(db, jwtSvc, mailer, cfg)
	require.NoError(t, err)

	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func loginAs(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()

	rec, env := doJSON(t, router, http.MethodPost, "/api/users/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotEmpty(t, payload.Token)
	return payload.Token
}

func TestRouterHealthIsPublic(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/users/me",
		"/api/centers",
		"/api/courses",
		"/api/schedule/teacher/1",
	} {
		rec, env := doJSON(t, router, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
		require.False(t, env.Success, path)
	}
}

func TestRouterAdminRoutesRejectNonAdmins(t *testing.T) {
	router, db := newTestRouter(t)

	token := registerAndVerifyTeacher(t, router, db, "Nguyễn", "Văn A", "vana@example.com")

	rec, env := doJSON(t, router, http.MethodGet, "/api/users/admin/all", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN", env.Error.Code)
}

// registerAndVerifyTeacher walks the full onboarding flow over HTTP and
// returns a logged-in token for the new teacher.
func registerAndVerifyTeacher(t *testing.T, router *gin.Engine, db *gorm.DB, lastName, firstName, personalEmail string) string {
	t.Helper()

	rec, _ := doJSON(t, router, http.MethodPost, "/api/users/register-teacher", "", gin.H{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      personalEmail,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user models.User
	require.NoError(t, db.Where("personal_email = ?", personalEmail).First(&user).Error)
	require.False(t, user.Enabled)

	var token models.VerificationToken
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&token).Error)

	rec, _ = doJSON(t, router, http.MethodPost, "/api/users/verify-otp", "", gin.H{
		"email": personalEmail,
		"code":  token.Code,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NoError(t, db.First(&user, user.ID).Error)
	require.True(t, user.Enabled)
	require.NotEqual(t, personalEmail, user.Email)

	return loginAs(t, router, user.Email, "ecm123")
}

func TestRouterTeacherOnboardingFlow(t *testing.T) {
	router, db := newTestRouter(t)

	token := registerAndVerifyTeacher(t, router, db, "Đặng", "Thị Hương", "huong@example.com")

	rec, env := doJSON(t, router, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	require.Equal(t, "dangthihuong@ecm.edu.vn", me.Email)
	require.Equal(t, "huong@example.com", me.PersonalEmail)
}

func TestRouterLoginRejectsBadCredentials(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/users/login", "", gin.H{
		"email":    "admin@ecm.edu.vn",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, env.Success)
}

func TestRouterAdminCanManageCentersAndCourses(t *testing.T) {
	router, db := newTestRouter(t)

	adminToken := loginAs(t, router, "admin@ecm.edu.vn", "admin123")
	teacherToken := registerAndVerifyTeacher(t, router, db, "Trần", "Minh", "minh@example.com")

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@ecm.edu.vn").First(&admin).Error)
	var teacher models.User
	require.NoError(t, db.Where("personal_email = ?", "minh@example.com").First(&teacher).Error)

	rec, env := doJSON(t, router, http.MethodPost, "/api/centers", adminToken, gin.H{
		"name":         "District 1 Center",
		"phone_number": "0281234567",
		"manager_id":   admin.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var center models.Center
	require.NoError(t, json.Unmarshal(env.Data, &center))

	rec, env = doJSON(t, router, http.MethodPost, "/api/courses", teacherToken, gin.H{
		"name":       "Algebra 9",
		"subject":    "Math",
		"grade":      9,
		"center_id":  center.ID,
		"teacher_id": teacher.ID,
		"slots": []gin.H{
			{"day_of_week": 2, "start_time": "18:00", "end_time": "19:30", "recurring": true},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var course models.Course
	require.NoError(t, json.Unmarshal(env.Data, &course))

	rec, env = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/courses/%d", course.ID), teacherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched models.Course
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	require.Equal(t, "Algebra 9", fetched.Name)
	require.Len(t, fetched.Slots, 1)

	// Deleting a center with courses attached must be refused.
	rec, env = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/centers/%d", center.ID), adminToken, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.False(t, env.Success)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	metricsRec := httptest.NewRecorder()
	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(metricsRec, metricsReq)
	require.Equal(t, http.StatusOK, metricsRec.Code)
	require.Contains(t, metricsRec.Body.String(), "ecm_api_latency_seconds")
}

func TestRouterUnknownRouteReturnsEnvelope(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.False(t, env.Success)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}
