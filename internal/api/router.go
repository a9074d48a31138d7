package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/app"
	iauth "github.com/anhhh1801/Capstone-ECM/internal/auth"
	"github.com/anhhh1801/Capstone-ECM/internal/handlers"
	"github.com/anhhh1801/Capstone-ECM/internal/middleware"
	"github.com/anhhh1801/Capstone-ECM/internal/services"
	"github.com/anhhh1801/Capstone-ECM/pkg/mail"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, mailer mail.Mailer, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	accounts, err := services.NewAccountService(db, mailer, jwt,
		services.WithOTPTTL(cfg.Auth.OTP.TTL),
		services.WithEmailDomain(cfg.School.EmailDomain),
		services.WithDefaultPassword(cfg.School.DefaultPassword))
	if err != nil {
		return nil, err
	}
	users, err := services.NewUserService(db,
		services.WithUserEmailDomain(cfg.School.EmailDomain),
		services.WithUserDefaultPassword(cfg.School.DefaultPassword))
	if err != nil {
		return nil, err
	}
	centers, err := services.NewCenterService(db)
	if err != nil {
		return nil, err
	}
	courses, err := services.NewCourseService(db)
	if err != nil {
		return nil, err
	}
	enrollments, err := services.NewEnrollmentService(db)
	if err != nil {
		return nil, err
	}
	attendance, err := services.NewAttendanceService(db)
	if err != nil {
		return nil, err
	}
	schedules, err := services.NewScheduleService(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	r.Use(middleware.Identify(jwt))

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	userHandler := handlers.NewUserHandler(accounts, users)
	centerHandler := handlers.NewCenterHandler(centers)
	courseHandler := handlers.NewCourseHandler(courses, enrollments)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollments)
	attendanceHandler := handlers.NewAttendanceHandler(attendance)
	scheduleHandler := handlers.NewScheduleHandler(schedules)

	api := r.Group("/api")

	// Public account lifecycle routes
	api.POST("/users/register-teacher", userHandler.RegisterTeacher)
	api.POST("/users/verify-otp", userHandler.VerifyOTP)
	api.POST("/users/resend-otp", userHandler.ResendOTP)
	api.POST("/users/login", userHandler.Login)

	requireAuth := middleware.RequireAuth()
	requireAdmin := middleware.RequireAdmin()

	// Users
	usersGroup := api.Group("/users", requireAuth)
	{
		usersGroup.GET("/me", userHandler.Me)
		usersGroup.GET("/search", userHandler.SearchStudents)
		usersGroup.POST("/change-password", userHandler.ChangePassword)
		usersGroup.POST("/deactivate", userHandler.Deactivate)
		usersGroup.GET("/:id", userHandler.Get)
		usersGroup.PUT("/:id", userHandler.Update)
	}
	admin := api.Group("/users/admin", requireAuth, requireAdmin)
	{
		admin.GET("/all", userHandler.ListAll)
		admin.GET("/stats", userHandler.Stats)
		admin.POST("/create-student", userHandler.CreateStudent)
		admin.POST("/lock/:id", userHandler.ToggleLock)
		admin.DELETE("/:id", userHandler.Delete)
	}

	// Centers
	centersGroup := api.Group("/centers", requireAuth)
	{
		centersGroup.POST("", requireAdmin, centerHandler.Create)
		centersGroup.GET("", centerHandler.List)
		centersGroup.GET("/:id", centerHandler.Get)
		centersGroup.PUT("/:id", centerHandler.Update)
		centersGroup.DELETE("/:id", requireAdmin, centerHandler.Delete)
		centersGroup.POST("/:id/members/:userId", centerHandler.Connect)
	}

	// Courses
	coursesGroup := api.Group("/courses", requireAuth)
	{
		coursesGroup.POST("", courseHandler.Create)
		coursesGroup.GET("", courseHandler.List)
		coursesGroup.GET("/invitations", courseHandler.PendingInvitations)
		coursesGroup.GET("/:id", courseHandler.Get)
		coursesGroup.PUT("/:id", courseHandler.Update)
		coursesGroup.DELETE("/:id", courseHandler.Delete)
		coursesGroup.POST("/:id/invite", courseHandler.InviteTeacher)
		coursesGroup.POST("/:id/respond", courseHandler.RespondToInvitation)
		coursesGroup.GET("/:id/students", courseHandler.ListStudents)
		coursesGroup.POST("/:id/students", courseHandler.AddStudent)
		coursesGroup.DELETE("/:id/students/:studentId", courseHandler.RemoveStudent)
	}

	// Enrollments and scholarships
	enrollmentsGroup := api.Group("/enrollments", requireAuth)
	{
		enrollmentsGroup.POST("/add-student", enrollmentHandler.AddStudent)
		enrollmentsGroup.GET("/:id", enrollmentHandler.Get)
		enrollmentsGroup.PUT("/:id/scores", enrollmentHandler.UpdateScores)
	}
	scholarships := api.Group("/scholarships", requireAuth)
	{
		scholarships.GET("", enrollmentHandler.ListScholarships)
		scholarships.POST("", requireAdmin, enrollmentHandler.CreateScholarship)
	}

	// Attendance
	attendanceGroup := api.Group("/attendance", requireAuth)
	{
		attendanceGroup.POST("", attendanceHandler.Record)
		attendanceGroup.GET("", attendanceHandler.ListBySlot)
		attendanceGroup.GET("/enrollment/:id", attendanceHandler.ListByEnrollment)
	}

	// Schedules
	scheduleGroup := api.Group("/schedule", requireAuth)
	{
		scheduleGroup.GET("/teacher/:id", scheduleHandler.ForTeacher)
		scheduleGroup.GET("/student/:id", scheduleHandler.ForStudent)
	}

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		endpoint := cfg.Metrics.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
