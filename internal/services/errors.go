package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/anhhh1801/Capstone-ECM/pkg/errors"
)

var (
	// ErrPendingVerification signals a registration that still awaits its OTP.
	ErrPendingVerification = apperrors.New("PENDING_VERIFICATION", "Account is pending verification, check your email for the code", http.StatusConflict)
	// ErrEmailInUse indicates the personal email already belongs to an active account.
	ErrEmailInUse = apperrors.New("EMAIL_IN_USE", "Email is already registered", http.StatusConflict)
	// ErrEmailDisabledReRegister rejects re-registration of a deactivated account.
	ErrEmailDisabledReRegister = apperrors.New("EMAIL_DISABLED_REREGISTER", "Account exists but is deactivated, contact an administrator", http.StatusConflict)
	// ErrUnknownEmail indicates no account matches the given email.
	ErrUnknownEmail = apperrors.New("UNKNOWN_EMAIL", "No account found for this email", http.StatusNotFound)
	// ErrAlreadyVerified rejects OTP operations on an already enabled account.
	ErrAlreadyVerified = apperrors.New("ALREADY_VERIFIED", "Account is already verified", http.StatusConflict)
	// ErrInvalidOTP covers wrong, expired and absent verification codes.
	ErrInvalidOTP = apperrors.New("OTP_INVALID_OR_EXPIRED", "Verification code is invalid or has expired", http.StatusBadRequest)
	// ErrAccountLocked is terminal until an admin unlocks the account.
	ErrAccountLocked = apperrors.New("ACCOUNT_LOCKED", "Account is locked", http.StatusForbidden)
	// ErrAccountDeactivated indicates an unverified account with no live code.
	ErrAccountDeactivated = apperrors.New("ACCOUNT_DEACTIVATED", "Account is deactivated, a new verification code has been sent", http.StatusForbidden)
	// ErrNotAdmin rejects admin-only operations.
	ErrNotAdmin = apperrors.New("NOT_ADMIN", "Administrator role required", http.StatusForbidden)
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrCenterNotFound indicates the requested center does not exist.
	ErrCenterNotFound = apperrors.New("CENTER_NOT_FOUND", "Center not found", http.StatusNotFound)
	// ErrCourseNotFound indicates the requested course does not exist.
	ErrCourseNotFound = apperrors.New("COURSE_NOT_FOUND", "Course not found", http.StatusNotFound)
	// ErrAlreadyEnrolled rejects a duplicate enrollment of a student in a course.
	ErrAlreadyEnrolled = apperrors.New("ALREADY_ENROLLED", "Student is already enrolled in this course", http.StatusConflict)
	// ErrNotEnrolled indicates an attendance record for a student who is not enrolled.
	ErrNotEnrolled = apperrors.New("NOT_ENROLLED", "Student is not enrolled in this course", http.StatusBadRequest)
	// ErrCenterInUse refuses deletion of a center with dependent records.
	ErrCenterInUse = apperrors.New("CENTER_IN_USE", "Center still has courses or members", http.StatusConflict)
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}
