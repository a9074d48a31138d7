package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	iauth "github.com/anhhh1801/Capstone-ECM/internal/auth"
	"github.com/anhhh1801/Capstone-ECM/internal/models"
	"github.com/anhhh1801/Capstone-ECM/pkg/crypto"
	apperrors "github.com/anhhh1801/Capstone-ECM/pkg/errors"
	"github.com/anhhh1801/Capstone-ECM/pkg/logger"
	"github.com/anhhh1801/Capstone-ECM/pkg/mail"
	"github.com/anhhh1801/Capstone-ECM/pkg/metrics"
)

const (
	defaultEmailDomain     = "ecm.edu.vn"
	defaultInitialPassword = "ecm123"
)

// AccountOption customises the AccountService.
type AccountOption func(*AccountService)

// WithAccountClock injects a custom time source.
func WithAccountClock(clock func() time.Time) AccountOption {
	return func(s *AccountService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithOTPTTL overrides the verification code lifetime.
func WithOTPTTL(d time.Duration) AccountOption {
	return func(s *AccountService) {
		if d > 0 {
			s.otpTTL = d
		}
	}
}

// WithEmailDomain sets the domain of generated institutional addresses.
func WithEmailDomain(domain string) AccountOption {
	return func(s *AccountService) {
		domain = strings.TrimPrefix(strings.TrimSpace(domain), "@")
		if domain != "" {
			s.emailDomain = domain
		}
	}
}

// WithDefaultPassword sets the initial password handed out on activation.
func WithDefaultPassword(password string) AccountOption {
	return func(s *AccountService) {
		if password != "" {
			s.defaultPassword = password
		}
	}
}

// AccountService manages the teacher registration lifecycle: OTP-gated
// onboarding, login, locking and purge of abandoned registrations.
type AccountService struct {
	db              *gorm.DB
	mailer          mail.Mailer
	jwt             *iauth.JWTService
	emailDomain     string
	defaultPassword string
	otpTTL          time.Duration
	now             func() time.Time
}

// NewAccountService constructs an AccountService with the provided dependencies.
func NewAccountService(db *gorm.DB, mailer mail.Mailer, jwt *iauth.JWTService, opts ...AccountOption) (*AccountService, error) {
	if db == nil {
		return nil, errors.New("account service: db is required")
	}

	service := &AccountService{
		db:              db,
		mailer:          mailer,
		jwt:             jwt,
		emailDomain:     defaultEmailDomain,
		defaultPassword: defaultInitialPassword,
		otpTTL:          DefaultOTPTTL,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// RegisterTeacherInput describes a teacher self-registration request.
type RegisterTeacherInput struct {
	FirstName     string
	LastName      string
	PersonalEmail string
}

// RegisterTeacher creates a disabled teacher account and mails it a
// verification code. Registration against an email that already has an
// account reports the state of that account instead.
func (s *AccountService) RegisterTeacher(ctx context.Context, input RegisterTeacherInput) (string, error) {
	ctx = ensureContext(ctx)

	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := strings.ToLower(strings.TrimSpace(input.PersonalEmail))
	if firstName == "" || lastName == "" {
		return "", errors.New("account service: first and last name are required")
	}
	if email == "" {
		return "", errors.New("account service: email is required")
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("personal_email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		return "", s.classifyExistingRegistration(ctx, &existing)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", fmt.Errorf("account service: lookup registration: %w", err)
	}

	role, err := s.roleByName(ctx, models.RoleTeacher)
	if err != nil {
		return "", err
	}

	// The placeholder password is never disclosed; it only keeps the
	// account unusable until verification replaces it.
	placeholder, err := crypto.HashPassword(uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("account service: placeholder password: %w", err)
	}

	user := models.User{
		FirstName:     firstName,
		LastName:      lastName,
		Email:         email,
		PersonalEmail: email,
		Password:      placeholder,
		Enabled:       false,
		RoleID:        role.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		_, err := s.replaceOTP(tx, user.ID)
		return err
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return "", ErrEmailInUse
		}
		return "", fmt.Errorf("account service: register teacher: %w", err)
	}

	s.sendOTPMail(ctx, &user)

	return "Registration received, a verification code has been sent to " + email, nil
}

// classifyExistingRegistration maps an existing account to the registration
// conflict it represents.
func (s *AccountService) classifyExistingRegistration(ctx context.Context, user *models.User) error {
	if user.Enabled {
		return ErrEmailInUse
	}

	token, err := s.tokenForUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if token != nil && token.Live(s.now()) {
		return ErrPendingVerification
	}
	return ErrEmailDisabledReRegister
}

// VerifyOTP consumes a verification code. The first successful verification
// activates the account, assigns its institutional login email and the
// default password, and mails the credentials. Later verifications of a
// deactivated account only re-enable it.
func (s *AccountService) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)

	user, err := s.userByPersonalEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user.Enabled {
		return "", ErrAlreadyVerified
	}

	token, err := s.tokenForUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if token == nil || !token.Live(s.now()) || token.Code != code {
		metrics.OTPVerifications.WithLabelValues("failure").Inc()
		return "", ErrInvalidOTP
	}

	firstActivation := user.Email == user.PersonalEmail

	var loginEmail, initialPassword string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"enabled": true}

		if firstActivation {
			generated, err := nextInstitutionalEmail(ctx, tx, user.FirstName, user.LastName, s.emailDomain)
			if err != nil {
				return err
			}
			hashed, err := crypto.HashPassword(s.defaultPassword)
			if err != nil {
				return fmt.Errorf("hash default password: %w", err)
			}
			loginEmail = generated
			initialPassword = s.defaultPassword
			updates["email"] = generated
			updates["password"] = hashed
		}

		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.ID).Delete(&models.VerificationToken{}).Error
	})
	if err != nil {
		return "", fmt.Errorf("account service: verify otp: %w", err)
	}

	metrics.OTPVerifications.WithLabelValues("success").Inc()

	if firstActivation {
		s.sendCredentialsMail(ctx, user, loginEmail, initialPassword)
		return "Account verified, login credentials have been sent to " + user.PersonalEmail, nil
	}
	return "Account re-activated", nil
}

// ResendOTP replaces the outstanding verification code and mails the new one.
func (s *AccountService) ResendOTP(ctx context.Context, email string) (string, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userByPersonalEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user.Enabled {
		return "", ErrAlreadyVerified
	}

	if _, err := s.replaceOTP(s.db.WithContext(ctx), user.ID); err != nil {
		return "", fmt.Errorf("account service: resend otp: %w", err)
	}

	s.sendOTPMail(ctx, user)

	return "A new verification code has been sent to " + email, nil
}

// Login authenticates against the institutional login email and returns a
// signed session token. An unverified account with no live code gets a fresh
// code mailed before the deactivated error is returned.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("account service: login lookup: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return "", nil, apperrors.ErrInvalidCredentials
	}

	if user.Locked {
		metrics.AuthAttempts.WithLabelValues("locked").Inc()
		return "", nil, ErrAccountLocked
	}

	if !user.Enabled {
		metrics.AuthAttempts.WithLabelValues("unverified").Inc()

		token, err := s.tokenForUser(ctx, user.ID)
		if err != nil {
			return "", nil, err
		}
		if token != nil && token.Live(s.now()) {
			return "", nil, ErrPendingVerification
		}

		// Deactivated account, give it a path back in.
		if _, err := s.replaceOTP(s.db.WithContext(ctx), user.ID); err != nil {
			return "", nil, fmt.Errorf("account service: reissue otp: %w", err)
		}
		s.sendOTPMail(ctx, &user)
		return "", nil, ErrAccountDeactivated
	}

	if s.jwt == nil {
		return "", nil, errors.New("account service: jwt service not configured")
	}

	signed, err := s.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role.Name,
	})
	if err != nil {
		return "", nil, fmt.Errorf("account service: issue token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return signed, &user, nil
}

// ToggleLock flips the lock flag on the target account. Only admins may call it.
func (s *AccountService) ToggleLock(ctx context.Context, actingAdminID, targetUserID uint) (string, error) {
	ctx = ensureContext(ctx)

	var actor models.User
	if err := s.db.WithContext(ctx).Preload("Role").First(&actor, actingAdminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotAdmin
		}
		return "", fmt.Errorf("account service: load actor: %w", err)
	}
	if actor.Role.Name != models.RoleAdmin {
		return "", ErrNotAdmin
	}

	var target models.User
	if err := s.db.WithContext(ctx).First(&target, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("account service: load target: %w", err)
	}

	target.Locked = !target.Locked
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", target.ID).
		Update("locked", target.Locked).Error; err != nil {
		return "", fmt.Errorf("account service: toggle lock: %w", err)
	}

	if target.Locked {
		return fmt.Sprintf("Account %d is now locked", target.ID), nil
	}
	return fmt.Sprintf("Account %d is now unlocked", target.ID), nil
}

// PurgeUnverified removes expired verification codes together with the
// still-unverified accounts that own them. The account state is re-read
// right before deletion so a verification that lands mid-purge survives.
func (s *AccountService) PurgeUnverified(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	now := s.now()

	var expired []models.VerificationToken
	if err := s.db.WithContext(ctx).Where("expires_at <= ?", now).Find(&expired).Error; err != nil {
		return 0, fmt.Errorf("account service: list expired codes: %w", err)
	}

	purged := 0
	for _, token := range expired {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&models.VerificationToken{}, token.ID).Error; err != nil {
				return err
			}

			var user models.User
			if err := tx.First(&user, token.UserID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			if user.Enabled {
				return nil
			}

			if err := tx.Delete(&models.User{}, user.ID).Error; err != nil {
				return err
			}
			purged++
			return nil
		})
		if err != nil {
			return purged, fmt.Errorf("account service: purge account %d: %w", token.UserID, err)
		}
	}

	if purged > 0 {
		metrics.PurgedAccounts.Add(float64(purged))
		logger.WithModule("accounts").Info("purged abandoned registrations", zap.Int("count", purged))
	}
	return purged, nil
}

// PurgeStale removes every unverified account older than the retention
// window, regardless of code state. It is the stricter alternative policy.
func (s *AccountService) PurgeStale(ctx context.Context, retention time.Duration) (int, error) {
	ctx = ensureContext(ctx)
	cutoff := s.now().Add(-retention)

	var stale []models.User
	if err := s.db.WithContext(ctx).
		Where("enabled = ? AND created_at <= ?", false, cutoff).
		Find(&stale).Error; err != nil {
		return 0, fmt.Errorf("account service: list stale accounts: %w", err)
	}

	purged := 0
	for _, user := range stale {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var current models.User
			if err := tx.First(&current, user.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			if current.Enabled {
				return nil
			}
			if err := tx.Where("user_id = ?", current.ID).Delete(&models.VerificationToken{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.User{}, current.ID).Error; err != nil {
				return err
			}
			purged++
			return nil
		})
		if err != nil {
			return purged, fmt.Errorf("account service: purge stale account %d: %w", user.ID, err)
		}
	}

	if purged > 0 {
		metrics.PurgedAccounts.Add(float64(purged))
		logger.WithModule("accounts").Info("purged stale registrations", zap.Int("count", purged))
	}
	return purged, nil
}

func (s *AccountService) userByPersonalEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, ErrUnknownEmail
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("personal_email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownEmail
		}
		return nil, fmt.Errorf("account service: lookup user: %w", err)
	}
	return &user, nil
}

func (s *AccountService) tokenForUser(ctx context.Context, userID uint) (*models.VerificationToken, error) {
	var token models.VerificationToken
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("account service: load code: %w", err)
	}
	return &token, nil
}

// replaceOTP deletes any outstanding code and issues a fresh one, keeping at
// most one live code per account.
func (s *AccountService) replaceOTP(tx *gorm.DB, userID uint) (string, error) {
	code, err := generateOTPCode()
	if err != nil {
		return "", err
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.VerificationToken{}).Error; err != nil {
		return "", err
	}

	token := models.VerificationToken{
		Code:      code,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.otpTTL),
	}
	if err := tx.Create(&token).Error; err != nil {
		return "", err
	}
	return code, nil
}

// sendOTPMail mails the outstanding code to the personal address. Delivery
// failures are logged and swallowed so registration never fails on mail.
func (s *AccountService) sendOTPMail(ctx context.Context, user *models.User) {
	if s.mailer == nil {
		return
	}

	token, err := s.tokenForUser(ctx, user.ID)
	if err != nil || token == nil {
		return
	}

	message := mail.Message{
		To:      []string{user.PersonalEmail},
		Subject: "Your ECM verification code",
		Body: fmt.Sprintf("Hello %s,\n\nYour verification code is %s. It expires in %d minutes.\n\nIf you did not register, you can ignore this message.\n",
			user.FullName(), token.Code, int(s.otpTTL.Minutes())),
	}
	if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		logger.WithModule("accounts").Warn("send verification code", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

func (s *AccountService) sendCredentialsMail(ctx context.Context, user *models.User, loginEmail, password string) {
	if s.mailer == nil {
		return
	}

	message := mail.Message{
		To:      []string{user.PersonalEmail},
		Subject: "Your ECM account is ready",
		Body: fmt.Sprintf("Hello %s,\n\nYour account has been activated.\n\nLogin email: %s\nPassword: %s\n\nPlease change your password after your first login.\n",
			user.FullName(), loginEmail, password),
	}
	if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		logger.WithModule("accounts").Warn("send credentials", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

func (s *AccountService) roleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, fmt.Errorf("account service: load role %s: %w", name, err)
	}
	return &role, nil
}
