package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/internal/infrastructure/cache"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/sangkips/tillpoint-api/pkg/logger"
	"github.com/sangkips/tillpoint-api/pkg/utils"
)

// ClearConfirmation must be typed verbatim to wipe business data.
const ClearConfirmation = "DELETE ALL DATA"

const (
	otpDigits      = 6
	otpMaxAttempts = 5
	clearLockKey   = "database-clear"
)

// OTPMailer delivers one-time codes
type OTPMailer interface {
	Configured() bool
	SendOTPEmail(to, businessName, otp string, ttl time.Duration) error
}

// DatabaseService guards destructive database operations behind an emailed OTP
type DatabaseService struct {
	adminRepo    repository.AdminRepository
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
	cache        *cache.Cache
	mailer       OTPMailer
	otpTTL       time.Duration
	now          func() time.Time
}

// NewDatabaseService creates a new database administration service
func NewDatabaseService(
	adminRepo repository.AdminRepository,
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	c *cache.Cache,
	mailer OTPMailer,
	otpTTL time.Duration,
) *DatabaseService {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &DatabaseService{
		adminRepo:    adminRepo,
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		cache:        c,
		mailer:       mailer,
		otpTTL:       otpTTL,
		now:          time.Now,
	}
}

// OTPRequest describes where a code was sent
type OTPRequest struct {
	SentTo    string    `json:"sent_to"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RequestOTP issues a fresh code to the requesting admin's email. Only the
// bcrypt hash is stored.
func (s *DatabaseService) RequestOTP(ctx context.Context, userID uuid.UUID) (*OTPRequest, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.HasRole(entity.RoleAdmin) {
		return nil, apperror.ErrForbidden
	}
	if s.mailer == nil || !s.mailer.Configured() {
		return nil, apperror.NewUnprocessableError("Email is not configured; an OTP cannot be delivered")
	}

	code, err := utils.GenerateOTP(otpDigits)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(code)
	if err != nil {
		return nil, err
	}

	otp := &entity.AdminOTP{
		UserID:    user.ID,
		CodeHash:  hash,
		ExpiresAt: s.now().Add(s.otpTTL),
	}
	if err := s.adminRepo.CreateOTP(ctx, otp); err != nil {
		return nil, err
	}

	business := "Tillpoint"
	if settings, err := s.settingsRepo.GetBusiness(ctx); err == nil && settings != nil && settings.BusinessName != "" {
		business = settings.BusinessName
	}
	if err := s.mailer.SendOTPEmail(user.Email, business, code, s.otpTTL); err != nil {
		logger.LogError("database", "RequestOTP", "otp email failed", map[string]any{"user_id": user.ID}, err)
		return nil, apperror.NewBadGatewayError("Failed to send OTP email")
	}

	return &OTPRequest{SentTo: maskEmail(user.Email), ExpiresAt: otp.ExpiresAt}, nil
}

// verifyOTP redeems the admin's newest code. Wrong guesses count against it.
func (s *DatabaseService) verifyOTP(ctx context.Context, userID uuid.UUID, code string) error {
	otp, err := s.adminRepo.LatestOTP(ctx, userID)
	if err != nil {
		return err
	}
	now := s.now()
	if otp == nil || !otp.Usable(now, otpMaxAttempts) {
		return apperror.ErrInvalidOTP
	}
	if !utils.CheckPasswordHash(strings.TrimSpace(code), otp.CodeHash) {
		otp.Attempts++
		if err := s.adminRepo.SaveOTP(ctx, otp); err != nil {
			return err
		}
		return apperror.ErrInvalidOTP
	}
	otp.UsedAt = &now
	return s.adminRepo.SaveOTP(ctx, otp)
}

// Clear wipes all business data after checking the confirmation text and the
// OTP. Only one clear runs at a time; a concurrent request is refused.
func (s *DatabaseService) Clear(ctx context.Context, userID uuid.UUID, code, confirmation string) error {
	if confirmation != ClearConfirmation {
		return apperror.NewValidationError([]apperror.FieldError{{Field: "confirmation", Message: "Type " + ClearConfirmation + " to confirm"}})
	}
	if strings.TrimSpace(code) == "" {
		return apperror.NewValidationError([]apperror.FieldError{{Field: "otp", Message: "OTP is required"}})
	}

	err := s.cache.WithLock(ctx, clearLockKey, 2*time.Minute, func(ctx context.Context) error {
		if err := s.verifyOTP(ctx, userID, code); err != nil {
			return err
		}
		if err := s.adminRepo.ClearBusinessData(ctx); err != nil {
			logger.LogError("database", "Clear", "clear failed", map[string]any{"user_id": userID}, err)
			return apperror.NewAppError(500, "Failed to clear data: "+err.Error())
		}
		return nil
	})
	if errors.Is(err, cache.ErrLockNotObtained) {
		return apperror.ErrServiceBusy
	}
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, stockLevelsKey)
	logger.Get().WithField("user_id", userID).Warn("business data cleared")
	return nil
}

// Stats returns the row count of every business table
func (s *DatabaseService) Stats(ctx context.Context) (map[string]int64, error) {
	return s.adminRepo.TableCounts(ctx)
}

func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || len(local) == 0 {
		return email
	}
	return local[:1] + strings.Repeat("*", max(len(local)-1, 1)) + "@" + domain
}
