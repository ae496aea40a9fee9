package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "cortex/internal/errors"
	"cortex/internal/logger"
	"cortex/internal/models"
	"cortex/internal/notify"
)

// authService implements passwordless login over WhatsApp codes.
type authService struct {
	db     *gorm.DB
	users  UserServicer
	otp    OTPServicer
	sender notify.Sender
}

// NewAuthService creates a new AuthServicer.
func NewAuthService(db *gorm.DB, users UserServicer, otp OTPServicer, sender notify.Sender) AuthServicer {
	return &authService{db: db, users: users, otp: otp, sender: sender}
}

// RequestOTP issues a login code and sends it to the phone. Delivery
// failures are logged: WhatsApp only delivers inside the 24h window opened by
// the user, so the caller is told to message the bot and retry.
func (s *authService) RequestOTP(ctx context.Context, phone string) error {
	phone = NormalizePhone(phone)
	if phone == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "phone_number is required")
	}

	code, err := s.otp.Issue(phone, models.OTPPurposeLogin)
	if err != nil {
		return err
	}

	msg := notify.Message{
		Phone: phone,
		Body:  fmt.Sprintf("🔐 Seu código de acesso ao Cortex: *%s*\n\nNão compartilhe com ninguém.", code),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		logger.Get().Warnw("Failed to deliver login code", "error", err)
	}
	return nil
}

// VerifyOTP consumes the login code and returns the user, registering it on
// first login.
func (s *authService) VerifyOTP(phone, code string) (*models.User, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "phone_number is required")
	}
	if err := s.otp.Verify(phone, models.OTPPurposeLogin, code); err != nil {
		return nil, err
	}

	user, err := s.users.GetOrCreateByPhone(phone)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.db.Model(user).Update("last_login_at", now).Error; err != nil {
		logger.Get().Warnw("Failed to record login time", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}
	return user, nil
}
