package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "cortex/internal/errors"
	"cortex/internal/logger"
	"cortex/internal/models"
	"cortex/internal/notify"
)

// DeletionPhrase must be typed back to confirm an account wipe.
const DeletionPhrase = "tenho certeza"

// userService handles user-related business logic.
type userService struct {
	db       *gorm.DB
	accounts AccountServicer
	otp      OTPServicer
	sender   notify.Sender
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, accounts AccountServicer, otp OTPServicer, sender notify.Sender) UserServicer {
	return &userService{db: db, accounts: accounts, otp: otp, sender: sender}
}

// NormalizePhone renders a phone number as "+" followed by digits. WhatsApp
// reports senders without the plus sign.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "+" + b.String()
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByPhone retrieves a user by phone number
func (s *userService) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("phone = ?", NormalizePhone(phone)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetOrCreateByPhone returns the user owning phone, registering it together
// with its default wallet on first contact.
func (s *userService) GetOrCreateByPhone(phone string) (*models.User, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "phone number is required")
	}

	user, err := s.GetUserByPhone(phone)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{Phone: phone, IsActive: true}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		_, err := s.accounts.EnsureDefaultWallet(tx, user.ID)
		return err
	})
	if err != nil {
		// A concurrent first contact may have registered the phone.
		if existing, lookupErr := s.GetUserByPhone(phone); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}

	logger.Get().Infow("Registered user", "user_id", user.ID)
	return user, nil
}

// UpdateProfile sets the onboarding fields.
func (s *userService) UpdateProfile(userID string, fields ProfileUpdate) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.MonthlyIncome != nil {
		if *fields.MonthlyIncome < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "monthly_income cannot be negative")
		}
		updates["monthly_income"] = *fields.MonthlyIncome
	}
	if fields.Name != nil {
		updates["name"] = strings.TrimSpace(*fields.Name)
	}
	if fields.Email != nil {
		updates["email"] = strings.TrimSpace(*fields.Email)
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetUserByID(userID)
}

// RequestDeletion sends a delete_account code to the user. A failed delivery
// is logged; the user can ask again.
func (s *userService) RequestDeletion(ctx context.Context, userID string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	code, err := s.otp.Issue(user.Phone, models.OTPPurposeDeleteAccount)
	if err != nil {
		return err
	}

	msg := notify.Message{
		Phone:   user.Phone,
		Email:   user.Email,
		Subject: "Cortex: exclusão de conta",
		Body: fmt.Sprintf("Cortex: Seu código de verificação para EXCLUSÃO DE CONTA é *%s*.\n\n"+
			"Este código expira em 5 minutos. Se você não solicitou isso, ignore esta mensagem.", code),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		logger.Get().Warnw("Failed to deliver deletion code", "user_id", user.ID, "error", err)
	}
	return nil
}

// ConfirmDeletion checks the phrase and code, then wipes every row the user
// owns in one transaction.
func (s *userService) ConfirmDeletion(userID, code, phrase string) error {
	if strings.ToLower(strings.TrimSpace(phrase)) != DeletionPhrase {
		return apperrors.ErrConfirmationPhrase
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if err := s.otp.Verify(user.Phone, models.OTPPurposeDeleteAccount, code); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		owned := []interface{}{
			&models.AnomalyAlert{},
			&models.Transaction{},
			&models.Budget{},
			&models.Goal{},
			&models.Holding{},
			&models.Account{},
			&models.AuditLog{},
		}
		for _, model := range owned {
			if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(model).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Where("phone = ?", user.Phone).Delete(&models.OTPCode{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Unscoped().Delete(user).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Get().Infow("Wiped user data", "user_id", user.ID)
	return nil
}
