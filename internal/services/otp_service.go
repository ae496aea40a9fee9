package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "cortex/internal/errors"
	"cortex/internal/models"
)

const otpDigits = 6

// otpService stores bcrypt hashes of one-time codes.
type otpService struct {
	db          *gorm.DB
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

// NewOTPService creates a new OTPServicer. Codes live for ttl and lock after
// maxAttempts wrong guesses.
func NewOTPService(db *gorm.DB, ttl time.Duration, maxAttempts int) OTPServicer {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &otpService{db: db, ttl: ttl, maxAttempts: maxAttempts, now: time.Now}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// Issue creates a fresh code for (phone, purpose), retiring any code still
// outstanding. The plain code is returned for delivery and never stored.
func (s *otpService) Issue(phone, purpose string) (string, error) {
	if phone == "" || purpose == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "phone and purpose are required")
	}

	code, err := generateCode()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OTPCode{}).
			Where("phone = ? AND purpose = ? AND consumed_at IS NULL", phone, purpose).
			Update("consumed_at", now).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		otp := &models.OTPCode{
			Phone:     phone,
			Purpose:   purpose,
			CodeHash:  string(hash),
			ExpiresAt: now.Add(s.ttl),
		}
		if err := tx.Create(otp).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// Verify consumes the outstanding code for (phone, purpose). Wrong guesses
// count towards the attempt cap.
func (s *otpService) Verify(phone, purpose, code string) error {
	if code == "" {
		return apperrors.ErrInvalidOTP
	}

	var otp models.OTPCode
	err := s.db.Where("phone = ? AND purpose = ? AND consumed_at IS NULL", phone, purpose).
		Order("created_at DESC, id DESC").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidOTP
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.now().UTC()
	if now.After(otp.ExpiresAt) {
		return apperrors.ErrOTPExpired
	}
	if otp.Attempts >= s.maxAttempts {
		return apperrors.ErrOTPLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		if err := s.db.Model(&otp).Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return apperrors.ErrInvalidOTP
	}

	// Conditional update so a code cannot be consumed twice concurrently.
	res := s.db.Model(&models.OTPCode{}).
		Where("id = ? AND consumed_at IS NULL", otp.ID).
		Update("consumed_at", now)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrInvalidOTP
	}
	return nil
}
