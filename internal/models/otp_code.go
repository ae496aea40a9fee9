package models

import (
	"time"

	"cortex/internal/uuid"

	"gorm.io/gorm"
)

// OTP purposes.
const (
	OTPPurposeLogin         = "login"
	OTPPurposeDeleteAccount = "delete_account"
)

// OTPCode is a single-use one-time password. Only the bcrypt hash is stored.
type OTPCode struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	Phone      string     `gorm:"not null;index:idx_otp_phone_purpose" json:"phone"`
	Purpose    string     `gorm:"not null;index:idx_otp_phone_purpose" json:"purpose"`
	CodeHash   string     `gorm:"not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	Attempts   int        `gorm:"not null;default:0" json:"attempts"`
	CreatedAt  time.Time  `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (o *OTPCode) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New()
	}
	return nil
}
