package models

import "time"

// User is a phone-identified account holder. MonthlyIncome is the expected
// income captured during onboarding, in cents.
type User struct {
	Base
	Phone         string        `gorm:"uniqueIndex;not null" json:"phone"`
	Name          string        `json:"name"`
	Email         string        `json:"email,omitempty"`
	MonthlyIncome int64         `gorm:"type:bigint;not null;default:0" json:"monthly_income"`
	IsActive      bool          `gorm:"default:true" json:"is_active"`
	LastLoginAt   *time.Time    `json:"last_login_at,omitempty"`
	Accounts      []Account     `gorm:"foreignKey:UserID" json:"accounts,omitempty"`
	Transactions  []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}
