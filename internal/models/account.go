package models

import (
	"gorm.io/gorm"
)

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeCredit     AccountType = "CREDIT"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeCash       AccountType = "CASH"
)

// DefaultWalletName is the CASH account transactions fall back to.
const DefaultWalletName = "Carteira"

// Account is where money lives. CurrentBalance is maintained incrementally by
// every transaction write and always equals InitialBalance plus the signed
// amounts referencing the account. A CREDIT account carries a non-positive
// balance while money is owed.
type Account struct {
	Base
	UserID         string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string      `gorm:"not null" json:"name"`
	Type           AccountType `gorm:"not null" json:"type"`
	InitialBalance int64       `gorm:"type:bigint;not null;default:0" json:"initial_balance"`
	CurrentBalance int64       `gorm:"type:bigint;not null;default:0" json:"current_balance"`
	IsDefault      bool        `gorm:"default:false" json:"is_default"`

	// For credit accounts
	CreditLimit *int64 `gorm:"type:bigint" json:"credit_limit,omitempty"`
	ClosingDay  *int   `json:"closing_day,omitempty"`
	DueDay      *int   `json:"due_day,omitempty"`
}

// IsCredit reports whether the account follows a billing cycle.
func (a *Account) IsCredit() bool {
	return a.Type == AccountTypeCredit
}

// BeforeCreate clears credit fields on non-credit accounts and seeds the
// running balance from the opening amount.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if err := a.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if a.Type != AccountTypeCredit {
		a.CreditLimit = nil
		a.ClosingDay = nil
		a.DueDay = nil
	}
	if a.CurrentBalance == 0 {
		a.CurrentBalance = a.InitialBalance
	}
	return nil
}
