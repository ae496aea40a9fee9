package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Transaction is a signed ledger row: income positive, expense negative.
// Installment purchases are stored as one row per month sharing a GroupID.
type Transaction struct {
	Base
	UserID            string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID         string          `gorm:"type:uuid;not null;index" json:"account_id"`
	Type              TransactionType `gorm:"not null" json:"type"`
	Amount            int64           `gorm:"type:bigint;not null" json:"amount"`
	Category          string          `gorm:"not null;default:'Outros'" json:"category"`
	Description       string          `json:"description"`
	Date              time.Time       `gorm:"not null;index" json:"date"`
	IsCleared         bool            `gorm:"default:false" json:"is_cleared"`
	InstallmentNumber int             `gorm:"not null;default:1" json:"installment_number"`
	InstallmentsCount int             `gorm:"not null;default:1" json:"installments_count"`
	GroupID           *string         `gorm:"type:uuid;index" json:"group_id,omitempty"`
	RawMessage        string          `json:"raw_message,omitempty"`

	IsInstallment   bool   `gorm:"-" json:"is_installment"`
	InstallmentInfo string `gorm:"-" json:"installment_info,omitempty"`

	// Relationships
	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

func (t *Transaction) deriveInstallment() {
	t.IsInstallment = t.InstallmentsCount > 1
	t.InstallmentInfo = ""
	if t.IsInstallment {
		t.InstallmentInfo = fmt.Sprintf("%d/%d", t.InstallmentNumber, t.InstallmentsCount)
	}
}

// AfterFind fills the derived installment fields.
func (t *Transaction) AfterFind(tx *gorm.DB) error {
	t.deriveInstallment()
	return nil
}

// AfterCreate fills the derived installment fields.
func (t *Transaction) AfterCreate(tx *gorm.DB) error {
	t.deriveInstallment()
	return nil
}

// AfterSave keeps the derived fields current after updates.
func (t *Transaction) AfterSave(tx *gorm.DB) error {
	t.deriveInstallment()
	return nil
}
