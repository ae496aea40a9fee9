package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HoldingType represents the asset class of a holding.
type HoldingType string

const (
	HoldingTypeStock       HoldingType = "STOCK"
	HoldingTypeFII         HoldingType = "FII"
	HoldingTypeCrypto      HoldingType = "CRYPTO"
	HoldingTypeFixedIncome HoldingType = "FIXED_INCOME"
)

// Holding is a position in one ticker. AvgPrice is cents per unit; Quantity
// is fractional for crypto.
type Holding struct {
	Base
	UserID   string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Ticker   string          `gorm:"not null" json:"ticker"`
	Name     string          `json:"name"`
	Type     HoldingType     `gorm:"not null" json:"type"`
	Quantity decimal.Decimal `gorm:"type:numeric(20,8);not null" json:"quantity"`
	AvgPrice int64           `gorm:"type:bigint;not null" json:"avg_price"`
}

// BeforeSave normalizes the ticker.
func (h *Holding) BeforeSave(tx *gorm.DB) error {
	h.Ticker = strings.ToUpper(strings.TrimSpace(h.Ticker))
	return nil
}
