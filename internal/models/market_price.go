package models

import (
	"time"

	"cortex/internal/uuid"

	"gorm.io/gorm"
)

// MarketPrice is the latest quote for a ticker, overwritten by each refresh.
// It has no soft deletes.
type MarketPrice struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Ticker     string    `gorm:"uniqueIndex;not null" json:"ticker"`
	Price      int64     `gorm:"type:bigint;not null" json:"price"`
	ChangePct  float64   `gorm:"not null;default:0" json:"change_pct"`
	Source     string    `gorm:"not null" json:"source"`
	RecordedAt time.Time `gorm:"not null" json:"recorded_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (m *MarketPrice) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New()
	}
	return nil
}
