package models

import (
	"time"

	"cortex/internal/uuid"

	"gorm.io/gorm"
)

// AnomalyAlert records that a flagged transaction has been notified, so the
// scheduled scan alerts at most once per transaction.
type AnomalyAlert struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string    `gorm:"type:uuid;not null;index" json:"user_id"`
	TransactionID string    `gorm:"type:uuid;uniqueIndex;not null" json:"transaction_id"`
	Category      string    `gorm:"not null" json:"category"`
	Amount        int64     `gorm:"type:bigint;not null" json:"amount"`
	Threshold     int64     `gorm:"type:bigint;not null" json:"threshold"`
	NotifiedAt    time.Time `gorm:"not null" json:"notified_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (a *AnomalyAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New()
	}
	return nil
}
