package services

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "cortex/internal/errors"
	"cortex/internal/finance"
	"cortex/internal/logger"
	"cortex/internal/models"
	"cortex/internal/notify"
)

const alertSubject = "Cortex: conta acima do normal"

type alertService struct {
	db     *gorm.DB
	sender notify.Sender
}

// NewAlertService creates a new AlertServicer.
func NewAlertService(db *gorm.DB, sender notify.Sender) AlertServicer {
	return &alertService{db: db, sender: sender}
}

// ScanAnomalies runs anomaly detection for every active user. Each flagged
// transaction is recorded and notified once; later scans skip it.
func (s *alertService) ScanAnomalies(ctx context.Context, now time.Time) (*ScanResult, error) {
	now = now.UTC()
	var users []models.User
	if err := s.db.Where("is_active = ?", true).Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &ScanResult{}
	for i := range users {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Users++
		if err := s.scanUser(ctx, &users[i], now, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (s *alertService) scanUser(ctx context.Context, user *models.User, now time.Time, result *ScanResult) error {
	entries, err := loadEntries(s.db, user.ID, now.AddDate(0, 0, -finance.AnomalyLookbackDays), now)
	if err != nil {
		return err
	}

	for _, a := range finance.DetectAnomalies(entries, now) {
		alert := models.AnomalyAlert{
			UserID:        user.ID,
			TransactionID: a.TransactionID,
			Category:      a.Category,
			Amount:        a.LatestValue,
			Threshold:     a.Threshold,
			NotifiedAt:    now,
		}
		created := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoNothing: true,
		}).Create(&alert)
		if created.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, created.Error)
		}
		if created.RowsAffected == 0 {
			continue
		}
		result.Flagged++

		msg := notify.Message{
			Phone:   user.Phone,
			Email:   user.Email,
			Subject: alertSubject,
			Body:    "⚠️ " + a.Message,
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			logger.Get().Warnw("anomaly alert delivery failed", "user_id", user.ID, "transaction_id", a.TransactionID, "error", err)
			continue
		}
		result.Notified++
	}
	return nil
}
