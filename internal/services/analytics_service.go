package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "cortex/internal/errors"
	"cortex/internal/finance"
)

type analyticsService struct {
	db      *gorm.DB
	horizon int
}

// NewAnalyticsService creates a new AnalyticsServicer projecting horizon
// months ahead.
func NewAnalyticsService(db *gorm.DB, horizon int) AnalyticsServicer {
	if horizon < 1 {
		horizon = finance.DefaultForecastHorizon
	}
	return &analyticsService{db: db, horizon: horizon}
}

// history returns the trailing cashflow window ending at now.
func (s *analyticsService) history(userID string, now time.Time) ([]finance.MonthlyFlow, error) {
	from := finance.StartOfMonth(now).AddDate(0, -(finance.DefaultHistoryMonths - 1), 0)
	entries, err := loadEntries(s.db, userID, from, now)
	if err != nil {
		return nil, err
	}
	return finance.MonthlyCashflow(entries, now, finance.DefaultHistoryMonths), nil
}

// Cashflow returns income, expenses and net per active month.
func (s *analyticsService) Cashflow(userID string, now time.Time) ([]finance.MonthlyFlow, error) {
	return s.history(userID, now.UTC())
}

// Forecast projects the combined balance of all accounts.
func (s *analyticsService) Forecast(userID string, now time.Time) (*finance.Forecast, error) {
	now = now.UTC()
	history, err := s.history(userID, now)
	if err != nil {
		return nil, err
	}
	current, err := totalBalance(s.db, userID)
	if err != nil {
		return nil, err
	}
	forecast := finance.ProjectBalance(history, current, s.horizon, now)
	return &forecast, nil
}

// Anomalies flags recurring bills that came in well above their history.
func (s *analyticsService) Anomalies(userID string, now time.Time) ([]finance.Anomaly, error) {
	now = now.UTC()
	entries, err := loadEntries(s.db, userID, now.AddDate(0, 0, -finance.AnomalyLookbackDays), now)
	if err != nil {
		return nil, err
	}
	anomalies := finance.DetectAnomalies(entries, now)
	if anomalies == nil {
		anomalies = []finance.Anomaly{}
	}
	return anomalies, nil
}

// Simulate projects the balance with and without a hypothetical purchase.
func (s *analyticsService) Simulate(userID string, sc finance.Scenario, now time.Time) (*finance.Simulation, error) {
	sc.Description = strings.TrimSpace(sc.Description)
	if sc.Total <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total_amount must be positive")
	}
	if sc.Installments == 0 {
		sc.Installments = 1
	}

	now = now.UTC()
	history, err := s.history(userID, now)
	if err != nil {
		return nil, err
	}
	current, err := totalBalance(s.db, userID)
	if err != nil {
		return nil, err
	}

	sim, err := finance.Simulate(history, current, sc, now)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return &sim, nil
}
