package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "cortex/internal/errors"
	"cortex/internal/finance"
	"cortex/internal/models"
)

type dashboardService struct {
	db           *gorm.DB
	users        UserServicer
	transactions TransactionServicer
	thresholds   finance.BurnThresholds
	horizon      int
}

// NewDashboardService creates a new DashboardServicer. horizon is the number
// of months the commitment mountain covers.
func NewDashboardService(db *gorm.DB, users UserServicer, transactions TransactionServicer, thresholds finance.BurnThresholds, horizon int) DashboardServicer {
	if horizon < 1 {
		horizon = 12
	}
	return &dashboardService{
		db:           db,
		users:        users,
		transactions: transactions,
		thresholds:   thresholds,
		horizon:      horizon,
	}
}

// GetHUD computes safe-to-spend and burn rate for the month containing now.
func (s *dashboardService) GetHUD(userID string, now time.Time) (*finance.HUD, error) {
	now = now.UTC()
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	start := finance.StartOfMonth(now)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	entries, err := loadEntries(s.db, userID, start, end)
	if err != nil {
		return nil, err
	}

	in := finance.HUDInput{
		Now:            now,
		ExpectedIncome: user.MonthlyIncome,
		Thresholds:     s.thresholds,
	}
	for _, e := range entries {
		switch {
		case e.Kind == finance.KindIncome && !e.Date.After(now):
			in.RealizedIncome += e.Amount
		case e.Kind == finance.KindExpense && e.Date.After(now):
			in.Committed += finance.Abs(e.Amount)
		case e.Kind == finance.KindExpense:
			in.Discretionary += finance.Abs(e.Amount)
		}
	}

	if in.InvoiceProjection, err = s.invoiceProjection(userID, now); err != nil {
		return nil, err
	}

	hud := finance.ComputeHUD(in)
	return &hud, nil
}

// invoiceProjection sums the projected invoices of the user's credit cards.
// It returns nil when the user has none.
func (s *dashboardService) invoiceProjection(userID string, now time.Time) (*int64, error) {
	var cards []models.Account
	if err := s.db.Where("user_id = ? AND type = ? AND closing_day IS NOT NULL AND due_day IS NOT NULL", userID, models.AccountTypeCredit).
		Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(cards) == 0 {
		return nil, nil
	}

	var total int64
	for i := range cards {
		summary, err := invoiceFor(s.db, &cards[i], now)
		if err != nil {
			return nil, err
		}
		total += summary.Projected
	}
	return &total, nil
}

// GetCommitments returns future expense obligations grouped by month.
func (s *dashboardService) GetCommitments(userID string, now time.Time) ([]finance.MonthAmount, error) {
	now = now.UTC()
	var txs []models.Transaction
	if err := s.db.Where("user_id = ? AND type = ? AND date >= ?", userID, models.TransactionTypeExpense, finance.StartOfDay(now)).
		Find(&txs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return finance.Commitments(toEntries(txs), now, s.horizon), nil
}

// GetSummary returns the profile, total balance and latest transactions.
func (s *dashboardService) GetSummary(userID string) (*Summary, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	total, err := totalBalance(s.db, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.transactions.RecentTransactions(userID, 0)
	if err != nil {
		return nil, err
	}
	return &Summary{User: user, TotalBalance: total, RecentTransactions: recent}, nil
}
