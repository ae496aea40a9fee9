package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "cortex/internal/errors"
	"cortex/internal/finance"
	"cortex/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

func resolveMonth(month string) (string, time.Time, error) {
	if month == "" {
		month = finance.MonthKey(time.Now().UTC())
	}
	start, err := finance.ParseMonth(month)
	if err != nil {
		return "", time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be YYYY-MM")
	}
	return month, start, nil
}

// ListBudgets returns the user's budgets for month (default: current month)
// with the spending recorded against each category.
func (s *budgetService) ListBudgets(userID, month string) ([]models.Budget, error) {
	month, start, err := resolveMonth(month)
	if err != nil {
		return nil, err
	}

	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND month = ?", userID, month).
		Order("category ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(budgets) == 0 {
		return []models.Budget{}, nil
	}

	var sums []struct {
		Category string
		Spent    int64
	}
	end := start.AddDate(0, 1, 0)
	if err := s.db.Model(&models.Transaction{}).
		Select("LOWER(category) AS category, COALESCE(SUM(ABS(amount)), 0) AS spent").
		Where("user_id = ? AND type = ? AND date >= ? AND date < ?", userID, models.TransactionTypeExpense, start, end).
		Group("LOWER(category)").
		Scan(&sums).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	spent := make(map[string]int64, len(sums))
	for _, row := range sums {
		spent[row.Category] = row.Spent
	}

	for i := range budgets {
		usage := finance.UsageOf(budgets[i].Amount, spent[strings.ToLower(budgets[i].Category)])
		budgets[i].Spent = usage.Spent
		budgets[i].Remaining = usage.Remaining
		budgets[i].Percentage = usage.Percentage
	}
	return budgets, nil
}

// UpsertBudget sets the cap for (category, month). A budget previously
// deleted for the same pair is restored rather than duplicated.
func (s *budgetService) UpsertBudget(userID, category string, amount int64, month string) (*models.Budget, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	month, _, err := resolveMonth(month)
	if err != nil {
		return nil, err
	}

	var budget models.Budget
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Unscoped().
			Where("user_id = ? AND LOWER(category) = LOWER(?) AND month = ?", userID, category, month).
			First(&budget).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			budget = models.Budget{UserID: userID, Category: category, Amount: amount, Month: month}
			return tx.Create(&budget).Error
		}
		if err != nil {
			return err
		}
		return tx.Unscoped().Model(&budget).Updates(map[string]interface{}{
			"amount":     amount,
			"deleted_at": nil,
		}).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.First(&budget, "id = ?", budget.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	result := s.db.Scopes(models.OwnedRecord(budgetID, userID)).Delete(&models.Budget{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}
