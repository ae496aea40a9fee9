package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "cortex/internal/errors"
	"cortex/internal/finance"
	"cortex/internal/models"
)

// toEntries maps stored rows to the engine's ledger entries.
func toEntries(txs []models.Transaction) []finance.Entry {
	entries := make([]finance.Entry, len(txs))
	for i, t := range txs {
		entries[i] = finance.Entry{
			ID:        t.ID,
			AccountID: t.AccountID,
			Kind:      finance.Kind(t.Type),
			Amount:    t.Amount,
			Category:  t.Category,
			Date:      t.Date,
		}
	}
	return entries
}

// loadEntries returns the user's transactions dated in [from, to].
func loadEntries(db *gorm.DB, userID string, from, to time.Time) ([]finance.Entry, error) {
	var txs []models.Transaction
	if err := db.Where("user_id = ? AND date >= ? AND date <= ?", userID, from.UTC(), to.UTC()).
		Order("date ASC").
		Find(&txs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return toEntries(txs), nil
}

// totalBalance sums current_balance over the user's accounts.
func totalBalance(db *gorm.DB, userID string) (int64, error) {
	var total int64
	if err := db.Model(&models.Account{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(current_balance), 0)").
		Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// invoiceFor summarizes the open cycle of a credit account at now.
func invoiceFor(db *gorm.DB, account *models.Account, now time.Time) (finance.InvoiceSummary, error) {
	if !account.IsCredit() || account.ClosingDay == nil || account.DueDay == nil {
		return finance.InvoiceSummary{}, apperrors.ErrNotCreditAccount
	}
	cycle, err := finance.CycleFor(now, *account.ClosingDay, *account.DueDay)
	if err != nil {
		return finance.InvoiceSummary{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	var txs []models.Transaction
	if err := db.Where("account_id = ? AND date >= ? AND date <= ?", account.ID, cycle.Opens, finance.EndOfDay(cycle.Closes)).
		Find(&txs).Error; err != nil {
		return finance.InvoiceSummary{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var limit int64
	if account.CreditLimit != nil {
		limit = *account.CreditLimit
	}
	summary, err := finance.SummarizeInvoice(toEntries(txs), account.CurrentBalance, limit, *account.ClosingDay, *account.DueDay, now)
	if err != nil {
		return finance.InvoiceSummary{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return summary, nil
}

// signedAmount applies the ledger sign convention to a magnitude.
func signedAmount(txType models.TransactionType, amount int64) int64 {
	switch txType {
	case models.TransactionTypeIncome:
		return finance.Abs(amount)
	case models.TransactionTypeExpense:
		return -finance.Abs(amount)
	default:
		return amount
	}
}

func validTransactionType(t models.TransactionType) bool {
	switch t {
	case models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypeTransfer:
		return true
	}
	return false
}

func normalizeCategory(category string, txType models.TransactionType) string {
	category = strings.TrimSpace(category)
	if category != "" {
		return category
	}
	switch txType {
	case models.TransactionTypeIncome:
		return "Receita"
	case models.TransactionTypeTransfer:
		return "Transferência"
	}
	return "Outros"
}
