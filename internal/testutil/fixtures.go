package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"cortex/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an onboarded user with a unique phone number.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	phone := fmt.Sprintf("+55119%08d", nextID())
	return CreateTestUserWithPhone(t, db, phone)
}

// CreateTestUserWithPhone creates a user with the given phone number and a
// monthly income of R$ 5.000,00.
func CreateTestUserWithPhone(t *testing.T, db *gorm.DB, phone string) *models.User {
	t.Helper()

	user := &models.User{
		Phone:         phone,
		Name:          "Test User",
		MonthlyIncome: 500000,
		IsActive:      true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCashAccount creates a cash account with zero balance.
func CreateTestCashAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()
	return CreateTestCashAccountWithBalance(t, db, userID, 0)
}

// CreateTestCashAccountWithBalance creates a checking account opened with the
// given balance (in cents).
func CreateTestCashAccountWithBalance(t *testing.T, db *gorm.DB, userID string, balance int64) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Account %d", nextID()),
		Type:           models.AccountTypeChecking,
		InitialBalance: balance,
		CurrentBalance: balance,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test cash account: %v", err)
	}
	return account
}

// CreateTestCreditAccount creates a credit card with a R$ 5.000,00 limit that
// closes on closingDay and is due on dueDay.
func CreateTestCreditAccount(t *testing.T, db *gorm.DB, userID string, closingDay, dueDay int) *models.Account {
	t.Helper()

	limit := int64(500000)
	account := &models.Account{
		UserID:      userID,
		Name:        fmt.Sprintf("Test Credit Card %d", nextID()),
		Type:        models.AccountTypeCredit,
		CreditLimit: &limit,
		ClosingDay:  &closingDay,
		DueDay:      &dueDay,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test credit account: %v", err)
	}
	return account
}

// CreateTestTransaction stores a transaction dated now and moves the account
// balance by amount, the same way the service does.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, accountID string, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()
	return CreateTestTransactionAt(t, db, userID, accountID, txType, amount, "Outros", time.Now().UTC())
}

// CreateTestTransactionAt stores a transaction with an explicit category and
// date and moves the account balance by amount.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, userID, accountID string, txType models.TransactionType, amount int64, category string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:            userID,
		AccountID:         accountID,
		Type:              txType,
		Amount:            amount,
		Category:          category,
		Description:       fmt.Sprintf("Test Transaction %d", nextID()),
		Date:              date,
		InstallmentNumber: 1,
		InstallmentsCount: 1,
	}
	err := db.Transaction(func(d *gorm.DB) error {
		if err := d.Create(tx).Error; err != nil {
			return err
		}
		return d.Model(&models.Account{}).Where("id = ?", accountID).
			Update("current_balance", gorm.Expr("current_balance + ?", amount)).Error
	})
	if err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a R$ 100,00 budget for category in month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, category, month string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:   userID,
		Category: category,
		Amount:   10000,
		Month:    month,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestGoal creates a goal of R$ 1.000,00 with R$ 250,00 saved.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID string) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:        userID,
		Name:          fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount:  100000,
		CurrentAmount: 25000,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestHolding creates a holding of 10 units bought at R$ 30,00.
func CreateTestHolding(t *testing.T, db *gorm.DB, userID, ticker string, holdingType models.HoldingType) *models.Holding {
	t.Helper()

	h := &models.Holding{
		UserID:   userID,
		Ticker:   ticker,
		Name:     ticker,
		Type:     holdingType,
		Quantity: decimal.NewFromInt(10),
		AvgPrice: 3000,
	}
	if err := db.Create(h).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return h
}

// CreateTestMarketPrice records a quote for ticker.
func CreateTestMarketPrice(t *testing.T, db *gorm.DB, ticker string, price int64) *models.MarketPrice {
	t.Helper()

	p := &models.MarketPrice{
		Ticker:     ticker,
		Price:      price,
		Source:     "test",
		RecordedAt: time.Now().UTC(),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create test market price: %v", err)
	}
	return p
}
