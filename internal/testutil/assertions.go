package testutil

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	apperrors "cortex/internal/errors"
	"cortex/internal/models"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertBalance reloads the account and checks its stored balance against
// want and against initial balance plus the live transaction amounts.
func AssertBalance(t *testing.T, db *gorm.DB, accountID string, want int64) {
	t.Helper()

	var account models.Account
	if err := db.First(&account, "id = ?", accountID).Error; err != nil {
		t.Fatalf("failed to load account %s: %v", accountID, err)
	}

	var sum int64
	if err := db.Model(&models.Transaction{}).
		Where("account_id = ?", accountID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error; err != nil {
		t.Fatalf("failed to sum transactions: %v", err)
	}

	if account.CurrentBalance != want {
		t.Errorf("expected balance %d, got %d", want, account.CurrentBalance)
	}
	if derived := account.InitialBalance + sum; derived != account.CurrentBalance {
		t.Errorf("stored balance %d drifted from derived %d", account.CurrentBalance, derived)
	}
}
