package services

import (
	"testing"
	"time"

	"cortex/internal/models"
	"cortex/internal/testutil"
)

func TestUpsertBudget(t *testing.T) {
	t.Run("creates_then_updates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		first, err := svc.UpsertBudget(user.ID, "Mercado", 80000, "2026-10")
		testutil.AssertNoError(t, err)

		second, err := svc.UpsertBudget(user.ID, " mercado ", 90000, "2026-10")
		testutil.AssertNoError(t, err)

		if first.ID != second.ID {
			t.Error("expected the same budget to be updated")
		}
		if second.Amount != 90000 {
			t.Errorf("expected amount 90000, got %d", second.Amount)
		}
	})

	t.Run("restores_deleted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		old := testutil.CreateTestBudget(t, db, user.ID, "Lazer", "2026-10")
		testutil.AssertNoError(t, svc.DeleteBudget(user.ID, old.ID))

		restored, err := svc.UpsertBudget(user.ID, "Lazer", 20000, "2026-10")
		testutil.AssertNoError(t, err)
		if restored.ID != old.ID || restored.Amount != 20000 {
			t.Errorf("unexpected budget %+v", restored)
		}

		list, _ := svc.ListBudgets(user.ID, "2026-10")
		if len(list) != 1 {
			t.Errorf("expected 1 budget, got %d", len(list))
		}
	})

	t.Run("validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpsertBudget(user.ID, "", 100, "2026-10")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.UpsertBudget(user.ID, "Mercado", 0, "2026-10")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.UpsertBudget(user.ID, "Mercado", 100, "10/2026")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListBudgets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestCashAccount(t, db, user.ID)

	testutil.CreateTestBudget(t, db, user.ID, "Mercado", "2026-10")
	testutil.CreateTestBudget(t, db, user.ID, "Lazer", "2026-10")
	testutil.CreateTestBudget(t, db, user.ID, "Mercado", "2026-09")

	oct := func(day int) time.Time { return time.Date(2026, time.October, day, 12, 0, 0, 0, time.UTC) }
	testutil.CreateTestTransactionAt(t, db, user.ID, account.ID, models.TransactionTypeExpense, -4000, "Mercado", oct(3))
	testutil.CreateTestTransactionAt(t, db, user.ID, account.ID, models.TransactionTypeExpense, -8000, "mercado", oct(9))
	testutil.CreateTestTransactionAt(t, db, user.ID, account.ID, models.TransactionTypeIncome, 9000, "Mercado", oct(10))
	testutil.CreateTestTransactionAt(t, db, user.ID, account.ID, models.TransactionTypeExpense, -3000, "Mercado", time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC))

	budgets, err := svc.ListBudgets(user.ID, "2026-10")
	testutil.AssertNoError(t, err)
	if len(budgets) != 2 {
		t.Fatalf("expected 2 budgets, got %d", len(budgets))
	}

	var mercado, lazer models.Budget
	for _, b := range budgets {
		switch b.Category {
		case "Mercado":
			mercado = b
		case "Lazer":
			lazer = b
		}
	}
	if mercado.Spent != 12000 || mercado.Remaining != -2000 || mercado.Percentage != 120 {
		t.Errorf("unexpected mercado usage %+v", mercado)
	}
	if lazer.Spent != 0 || lazer.Remaining != 10000 || lazer.Percentage != 0 {
		t.Errorf("unexpected lazer usage %+v", lazer)
	}

	t.Run("empty_month", func(t *testing.T) {
		list, err := svc.ListBudgets(user.ID, "2025-01")
		testutil.AssertNoError(t, err)
		if list == nil || len(list) != 0 {
			t.Errorf("expected empty list, got %v", list)
		}
	})
}

func TestDeleteBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID, "Mercado", "2026-10")

	testutil.AssertAppError(t, svc.DeleteBudget(other.ID, budget.ID), "BUDGET_NOT_FOUND")
	testutil.AssertNoError(t, svc.DeleteBudget(user.ID, budget.ID))
	testutil.AssertAppError(t, svc.DeleteBudget(user.ID, budget.ID), "BUDGET_NOT_FOUND")
}
