package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"cortex/internal/finance"
	"cortex/internal/models"
	"cortex/internal/testutil"
)

func newDashboardForTest(db *gorm.DB) DashboardServicer {
	accounts := NewAccountService(db)
	users := NewUserService(db, accounts, NewOTPService(db, time.Minute, 5), &recordingSender{})
	return NewDashboardService(db, users, NewTransactionService(db, accounts), finance.DefaultBurnThresholds, 12)
}

func TestGetHUD(t *testing.T) {
	now := time.Date(2026, time.April, 10, 12, 0, 0, 0, time.UTC)
	day := func(m time.Month, d int) time.Time { return time.Date(2026, m, d, 9, 0, 0, 0, time.UTC) }

	t.Run("with_credit_card", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newDashboardForTest(db)
		user := testutil.CreateTestUser(t, db)
		cash := testutil.CreateTestCashAccount(t, db, user.ID)
		card := testutil.CreateTestCreditAccount(t, db, user.ID, 31, 10)

		testutil.CreateTestTransactionAt(t, db, user.ID, card.ID, models.TransactionTypeExpense, -4000, "Mercado", day(time.April, 2))
		testutil.CreateTestTransactionAt(t, db, user.ID, card.ID, models.TransactionTypeExpense, -6000, "Mercado", day(time.April, 5))
		testutil.CreateTestTransactionAt(t, db, user.ID, cash.ID, models.TransactionTypeIncome, 300000, "Salário", day(time.April, 5))
		testutil.CreateTestTransactionAt(t, db, user.ID, cash.ID, models.TransactionTypeExpense, -5000, "Aluguel", day(time.April, 20))
		testutil.CreateTestTransactionAt(t, db, user.ID, cash.ID, models.TransactionTypeExpense, -7000, "Aluguel", day(time.May, 2))

		hud, err := svc.GetHUD(user.ID, now)
		testutil.AssertNoError(t, err)

		if hud.SafeToSpend != 485000 {
			t.Errorf("safe_to_spend = %d, want 485000", hud.SafeToSpend)
		}
		if hud.RealizedIncome != 300000 || hud.ExpectedIncome != 500000 || hud.Income != 500000 {
			t.Errorf("unexpected income fields %+v", hud)
		}
		if hud.BurnRate.DailyAvg != 1000 || hud.ProjectedSpend != 30000 {
			t.Errorf("unexpected pace %+v / %d", hud.BurnRate, hud.ProjectedSpend)
		}
		if hud.BurnRate.Value != 6 || hud.BurnRate.Status != finance.StatusGood {
			t.Errorf("unexpected burn %+v", hud.BurnRate)
		}
		if hud.InvoiceProjection != 30000 {
			t.Errorf("invoice_projection = %d, want 30000", hud.InvoiceProjection)
		}
		if hud.NeedsOnboarding {
			t.Error("user with income must not need onboarding")
		}
	})

	t.Run("without_income_uses_realized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newDashboardForTest(db)
		user := testutil.CreateTestUser(t, db)
		db.Model(user).Update("monthly_income", 0)
		cash := testutil.CreateTestCashAccount(t, db, user.ID)

		testutil.CreateTestTransactionAt(t, db, user.ID, cash.ID, models.TransactionTypeIncome, 20000, "Freela", day(time.April, 1))
		testutil.CreateTestTransactionAt(t, db, user.ID, cash.ID, models.TransactionTypeExpense, -8000, "Mercado", day(time.April, 8))

		hud, err := svc.GetHUD(user.ID, now)
		testutil.AssertNoError(t, err)

		if !hud.NeedsOnboarding || hud.Income != 20000 {
			t.Errorf("expected realized income as base, got %+v", hud)
		}
		// 8000 over 10 days projects 24000 for April: 120% of 20000.
		if hud.BurnRate.Status != finance.StatusCritical || hud.BurnRate.Value != 120 {
			t.Errorf("unexpected burn %+v", hud.BurnRate)
		}
		if hud.InvoiceProjection != hud.ProjectedSpend {
			t.Error("without cards the invoice projection falls back to projected spend")
		}
	})

	t.Run("empty_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newDashboardForTest(db)
		user := testutil.CreateTestUser(t, db)
		db.Model(user).Update("monthly_income", 0)

		hud, err := svc.GetHUD(user.ID, now)
		testutil.AssertNoError(t, err)
		if hud.BurnRate.Status != finance.StatusNA || hud.BurnRate.Value != 0 || hud.SafeToSpend != 0 {
			t.Errorf("unexpected hud %+v", hud)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		_, err := newDashboardForTest(db).GetHUD("0190a7a8-0000-7000-8000-000000000000", now)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestGetCommitments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	accounts := NewAccountService(db)
	transactions := NewTransactionService(db, accounts)
	svc := newDashboardForTest(db)
	user := testutil.CreateTestUser(t, db)
	card := testutil.CreateTestCreditAccount(t, db, user.ID, 5, 12)
	now := time.Date(2026, time.April, 10, 12, 0, 0, 0, time.UTC)

	// 3 x 1000 starting today, plus one far payment past the horizon.
	_, err := transactions.CreateTransaction(user.ID, TransactionInput{
		AccountID: card.ID, Type: models.TransactionTypeExpense, Amount: 3000, Installments: 3, Date: now,
	})
	testutil.AssertNoError(t, err)
	testutil.CreateTestTransactionAt(t, db, user.ID, card.ID, models.TransactionTypeExpense, -100, "Outros", time.Date(2027, time.August, 1, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestTransactionAt(t, db, user.ID, card.ID, models.TransactionTypeExpense, -999, "Outros", time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))

	got, err := svc.GetCommitments(user.ID, now)
	testutil.AssertNoError(t, err)

	if len(got) != 13 {
		t.Fatalf("expected 12 months plus the tail, got %d", len(got))
	}
	want := []finance.MonthAmount{{Month: "2026-04", Amount: 1000}, {Month: "2026-05", Amount: 1000}, {Month: "2026-06", Amount: 1000}, {Month: "2026-07", Amount: 0}}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("month %d = %+v, want %+v", i, got[i], w)
		}
	}
	if got[12] != (finance.MonthAmount{Month: "2027-08", Amount: 100}) {
		t.Errorf("unexpected tail %+v", got[12])
	}
}

func TestGetSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newDashboardForTest(db)
	user := testutil.CreateTestUser(t, db)
	a := testutil.CreateTestCashAccountWithBalance(t, db, user.ID, 10000)
	testutil.CreateTestCashAccountWithBalance(t, db, user.ID, 5000)
	testutil.CreateTestTransaction(t, db, user.ID, a.ID, models.TransactionTypeExpense, -2000)

	summary, err := svc.GetSummary(user.ID)
	testutil.AssertNoError(t, err)
	if summary.User.ID != user.ID || summary.TotalBalance != 13000 || len(summary.RecentTransactions) != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
}
