package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"cortex/internal/models"
	"cortex/internal/testutil"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"5511999990000":       "+5511999990000",
		"+55 (11) 99999-0000": "+5511999990000",
		"":                    "",
		"abc":                 "",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetOrCreateByPhone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	accounts := NewAccountService(db)
	svc := NewUserService(db, accounts, NewOTPService(db, time.Minute, 5), &recordingSender{})

	t.Run("registers_with_wallet", func(t *testing.T) {
		user, err := svc.GetOrCreateByPhone("5511988887777")
		testutil.AssertNoError(t, err)
		if user.Phone != "+5511988887777" {
			t.Errorf("expected normalized phone, got %s", user.Phone)
		}

		list, err := accounts.ListAccounts(user.ID)
		testutil.AssertNoError(t, err)
		if len(list.Accounts) != 1 || list.Accounts[0].Name != models.DefaultWalletName {
			t.Errorf("expected default wallet, got %+v", list.Accounts)
		}
	})

	t.Run("returns_existing", func(t *testing.T) {
		first, _ := svc.GetOrCreateByPhone("+5511977776666")
		second, err := svc.GetOrCreateByPhone("5511977776666")
		testutil.AssertNoError(t, err)
		if first.ID != second.ID {
			t.Error("expected the same user")
		}
	})

	t.Run("empty_phone", func(t *testing.T) {
		_, err := svc.GetOrCreateByPhone("  ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, NewAccountService(db), NewOTPService(db, time.Minute, 5), &recordingSender{})
	user := testutil.CreateTestUser(t, db)

	income := int64(750000)
	name := "  Ana  "
	updated, err := svc.UpdateProfile(user.ID, ProfileUpdate{MonthlyIncome: &income, Name: &name})
	testutil.AssertNoError(t, err)
	if updated.MonthlyIncome != 750000 || updated.Name != "Ana" {
		t.Errorf("unexpected profile %+v", updated)
	}

	negative := int64(-1)
	_, err = svc.UpdateProfile(user.ID, ProfileUpdate{MonthlyIncome: &negative})
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	_, err = svc.UpdateProfile("0190a7a8-0000-7000-8000-000000000000", ProfileUpdate{})
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestAccountDeletion(t *testing.T) {
	setup := func(t *testing.T) (UserServicer, *recordingSender, *models.User, func() int64) {
		db := testutil.SetupTestDB(t)
		sender := &recordingSender{}
		svc := NewUserService(db, NewAccountService(db), NewOTPService(db, 5*time.Minute, 5), sender)

		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestCashAccount(t, db, user.ID)
		testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeExpense, -1000)
		testutil.CreateTestBudget(t, db, user.ID, "Mercado", "2026-10")
		testutil.CreateTestGoal(t, db, user.ID)
		testutil.CreateTestHolding(t, db, user.ID, "PETR4", models.HoldingTypeStock)

		// remaining counts the rows still owned by the user, then closes the db.
		remaining := func() int64 {
			defer testutil.TeardownTestDB(t, db)
			var total int64
			for _, model := range []interface{}{&models.Transaction{}, &models.Account{}, &models.Budget{}, &models.Goal{}, &models.Holding{}} {
				var n int64
				db.Unscoped().Model(model).Where("user_id = ?", user.ID).Count(&n)
				total += n
			}
			return total
		}
		return svc, sender, user, remaining
	}

	t.Run("wipes_everything", func(t *testing.T) {
		svc, sender, user, remaining := setup(t)

		testutil.AssertNoError(t, svc.RequestDeletion(context.Background(), user.ID))
		if sender.last(t).Phone != user.Phone {
			t.Errorf("expected code sent to %s", user.Phone)
		}

		err := svc.ConfirmDeletion(user.ID, sender.codeFrom(t), "  Tenho Certeza ")
		testutil.AssertNoError(t, err)

		_, err = svc.GetUserByID(user.ID)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
		if n := remaining(); n != 0 {
			t.Errorf("expected no rows left, got %d", n)
		}
	})

	t.Run("wrong_phrase", func(t *testing.T) {
		svc, sender, user, remaining := setup(t)

		testutil.AssertNoError(t, svc.RequestDeletion(context.Background(), user.ID))
		err := svc.ConfirmDeletion(user.ID, sender.codeFrom(t), "sim")
		testutil.AssertAppError(t, err, "INVALID_CONFIRMATION")

		if _, err := svc.GetUserByID(user.ID); err != nil {
			t.Error("user must survive a rejected confirmation")
		}
		if n := remaining(); n != 5 {
			t.Errorf("expected 5 rows left, got %d", n)
		}
	})

	t.Run("wrong_code", func(t *testing.T) {
		svc, _, user, remaining := setup(t)
		defer remaining()

		testutil.AssertNoError(t, svc.RequestDeletion(context.Background(), user.ID))
		err := svc.ConfirmDeletion(user.ID, "abcdef", DeletionPhrase)
		testutil.AssertAppError(t, err, "INVALID_OTP")
	})

	t.Run("delivery_failure_is_not_an_error", func(t *testing.T) {
		svc, sender, user, remaining := setup(t)
		defer remaining()
		sender.err = errors.New("whatsapp down")

		testutil.AssertNoError(t, svc.RequestDeletion(context.Background(), user.ID))
	})
}
