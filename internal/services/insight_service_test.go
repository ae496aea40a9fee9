package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"cortex/internal/models"
	"cortex/internal/testutil"
)

func TestGenerateInsights(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)

	t.Run("no_data", func(t *testing.T) {
		completer := &fakeCompleter{reply: `{"insights":["x"]}`}
		got, err := NewInsightService(db, completer).GenerateInsights(context.Background(), user.ID)
		testutil.AssertNoError(t, err)
		if len(got) != 1 || got[0] != insightNoData || completer.user != "" {
			t.Errorf("expected the no-data message without a model call, got %v", got)
		}
	})

	account := testutil.CreateTestCashAccount(t, db, user.ID)
	testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeExpense, -4590)

	t.Run("json_reply", func(t *testing.T) {
		completer := &fakeCompleter{reply: "```json\n{\"insights\": [\"Gasto alto com delivery\", \" \", \"Reserve 10%\"]}\n```"}
		got, err := NewInsightService(db, completer).GenerateInsights(context.Background(), user.ID)
		testutil.AssertNoError(t, err)

		want := []string{"Gasto alto com delivery", "Reserve 10%"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
		if !strings.Contains(completer.user, "-R$ 45,90") {
			t.Errorf("expected the transaction in the prompt, got %q", completer.user)
		}
	})

	t.Run("plain_list_reply", func(t *testing.T) {
		completer := &fakeCompleter{reply: "1. Primeiro\n2. Segundo"}
		got, _ := NewInsightService(db, completer).GenerateInsights(context.Background(), user.ID)
		if !reflect.DeepEqual(got, []string{"Primeiro", "Segundo"}) {
			t.Errorf("unexpected insights %v", got)
		}
	})

	t.Run("model_error_falls_back", func(t *testing.T) {
		completer := &fakeCompleter{err: errors.New("timeout")}
		got, err := NewInsightService(db, completer).GenerateInsights(context.Background(), user.ID)
		testutil.AssertNoError(t, err)
		if len(got) != 1 || got[0] != insightFallback {
			t.Errorf("expected fallback, got %v", got)
		}
	})

	t.Run("no_model_configured", func(t *testing.T) {
		got, err := NewInsightService(db, nil).GenerateInsights(context.Background(), user.ID)
		testutil.AssertNoError(t, err)
		if len(got) != 1 || got[0] != insightFallback {
			t.Errorf("expected fallback, got %v", got)
		}
	})
}
