package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "cortex/internal/errors"
	"cortex/internal/models"
	"cortex/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	listBudgetsFn  func(userID, month string) ([]models.Budget, error)
	upsertBudgetFn func(userID, category string, amount int64, month string) (*models.Budget, error)
	deleteBudgetFn func(userID, budgetID string) error
}

func (m *mockBudgetService) ListBudgets(userID, month string) ([]models.Budget, error) {
	if m.listBudgetsFn != nil {
		return m.listBudgetsFn(userID, month)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) UpsertBudget(userID, category string, amount int64, month string) (*models.Budget, error) {
	if m.upsertBudgetFn != nil {
		return m.upsertBudgetFn(userID, category, amount, month)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

// verify interface compliance
var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(budgets *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/budgets/", budgets.ListBudgets)
	auth.POST("/budgets/", budgets.UpsertBudget)
	auth.DELETE("/budgets/:id", budgets.DeleteBudget)
	return r
}

func TestBudgetHandler_ListBudgets(t *testing.T) {
	budgetSvc := &mockBudgetService{
		listBudgetsFn: func(_, month string) ([]models.Budget, error) {
			if month != "2026-10" {
				t.Errorf("unexpected month %q", month)
			}
			return []models.Budget{{Category: "Mercado", Amount: 10000, Spent: 12000, Remaining: -2000, Percentage: 120}}, nil
		},
	}
	r := setupBudgetRouter(NewBudgetHandler(budgetSvc))

	rec := doRequest(r, "GET", "/budgets/?month=2026-10", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() == "[]" {
		t.Fatal("expected one budget")
	}
}

func TestBudgetHandler_UpsertBudget(t *testing.T) {
	t.Run("returns 200 with the stored budget", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			upsertBudgetFn: func(_, category string, amount int64, month string) (*models.Budget, error) {
				return &models.Budget{Category: category, Amount: amount, Month: month}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc))

		rec := doRequest(r, "POST", "/budgets/", `{"category":"Mercado","amount":80000,"month":"2026-10"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["amount"] != float64(80000) || result["month"] != "2026-10" {
			t.Errorf("unexpected budget %v", result)
		}
	})

	t.Run("returns 400 for a malformed month", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}))

		rec := doRequest(r, "POST", "/budgets/", `{"category":"Mercado","amount":80000,"month":"10/2026"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	budgetSvc := &mockBudgetService{
		deleteBudgetFn: func(_, _ string) error { return apperrors.ErrBudgetNotFound },
	}
	r := setupBudgetRouter(NewBudgetHandler(budgetSvc))

	rec := doRequest(r, "DELETE", "/budgets/"+testTxID, "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
}
