package services

import (
	"context"
	"io"
	"time"

	"gorm.io/gorm"

	"cortex/internal/finance"
	"cortex/internal/models"
	"cortex/internal/pagination"
)

// OTPServicer issues and verifies single-use codes per (phone, purpose).
type OTPServicer interface {
	Issue(phone, purpose string) (string, error)
	Verify(phone, purpose, code string) error
}

// AuthServicer defines the phone + OTP login flow.
type AuthServicer interface {
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(phone, code string) (*models.User, error)
}

// ProfileUpdate holds the onboarding fields a user may change.
type ProfileUpdate struct {
	MonthlyIncome *int64
	Name          *string
	Email         *string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	GetUserByID(id string) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	GetOrCreateByPhone(phone string) (*models.User, error)
	UpdateProfile(userID string, fields ProfileUpdate) (*models.User, error)
	RequestDeletion(ctx context.Context, userID string) error
	ConfirmDeletion(userID, code, phrase string) error
}

// AccountInput carries the fields for a new account.
type AccountInput struct {
	Name           string
	Type           models.AccountType
	InitialBalance int64
	CreditLimit    *int64
	ClosingDay     *int
	DueDay         *int
}

// AccountUpdateFields holds optional fields for updating an account.
type AccountUpdateFields struct {
	Name        *string
	CreditLimit *int64
	ClosingDay  *int
	DueDay      *int
}

// AccountList is every account of a user plus the summed balance.
type AccountList struct {
	Accounts     []models.Account `json:"accounts"`
	TotalBalance int64            `json:"total_balance"`
}

// Reconciliation reports the stored vs derived balance of one account.
type Reconciliation struct {
	AccountID string `json:"account_id"`
	Stored    int64  `json:"stored_balance"`
	Derived   int64  `json:"derived_balance"`
	Drift     int64  `json:"drift"`
	Repaired  bool   `json:"repaired"`
}

// Invoice is the open billing cycle of a credit account.
type Invoice struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	finance.InvoiceSummary
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID string, in AccountInput) (*models.Account, error)
	ListAccounts(userID string) (*AccountList, error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
	EnsureDefaultWallet(tx *gorm.DB, userID string) (*models.Account, error)
	ApplyDelta(tx *gorm.DB, accountID string, delta int64) error
	Reconcile(userID, accountID string) (*Reconciliation, error)
	GetInvoice(userID, accountID string, now time.Time) (*Invoice, error)
}

// TransactionInput carries a new ledger entry. Amount is a positive
// magnitude for INCOME and EXPENSE. A TRANSFER with ToAccountID moves the
// magnitude between two accounts; without it the amount keeps its sign.
type TransactionInput struct {
	AccountID    string
	ToAccountID  string
	Type         models.TransactionType
	Amount       int64
	Category     string
	Description  string
	Date         time.Time
	Installments int
	IsCleared    bool
	RawMessage   string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Category  *string
	Type      *models.TransactionType
	AccountID *string
	Month     *string
	IsCleared *bool
	FromDate  *time.Time
	ToDate    *time.Time
}

// TransactionUpdateFields holds optional fields for editing one transaction.
type TransactionUpdateFields struct {
	Amount      *int64
	Type        *models.TransactionType
	Category    *string
	Description *string
	Date        *time.Time
	AccountID   *string
	IsCleared   *bool
}

// BulkUpdateFields holds the fields a bulk edit may set.
type BulkUpdateFields struct {
	Category    *string
	Description *string
	IsCleared   *bool
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, in TransactionInput) ([]models.Transaction, error)
	ListTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	BulkDelete(userID string, ids []string) (int, error)
	BulkUpdate(userID string, ids []string, fields BulkUpdateFields) (int, error)
	ExportCSV(userID string, filter TransactionFilter, w io.Writer) error
	Search(userID, query string, now time.Time) ([]models.Transaction, error)
	RecentTransactions(userID string, limit int) ([]models.Transaction, error)
}

// Summary is the dashboard landing payload.
type Summary struct {
	User               *models.User         `json:"user"`
	TotalBalance       int64                `json:"total_balance"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

// DashboardServicer computes the HUD and dashboard aggregates.
type DashboardServicer interface {
	GetHUD(userID string, now time.Time) (*finance.HUD, error)
	GetCommitments(userID string, now time.Time) ([]finance.MonthAmount, error)
	GetSummary(userID string) (*Summary, error)
}

// AnalyticsServicer exposes the forecasting engine over stored history.
type AnalyticsServicer interface {
	Forecast(userID string, now time.Time) (*finance.Forecast, error)
	Cashflow(userID string, now time.Time) ([]finance.MonthlyFlow, error)
	Anomalies(userID string, now time.Time) ([]finance.Anomaly, error)
	Simulate(userID string, scenario finance.Scenario, now time.Time) (*finance.Simulation, error)
}

// HoldingInput carries a new position.
type HoldingInput struct {
	Ticker   string
	Name     string
	Type     models.HoldingType
	Quantity string
	AvgPrice int64
}

// RefreshResult summarizes one market price refresh.
type RefreshResult struct {
	Updated int      `json:"updated"`
	Failed  []string `json:"failed"`
}

// PortfolioServicer defines the contract for holdings and their valuation.
type PortfolioServicer interface {
	GetPortfolio(userID string) (*finance.Portfolio, error)
	AddHolding(ctx context.Context, userID string, in HoldingInput) (*models.Holding, error)
	DeleteHolding(userID, holdingID string) error
	RefreshPrices(ctx context.Context) (*RefreshResult, error)
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	ListBudgets(userID, month string) ([]models.Budget, error)
	UpsertBudget(userID, category string, amount int64, month string) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
}

// GoalUpdateFields holds optional fields for updating a goal.
type GoalUpdateFields struct {
	Name          *string
	TargetAmount  *int64
	CurrentAmount *int64
	Deadline      *time.Time
}

// GoalServicer defines the contract for savings goals.
type GoalServicer interface {
	ListGoals(userID string) ([]models.Goal, error)
	CreateGoal(userID, name string, target, current int64, deadline *time.Time) (*models.Goal, error)
	UpdateGoal(userID, goalID string, fields GoalUpdateFields) (*models.Goal, error)
	DeleteGoal(userID, goalID string) error
}

// InsightServicer turns recent activity into short advice lines.
type InsightServicer interface {
	GenerateInsights(ctx context.Context, userID string) ([]string, error)
}

// InboundMessage is one text received over WhatsApp.
type InboundMessage struct {
	ID    string
	Phone string
	Text  string
}

// MessageServicer handles inbound chat messages.
type MessageServicer interface {
	HandleInbound(ctx context.Context, msg InboundMessage) (string, error)
}

// ScanResult summarizes one anomaly scan.
type ScanResult struct {
	Users    int `json:"users"`
	Flagged  int `json:"flagged"`
	Notified int `json:"notified"`
}

// AlertServicer runs the scheduled anomaly scan.
type AlertServicer interface {
	ScanAnomalies(ctx context.Context, now time.Time) (*ScanResult, error)
}

// AuditEvent is one sensitive operation to record.
type AuditEvent struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	Changes      map[string]interface{}
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Record(event AuditEvent)
}
