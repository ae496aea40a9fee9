// Package server assembles the service graph and the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"cortex/internal/config"
	"cortex/internal/finance"
	"cortex/internal/handlers"
	"cortex/internal/llm"
	"cortex/internal/market"
	"cortex/internal/middleware"
	"cortex/internal/notify"
	"cortex/internal/services"
)

// Deps are the outbound integrations the services talk to.
type Deps struct {
	Sender    notify.Sender
	Prices    market.Provider
	Completer llm.Completer
}

// Services is the fully wired service layer.
type Services struct {
	Users        services.UserServicer
	Auth         services.AuthServicer
	Accounts     services.AccountServicer
	Transactions services.TransactionServicer
	Budgets      services.BudgetServicer
	Goals        services.GoalServicer
	Dashboard    services.DashboardServicer
	Analytics    services.AnalyticsServicer
	Portfolio    services.PortfolioServicer
	Insights     services.InsightServicer
	Messages     services.MessageServicer
	Alerts       services.AlertServicer
	Audit        services.AuditServicer
}

// NewServices wires every service against db.
func NewServices(db *gorm.DB, cfg *config.Config, deps Deps) *Services {
	sender := deps.Sender
	if sender == nil {
		sender = notify.LogSender{}
	}

	otp := services.NewOTPService(db, cfg.OTPTTL, cfg.OTPMaxAttempts)
	accounts := services.NewAccountService(db)
	users := services.NewUserService(db, accounts, otp, sender)
	transactions := services.NewTransactionService(db, accounts)
	thresholds := finance.BurnThresholds{Warning: cfg.BurnWarningPct, Critical: cfg.BurnCriticalPct}

	return &Services{
		Users:        users,
		Auth:         services.NewAuthService(db, users, otp, sender),
		Accounts:     accounts,
		Transactions: transactions,
		Budgets:      services.NewBudgetService(db),
		Goals:        services.NewGoalService(db),
		Dashboard:    services.NewDashboardService(db, users, transactions, thresholds, cfg.CommitmentsHorizon),
		Analytics:    services.NewAnalyticsService(db, cfg.ForecastHorizon),
		Portfolio:    services.NewPortfolioService(db, deps.Prices),
		Insights:     services.NewInsightService(db, deps.Completer),
		Messages:     services.NewMessageService(users, accounts, transactions, sender),
		Alerts:       services.NewAlertService(db, sender),
		Audit:        services.NewAuditService(db),
	}
}

// Options configures the public webhook surface.
type Options struct {
	WebhookAppSecret   string
	WebhookVerifyToken string
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svcs *Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svcs.Auth, svcs.Users, svcs.Audit)
	accountHandler := handlers.NewAccountHandler(svcs.Accounts, svcs.Audit)
	transactionHandler := handlers.NewTransactionHandler(svcs.Transactions, svcs.Audit)
	dashboardHandler := handlers.NewDashboardHandler(svcs.Dashboard, svcs.Insights, svcs.Users)
	analyticsHandler := handlers.NewAnalyticsHandler(svcs.Analytics, svcs.Portfolio)
	budgetHandler := handlers.NewBudgetHandler(svcs.Budgets)
	goalHandler := handlers.NewGoalHandler(svcs.Goals)
	settingsHandler := handlers.NewSettingsHandler(svcs.Users, svcs.Audit)
	webhookHandler := handlers.NewWebhookHandler(svcs.Messages, opts.WebhookVerifyToken)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/auth")
	auth.POST("/request-otp", authHandler.RequestOTP)
	auth.POST("/verify-otp", authHandler.VerifyOTP)

	router.GET("/webhook", webhookHandler.Verify)
	router.POST("/webhook", middleware.WebhookSignatureMiddleware(opts.WebhookAppSecret), webhookHandler.Receive)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware())

	api.GET("/me", authHandler.GetProfile)

	accounts := api.Group("/accounts")
	accounts.GET("/", accountHandler.ListAccounts)
	accounts.POST("/", accountHandler.CreateAccount)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PATCH("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.GET("/:id/invoice", accountHandler.GetInvoice)
	accounts.POST("/:id/reconcile", accountHandler.Reconcile)

	dashboard := api.Group("/dashboard")
	dashboard.GET("/hud", dashboardHandler.GetHUD)
	dashboard.GET("/commitments", dashboardHandler.GetCommitments)
	dashboard.GET("/summary", dashboardHandler.GetSummary)
	dashboard.POST("/insights", dashboardHandler.GetInsights)
	dashboard.POST("/profile", dashboardHandler.UpdateProfile)

	transactions := dashboard.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/export", transactionHandler.ExportCSV)
	transactions.POST("/search", transactionHandler.Search)
	transactions.POST("/bulk-delete", transactionHandler.BulkDelete)
	transactions.POST("/bulk-update", transactionHandler.BulkUpdate)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	analytics := api.Group("/analytics")
	analytics.GET("/forecast", analyticsHandler.GetForecast)
	analytics.GET("/cashflow", analyticsHandler.GetCashflow)
	analytics.GET("/anomalies", analyticsHandler.GetAnomalies)
	analytics.POST("/simulate", analyticsHandler.Simulate)
	analytics.GET("/investments", analyticsHandler.GetPortfolio)
	analytics.POST("/investments/add", analyticsHandler.AddHolding)
	analytics.DELETE("/investments/:id", analyticsHandler.DeleteHolding)

	budgets := api.Group("/budgets")
	budgets.GET("/", budgetHandler.ListBudgets)
	budgets.POST("/", budgetHandler.UpsertBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	goals := api.Group("/goals")
	goals.GET("/", goalHandler.ListGoals)
	goals.POST("/", goalHandler.CreateGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	settings := api.Group("/settings")
	settings.POST("/delete-request", settingsHandler.RequestDeletion)
	settings.POST("/delete-confirm", settingsHandler.ConfirmDeletion)

	return router
}
