package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cortex/internal/config"
	"cortex/internal/database"
	"cortex/internal/llm"
	"cortex/internal/logger"
	"cortex/internal/market"
	"cortex/internal/notify"
	"cortex/internal/scheduler"
	"cortex/internal/server"

	_ "cortex/internal/docs" // Import swagger docs
)

// @title           Cortex API
// @version         1.0
// @description     Cortex is a personal finance assistant: transactions arrive over WhatsApp, and the API projects balances, installments, invoices and burn rate in BRL.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	config.Set(appConfig)

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	if err := dbManager.RunMigrations("file://migrations"); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	httpClient := &http.Client{Timeout: appConfig.HTTPClientTimeout}
	deps := server.Deps{
		Sender: buildSender(appConfig, httpClient),
		Prices: market.NewYahooProvider(httpClient, appConfig.MarketBaseURL),
	}
	if appConfig.LLMAPIKey != "" {
		deps.Completer = llm.NewClient(httpClient, appConfig.LLMBaseURL, appConfig.LLMAPIKey, appConfig.LLMModel)
	} else {
		log.Warn("LLM_API_KEY not set, insights fall back to a static message")
	}

	svcs := server.NewServices(dbManager.DB(), appConfig, deps)
	router := server.NewRouter(svcs, server.Options{
		WebhookAppSecret:   appConfig.WhatsAppAppSecret,
		WebhookVerifyToken: appConfig.WhatsAppVerifyToken,
	})

	var sched *scheduler.Scheduler
	if appConfig.SchedulerEnabled {
		sched, err = buildScheduler(appConfig, svcs)
		if err != nil {
			return fmt.Errorf("failed to build scheduler: %w", err)
		}
		sched.Start()
		log.Infow("scheduler started", "jobs", sched.Jobs())
	}

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Cortex backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		log.Infow("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			log.Warnf("scheduler did not stop cleanly: %v", err)
		}
	}
	return srv.Shutdown(ctx)
}

// buildSender fans out to WhatsApp when configured, falling back to the log,
// plus e-mail when SMTP is set.
func buildSender(cfg *config.Config, httpClient *http.Client) notify.Sender {
	var senders []notify.Sender
	if cfg.WhatsAppEnabled() {
		senders = append(senders, notify.NewWhatsAppSender(httpClient, cfg.WhatsAppAPIURL, cfg.WhatsAppToken, cfg.WhatsAppPhoneID))
	} else {
		logger.Get().Warn("WhatsApp credentials not set, outbound messages are only logged")
		senders = append(senders, notify.LogSender{})
	}

	if cfg.SMTPEnabled() {
		port, err := strconv.Atoi(cfg.SMTPPort)
		if err != nil {
			logger.Get().Warnw("invalid SMTP_PORT, e-mail disabled", "port", cfg.SMTPPort)
		} else {
			senders = append(senders, notify.NewEmailSender(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom))
		}
	}
	return notify.NewMultiSender(senders...)
}

func buildScheduler(cfg *config.Config, svcs *server.Services) (*scheduler.Scheduler, error) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.UTC
	}

	return scheduler.New(loc,
		scheduler.Job{
			Name:    "price_refresh",
			Spec:    cfg.PriceRefreshSpec,
			Timeout: 2 * time.Minute,
			Run: func(ctx context.Context) error {
				result, err := svcs.Portfolio.RefreshPrices(ctx)
				if err != nil {
					return err
				}
				logger.Get().Infow("prices refreshed", "result", result)
				return nil
			},
		},
		scheduler.Job{
			Name:    "anomaly_scan",
			Spec:    cfg.AnomalyScanSpec,
			Timeout: 5 * time.Minute,
			Run: func(ctx context.Context) error {
				result, err := svcs.Alerts.ScanAnomalies(ctx, time.Now())
				if err != nil {
					return err
				}
				logger.Get().Infow("anomaly scan finished", "users", result.Users, "flagged", result.Flagged, "notified", result.Notified)
				return nil
			},
		},
	)
}
