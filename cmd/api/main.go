package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vinvest/internal/ai"
	"vinvest/internal/config"
	"vinvest/internal/database"
	"vinvest/internal/handlers"
	"vinvest/internal/identity"
	"vinvest/internal/logger"
	"vinvest/internal/mailer"
	"vinvest/internal/provider"
	"vinvest/internal/router"
	"vinvest/internal/scheduler"
	"vinvest/internal/services"
	"vinvest/internal/validator"
)

// @title           Vinvest API
// @version         1.0
// @description     Vinvest tracks stock portfolios with live market data, news and AI-generated advice.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

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
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("closing database", "error", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// External clients
	quotes := provider.NewYahooProvider(appConfig.QuoteTimeout, appConfig.QuoteRateLimit)

	generator, err := ai.NewGeminiGenerator(ctx, appConfig.GeminiAPIKey, appConfig.GeminiModel, appConfig.AITimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize AI backend: %w", err)
	}
	if appConfig.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set; chat fallback and advice will return an error text")
	}

	var verifier identity.Verifier = identity.DisabledVerifier{}
	if appConfig.FirebaseCredentialsFile != "" {
		verifier, err = identity.NewFirebaseVerifier(ctx, appConfig.FirebaseCredentialsFile)
		if err != nil {
			return fmt.Errorf("failed to initialize identity provider: %w", err)
		}
	} else {
		log.Warn("FIREBASE_CREDENTIALS_FILE is not set; /login will reject every request")
	}

	mail := mailer.NewSMTPMailer(appConfig.SMTPHost, appConfig.SMTPPort,
		appConfig.EmailUser, appConfig.EmailPassword, appConfig.ContactRecipient)

	newsLocation, err := time.LoadLocation(appConfig.NewsTimezone)
	if err != nil {
		log.Warnw("invalid NEWS_TIMEZONE, using local time", "value", appConfig.NewsTimezone, "error", err)
		newsLocation = time.Local
	}

	// Initialize services
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	holdingService := services.NewHoldingService(db, time.Now)
	riskService := services.NewRiskProfileService(db)
	valuationService := services.NewValuationService(holdingService, quotes, appConfig.ValuationConcurrency, time.Now)
	newsService := services.NewNewsService(holdingService, quotes, newsLocation, appConfig.ValuationConcurrency)
	advisoryService := services.NewAdvisoryService(db, valuationService, newsService, riskService, generator, time.Now)
	chatService := services.NewChatService(generator)
	snapshotService := services.NewPortfolioSnapshotService(db, holdingService, valuationService)

	// Initialize handlers
	validator.Register()
	engine := router.New(router.Handlers{
		Auth:     handlers.NewAuthHandler(userService, verifier, auditService),
		Holding:  handlers.NewHoldingHandler(holdingService, valuationService, auditService),
		Market:   handlers.NewMarketHandler(quotes, newsService),
		Advisor:  handlers.NewAdvisorHandler(chatService, advisoryService),
		Risk:     handlers.NewRiskHandler(riskService, auditService),
		Contact:  handlers.NewContactHandler(mail),
		Snapshot: handlers.NewPortfolioSnapshotHandler(snapshotService, time.Now),
	}, router.Options{
		RequireSessionToken: appConfig.RequireSessionToken,
		PipelineAPIKey:      appConfig.PipelineAPIKey,
		HealthCheck:         dbManager.Ping,
	})

	// Snapshot scheduler
	snapshots, err := scheduler.New(appConfig.SnapshotSchedule, snapshotService, log, 10*time.Minute)
	if err != nil {
		return fmt.Errorf("failed to create snapshot scheduler: %w", err)
	}
	snapshots.Start()

	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Vinvest backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	snapshots.Stop(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
