package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/fulfillment"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/inventory"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/ledger"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/reconcile"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/referral"

	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/api/handler"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/api/routes"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/database"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/database/migration"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/gateway"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/logger"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/repository"
	timeProvider "github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/time"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()

	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            database.ParsePort(cfg.Database.Port),
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Logger.Level,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryDelay:      cfg.Database.RetryDelay,
	}

	conn, err := database.Connect(dbConfig, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() { _ = conn.Close() }()

	migrationMgr := migration.NewManager(conn.DB, appLogger, tp)
	if err := migrationMgr.MigrateAll(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Repositories
	txnRepo := repository.NewTransactionRepository(conn.DB, appLogger)
	orderRepo := repository.NewOrderRepository(conn.DB, appLogger)
	codeRepo := repository.NewAccessCodeRepository(conn.DB, tp, appLogger)
	customerRepo := repository.NewCustomerRepository(conn.DB, appLogger)
	lockRepo := repository.NewAccountLockRepository(conn.DB, tp, appLogger)

	uow := database.NewUnitOfWork(conn.DB, appLogger, tp)

	if err := migration.SeedCustomers(context.Background(), customerRepo, tp, appLogger); err != nil {
		appLogger.Error("Failed to seed customers", map[string]any{
			"error": err.Error(),
		})
	}

	// Use cases
	lockTimeout := time.Duration(cfg.Ledger.LockTimeoutMs) * time.Millisecond
	ldgr := ledger.New(uow, txnRepo, lockRepo, tp, appLogger, lockTimeout)

	allocator := inventory.NewAllocator(codeRepo, appLogger)

	paymentGateway := gateway.NewHTTPPaymentGateway(gateway.Config{
		Name:    cfg.Payment.Gateway,
		BaseURL: cfg.Payment.BaseURL,
		APIKey:  cfg.Payment.APIKey,
		Timeout: cfg.Payment.RequestTimeout,
	}, appLogger)

	verifier := reconcile.NewSignatureVerifier(cfg.Payment.WebhookSecret)
	reconciler := reconcile.New(ldgr, txnRepo, paymentGateway, verifier, reconcile.Config{
		MinDepositCents: cfg.Payment.MinDepositCents,
		MaxDepositCents: cfg.Payment.MaxDepositCents,
		InvoiceTimeout:  cfg.Payment.InvoiceTimeout,
	}, tp, appLogger)

	accrual := referral.New(ldgr, customerRepo, referral.Config{
		CommissionRate:     cfg.Referral.CommissionRate,
		MinimumPayoutCents: cfg.Referral.MinimumPayoutCents,
	}, tp, appLogger)

	engine := fulfillment.NewEngine(uow, orderRepo, txnRepo, ldgr, allocator, accrual, tp, appLogger)

	// HTTP layer
	paymentHandler := handler.NewPaymentHandler(reconciler, appLogger)
	orderHandler := handler.NewOrderHandler(engine, appLogger)
	accountHandler := handler.NewAccountHandler(ldgr, appLogger)

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, paymentHandler, orderHandler, accountHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr": server.Addr,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}
