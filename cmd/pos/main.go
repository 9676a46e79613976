package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/abed1srour/POS-backend/internal/app"
	"github.com/abed1srour/POS-backend/internal/auth"
	"github.com/abed1srour/POS-backend/internal/catalog"
	"github.com/abed1srour/POS-backend/internal/customers"
	"github.com/abed1srour/POS-backend/internal/employees"
	"github.com/abed1srour/POS-backend/internal/observability"
	"github.com/abed1srour/POS-backend/internal/orders"
	"github.com/abed1srour/POS-backend/internal/payments"
	"github.com/abed1srour/POS-backend/internal/platform/db"
	"github.com/abed1srour/POS-backend/internal/procurement"
	"github.com/abed1srour/POS-backend/internal/refunds"
	"github.com/abed1srour/POS-backend/internal/shared"
	"github.com/abed1srour/POS-backend/internal/suppliers"
	"github.com/abed1srour/POS-backend/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolConfig{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(dbpool)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	refreshStore := auth.NewRefreshStore(redisClient, cfg.RefreshTokenTTL)
	authService := auth.NewService(authRepo, tokenManager, refreshStore)
	authHandler := auth.NewHandler(logger, authService)

	auditRecorder := shared.NewAuditRecorder(dbpool)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	customersHandler := customers.NewHandler(logger, customers.NewRepository(dbpool))
	suppliersHandler := suppliers.NewHandler(logger, suppliers.NewRepository(dbpool))

	employeesService := employees.NewService(employees.NewRepository(dbpool))
	employeesHandler := employees.NewHandler(logger, employeesService, auditRecorder)

	ordersRepo := orders.NewRepository(dbpool)
	ordersService := orders.NewService(ordersRepo)
	ordersHandler := orders.NewHandler(logger, ordersService, auditRecorder)

	paymentsRepo := payments.NewRepository(dbpool)
	paymentsService := payments.NewService(paymentsRepo)
	paymentsHandler := payments.NewHandler(logger, paymentsService, auditRecorder)

	procurementRepo := procurement.NewRepository(dbpool)
	procurementService := procurement.NewService(procurementRepo, paymentsService)
	procurementHandler := procurement.NewHandler(logger, procurementService, auditRecorder)

	refundsService := refunds.NewService(refunds.NewRepository(dbpool))
	refundsHandler := refunds.NewHandler(logger, refundsService, auditRecorder)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthService:        authService,
		AuthHandler:        authHandler,
		CatalogHandler:     catalogHandler,
		CustomersHandler:   customersHandler,
		SuppliersHandler:   suppliersHandler,
		EmployeesHandler:   employeesHandler,
		OrdersHandler:      ordersHandler,
		PaymentsHandler:    paymentsHandler,
		ProcurementHandler: procurementHandler,
		RefundsHandler:     refundsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
