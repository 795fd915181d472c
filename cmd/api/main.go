package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fundflow/config"
	httpHandler "fundflow/internal/adapter/http/handler"
	"fundflow/internal/adapter/storage/memory"
	pgStorage "fundflow/internal/adapter/storage/postgres"
	redisStorage "fundflow/internal/adapter/storage/redis"
	"fundflow/internal/core/ports"
	"fundflow/internal/gateway"
	"fundflow/internal/metrics"
	"fundflow/internal/service"
	"fundflow/internal/tradingengine"
	"fundflow/internal/worker"
	"fundflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("storage", cfg.Storage.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting fundflow")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Ledger
	var (
		repos     service.Repositories
		auditRepo ports.AuditRepository
		checkers  []ports.HealthChecker
	)
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("Using in-memory ledger, state is lost on exit")
		store := memory.NewStore()
		repos = service.Repositories{
			Transactions:   store.Transactions(),
			Attempts:       store.Attempts(),
			History:        store.History(),
			Gateways:       store.Gateways(),
			Accounts:       store.TradingAccounts(),
			PaymentMethods: store.PaymentMethods(),
			Transactor:     store,
		}
		auditRepo = store.Audits()
	default:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		if err := pgStorage.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
		log.Info().Msg("PostgreSQL connected")

		repos = service.Repositories{
			Transactions:   pgStorage.NewTransactionRepo(pool),
			Attempts:       pgStorage.NewAttemptRepo(pool),
			History:        pgStorage.NewHistoryRepo(pool),
			Gateways:       pgStorage.NewGatewayRepo(pool),
			Accounts:       pgStorage.NewTradingAccountRepo(pool),
			PaymentMethods: pgStorage.NewPaymentMethodRepo(pool),
			Transactor:     pgStorage.NewTransactor(pool),
		}
		auditRepo = pgStorage.NewAuditRepo(pool)
		checkers = append(checkers, pgStorage.NewHealthCheck(pool))
	}

	// Redis: provider tokens, webhook replay guard, rate limits
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")
	checkers = append(checkers, redisStorage.NewHealthCheck(rdb))

	// Secrets
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	cipher, err := service.NewDeterministicCipher(cfg.Cipher.KeySecret, cfg.Cipher.IVSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize account cipher")
	}
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// External systems
	engine := tradingengine.New(tradingengine.Config{
		BaseURL:         cfg.TradingEngine.BaseURL,
		ManagerLogin:    cfg.TradingEngine.ManagerLogin,
		ManagerPassword: cfg.TradingEngine.ManagerPassword,
		Group:           cfg.TradingEngine.Group,
		Timeout:         cfg.TradingEngine.Timeout,
	}, m, log)
	registry := gateway.DefaultRegistry(gateway.Options{
		HTTPClient: &http.Client{Timeout: cfg.Gateway.HTTPTimeout},
		Decrypter:  encSvc,
		Tokens:     redisStorage.NewTokenCache(rdb),
		TokenTTL:   cfg.Gateway.TokenTTL,
		Metrics:    m,
		Log:        log,
	})
	log.Info().Strs("providers", registry.Providers()).Msg("Payment gateways registered")

	// Services
	workers := worker.NewPool(cfg.Reconciliation.Workers, log)
	accountSvc := service.NewAccountService(repos.Accounts, repos.PaymentMethods, cipher, engine, cfg.TradingEngine.Group, log)
	ids := service.NewIDGenerator(repos.Attempts, cfg.Reconciliation.IDLength, log)
	reconSvc := service.NewReconciliationService(repos, registry, engine, accountSvc, ids, cfg.Reconciliation.AutoApproveLimit, m, log)
	statusSvc := service.NewStatusService(repos, registry, reconSvc, workers, log)
	webhookSvc := service.NewWebhookService(repos, registry, statusSvc, redisStorage.NewWebhookDeduper(rdb),
		cfg.Reconciliation.WebhookDedupeTTL, m, log)
	querySvc := service.NewQueryService(repos, registry)
	auditSvc := service.NewAuditService(auditRepo, log)

	sweeper := service.NewSweeper(repos.Transactions, statusSvc, service.SweeperConfig{
		Interval:  cfg.Reconciliation.SweepInterval,
		MinAge:    cfg.Reconciliation.SweepMinAge,
		BatchSize: cfg.Reconciliation.SweepBatchSize,
	}, m, log)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(ctx)
	}()

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		ReconSvc:       reconSvc,
		StatusSvc:      statusSvc,
		QuerySvc:       querySvc,
		AccountSvc:     accountSvc,
		WebhookSvc:     webhookSvc,
		TokenSvc:       tokenSvc,
		AuditSvc:       auditSvc,
		RateLimitStore: redisStorage.NewRateLimitStore(rdb),
		HealthCheckers: checkers,
		Metrics:        m,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdown(srv, stop, sweepDone, workers, log)
	log.Info().Msg("Server exited")
}

// shutdown drains HTTP first so no new work is accepted, then stops the sweeper and the refresh pool.
func shutdown(srv *http.Server, stopSweep context.CancelFunc, sweepDone <-chan struct{}, workers *worker.Pool, log zerolog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopSweep()
	select {
	case <-sweepDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Sweeper did not stop in time")
	}
	workers.Stop()
}
