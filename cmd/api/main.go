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

	"lead_management_backend/internal/auth"
	authrepo "lead_management_backend/internal/auth/repository"
	authservice "lead_management_backend/internal/auth/service"
	"lead_management_backend/internal/auth/token"
	"lead_management_backend/internal/events"
	apphttp "lead_management_backend/internal/http"
	"lead_management_backend/internal/http/router"
	"lead_management_backend/internal/leads"
	leadrepo "lead_management_backend/internal/leads/repository"
	"lead_management_backend/platform/cache"
	"lead_management_backend/platform/config"
	"lead_management_backend/platform/db"
	"lead_management_backend/platform/httpkit"
	"lead_management_backend/platform/logger"
	"lead_management_backend/platform/metrics"
	"lead_management_backend/platform/mongodb"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

// stores bundles the record stores for the configured driver.
type stores struct {
	leads  leadrepo.LeadStore
	users  authrepo.UserStore
	health apphttp.HealthChecker
	close  func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "store", cfg.GetStoreDriver())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize record store", "error", err)
		panic("failed to initialize record store: " + err.Error())
	}
	defer st.close()

	var revocations *token.RevocationStore
	if cfg.IsRedisEnabled() {
		client, err := cache.NewClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			panic("failed to connect to redis: " + err.Error())
		}
		defer func() { _ = client.Close() }()
		revocations = token.NewRevocationStore(client)
		log.Info("session revocation list enabled")
	} else {
		log.Warn("REDIS_URL not configured; logout will not revoke outstanding sessions")
	}

	metricsManager := metrics.NewManager(metrics.WithRuntimeCollectors())

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Interfaces stay nil unless Redis is configured.
	var (
		revocationChecker httpkit.RevocationChecker
		sessionRevoker    authservice.Revoker
	)
	if revocations != nil {
		revocationChecker = revocations
		sessionRevoker = revocations
	}

	authModule := auth.NewModule(st.users, sessionRevoker, cfg, metricsManager, log)
	leadsModule := leads.NewModule(st.leads, eventBus, metricsManager, cfg.GetStoreTimeout(), log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:      cfg,
		Logger:      log,
		Health:      st.health,
		Metrics:     metricsManager,
		Revocations: revocationChecker,
		EventBus:    eventBus,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err, ok := <-srvErr:
		if ok && err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (stores, error) {
	switch cfg.GetStoreDriver() {
	case config.StoreDriverMongo:
		return openMongoStores(ctx, cfg, log)
	default:
		return openPostgresStores(ctx, cfg, log)
	}
}

func openPostgresStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (stores, error) {
	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		return stores{}, err
	}
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		pool.Close()
		return stores{}, err
	}
	log.Info("database migrations complete")

	return stores{
		leads:  leadrepo.NewPostgresStore(pool),
		users:  authrepo.NewPostgresStore(pool),
		health: db.NewPoolAdapter(pool),
		close:  pool.Close,
	}, nil
}

func openMongoStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (stores, error) {
	var client *mongodb.Client
	if err := withRetry(ctx, log, "mongodb connection", 5, 2*time.Second, func() error {
		c, err := mongodb.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		client = c
		return nil
	}); err != nil {
		return stores{}, err
	}
	log.Info("mongodb connection established", "database", cfg.GetMongoDatabase())

	closeClient := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Close(closeCtx)
	}

	leadStore := leadrepo.NewMongoStore(client.Collection(leadrepo.LeadsCollection))
	userStore := authrepo.NewMongoStore(client.Collection(authrepo.UsersCollection))
	if err := leadStore.EnsureIndexes(ctx); err != nil {
		closeClient()
		return stores{}, fmt.Errorf("ensure lead indexes: %w", err)
	}
	if err := userStore.EnsureIndexes(ctx); err != nil {
		closeClient()
		return stores{}, fmt.Errorf("ensure user indexes: %w", err)
	}

	return stores{
		leads:  leadStore,
		users:  userStore,
		health: client,
		close:  closeClient,
	}, nil
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
