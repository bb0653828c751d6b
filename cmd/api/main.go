package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/product-service/internal/api/http"
	"github.com/spec-kit/product-service/internal/api/http/handlers"
	"github.com/spec-kit/product-service/internal/auth"
	"github.com/spec-kit/product-service/internal/config"
	"github.com/spec-kit/product-service/internal/events"
	"github.com/spec-kit/product-service/internal/observability"
	"github.com/spec-kit/product-service/internal/persistence"
	"github.com/spec-kit/product-service/internal/repository"
	"github.com/spec-kit/product-service/internal/repository/memory"
	mongorepo "github.com/spec-kit/product-service/internal/repository/mongo"
	pgrepo "github.com/spec-kit/product-service/internal/repository/postgres"
	"github.com/spec-kit/product-service/internal/service"
	"github.com/spec-kit/product-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("product_service")

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err), zap.String("driver", cfg.Store.Driver))
	}
	defer store.close()

	checks := store.checks
	throttle := auth.NoopThrottle()
	if cfg.Redis.Enabled {
		redis := persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		throttle = auth.NewRedisThrottle(redis.Client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow())
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Ping: redis.Ping})
	}

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessTTL(),
		RefreshTTL:    cfg.Auth.RefreshTTL(),
		Issuer:        cfg.Auth.Issuer,
	})
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	accountService := service.NewAccountService(service.AccountDependencies{
		AccountRepo: store.accounts,
		Hasher:      auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens:      tokens,
		Throttle:    throttle,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	productService := service.NewProductService(store.products)

	if cfg.Auth.AdminEmail != "" {
		if _, err := accountService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			logger.Fatal("failed to bootstrap admin account", zap.Error(err))
		}
	}

	gates := auth.NewGates(tokens, auth.NewBasicVerifier(accountService.Credentials()), metrics)

	app := httptransport.NewApp(httptransport.AppOptions{
		Name:      cfg.App.Name,
		BodyLimit: cfg.App.BodyLimitBytes,
		Timeout:   cfg.App.RequestTimeout(),
		Logger:    logger,
		Metrics:   metrics,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Users:    handlers.NewUsersHandler(accountService),
		Products: handlers.NewProductsHandler(productService),
		Gates:    gates,
		Metrics:  metrics,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("graceful shutdown", zap.Error(err))
	}
}

type recordStore struct {
	accounts repository.AccountRepository
	products repository.ProductRepository
	checks   []handlers.DependencyCheck
	close    func()
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*recordStore, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		pool := pg.PoolHandle()
		return &recordStore{
			accounts: pgrepo.NewAccountRepository(pool),
			products: pgrepo.NewProductRepository(pool),
			checks:   []handlers.DependencyCheck{{Name: "postgres", Ping: pg.Ping}},
			close:    pg.Close,
		}, nil

	case config.StoreDriverMongo:
		m, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		return &recordStore{
			accounts: mongorepo.NewAccountRepository(m.DB),
			products: mongorepo.NewProductRepository(m.DB),
			checks:   []handlers.DependencyCheck{{Name: "mongo", Ping: m.Ping}},
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				m.Close(closeCtx)
			},
		}, nil

	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return &recordStore{
			accounts: memory.NewAccountRepository(),
			products: memory.NewProductRepository(),
			close:    func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
