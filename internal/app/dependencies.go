package app

import (
	"fmt"

	"github.com/comanda/backoffice/internal/cache"
	"github.com/comanda/backoffice/internal/config"
	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/handlers"
	"github.com/comanda/backoffice/internal/repository/catalog"
	"github.com/comanda/backoffice/internal/repository/postgres"
	"github.com/comanda/backoffice/internal/service"
	"github.com/comanda/backoffice/internal/utils/jwt"
	"github.com/comanda/backoffice/internal/utils/password"
	"github.com/comanda/backoffice/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// repositories holds the application's data access layer.
type repositories struct {
	user       domain.UserRepository
	coupon     domain.CouponRepository
	settlement domain.SettlementRepository
	methods    domain.PaymentMethodRepository
}

// services holds the application's business logic layer.
type services struct {
	auth       *service.AuthService
	coupon     *service.CouponService
	checkout   *service.CheckoutService
	settlement *service.SettlementService
	analytics  domain.AnalyticsClient
}

// handlerSet holds the application's HTTP handlers.
type handlerSet struct {
	auth     *handlers.AuthHandler
	checkout *handlers.CheckoutHandler
	health   *handlers.HealthHandler
}

// dependencies wires repositories, services and handlers together.
type dependencies struct {
	repos      *repositories
	services   *services
	handlers   *handlerSet
	jwtManager *jwt.Manager
	workerPool *worker.Pool
}

// initDependencies constructs the full dependency graph.
func initDependencies(cfg *config.Config, dbPool *pgxpool.Pool, logger *zap.Logger) (*dependencies, error) {
	methods, err := cfg.PaymentMethods()
	if err != nil {
		return nil, fmt.Errorf("failed to load payment methods: %w", err)
	}
	methodRepo, err := catalog.NewMethodRepository(methods)
	if err != nil {
		return nil, fmt.Errorf("invalid payment method catalog: %w", err)
	}

	repos := &repositories{
		user:       postgres.NewUserRepository(dbPool),
		coupon:     postgres.NewCouponRepository(dbPool),
		settlement: postgres.NewSettlementRepository(dbPool),
		methods:    methodRepo,
	}

	passwordHasher := password.NewBCryptHasher(password.DefaultCost)
	jwtManager := jwt.NewManager(cfg.JWTSecret, cfg.JWTTokenTTL)

	idemStore := initIdempotencyStore(cfg, logger)

	analytics := service.NewAnalyticsClient(cfg.AnalyticsAddress)
	workerPoolConfig := worker.PoolConfig{
		Workers:   cfg.WorkerPoolSize,
		QueueSize: cfg.WorkerQueueSize,
	}
	workerPool := worker.NewPool(workerPoolConfig, analytics, logger)

	authServiceConfig := service.AuthServiceConfig{
		MinPasswordLength: cfg.MinPasswordLength,
	}
	couponService := service.NewCouponService(repos.coupon, cfg.CouponLookupTimeout, logger)
	checkoutService := service.NewCheckoutService(repos.methods, couponService, logger)
	svcs := &services{
		auth:       service.NewAuthService(repos.user, passwordHasher, jwtManager, authServiceConfig),
		coupon:     couponService,
		checkout:   checkoutService,
		settlement: service.NewSettlementService(checkoutService, repos.settlement, idemStore, workerPool, cfg.IdempotencyTTL, logger),
		analytics:  analytics,
	}

	hdlrs := &handlerSet{
		auth:     handlers.NewAuthHandler(svcs.auth, logger),
		checkout: handlers.NewCheckoutHandler(svcs.checkout, svcs.settlement, svcs.coupon, repos.methods, repos.settlement, logger),
		health:   handlers.NewHealthHandler(dbPool, logger),
	}

	return &dependencies{
		repos:      repos,
		services:   svcs,
		handlers:   hdlrs,
		jwtManager: jwtManager,
		workerPool: workerPool,
	}, nil
}

// initIdempotencyStore prefers Redis when configured and falls back to the
// in-memory store, which is enough for a single instance.
func initIdempotencyStore(cfg *config.Config, logger *zap.Logger) cache.IdempotencyStore {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory idempotency store")
		return cache.NewMemoryIdempotencyStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	logger.Info("using redis idempotency store", zap.String("addr", cfg.RedisAddr))
	return cache.NewRedisIdempotencyStore(client)
}
