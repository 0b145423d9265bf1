package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/comanda/backoffice/internal/domain"
)

// Config holds the application configuration.
type Config struct {
	RunAddress       string        // listen address
	DatabaseURI      string        // postgres connection URI
	AnalyticsAddress string        // analytics endpoint, empty disables delivery
	RedisAddr        string        // redis address, empty falls back to in-memory idempotency
	RedisPassword    string
	JWTSecret        string
	JWTTokenTTL      time.Duration
	LogLevel         string

	// Analytics worker pool
	WorkerPoolSize  int
	WorkerQueueSize int

	// Checkout
	CouponLookupTimeout time.Duration // upper bound on a coupon lookup
	IdempotencyTTL      time.Duration // how long settle replays are recognized
	PaymentMethodsFile  string        // optional JSON catalog override

	// Validation
	MinPasswordLength int
}

// Load reads configuration from flags and environment variables.
// Environment variables take precedence over flags.
func Load() (*Config, error) {
	cfg := &Config{
		JWTTokenTTL:         24 * time.Hour,
		LogLevel:            "info",
		WorkerPoolSize:      3,
		WorkerQueueSize:     100,
		CouponLookupTimeout: 3 * time.Second,
		IdempotencyTTL:      24 * time.Hour,
		MinPasswordLength:   6,
	}

	flag.StringVar(&cfg.RunAddress, "a", ":8080", "address and port to run server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.AnalyticsAddress, "r", "", "analytics endpoint address")
	flag.Parse()

	if envRunAddr, ok := os.LookupEnv("RUN_ADDRESS"); ok {
		cfg.RunAddress = envRunAddr
	}

	if envDBURI, ok := os.LookupEnv("DATABASE_URI"); ok {
		cfg.DatabaseURI = envDBURI
	}

	if envAnalyticsAddr, ok := os.LookupEnv("ANALYTICS_ADDRESS"); ok {
		cfg.AnalyticsAddress = envAnalyticsAddr
	}

	if envRedisAddr, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.RedisAddr = envRedisAddr
	}
	if envRedisPassword, ok := os.LookupEnv("REDIS_PASSWORD"); ok {
		cfg.RedisPassword = envRedisPassword
	}

	// JWT secret comes from env only, never from flags.
	if envJWTSecret, ok := os.LookupEnv("JWT_SECRET"); ok {
		cfg.JWTSecret = envJWTSecret
	} else {
		cfg.JWTSecret = "default-secret-key-change-in-production"
	}

	if envLogLevel, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = envLogLevel
	}

	if envWorkerPoolSize, ok := os.LookupEnv("WORKER_POOL_SIZE"); ok {
		if size, err := strconv.Atoi(envWorkerPoolSize); err == nil && size > 0 {
			cfg.WorkerPoolSize = size
		}
	}

	if envWorkerQueueSize, ok := os.LookupEnv("WORKER_QUEUE_SIZE"); ok {
		if size, err := strconv.Atoi(envWorkerQueueSize); err == nil && size > 0 {
			cfg.WorkerQueueSize = size
		}
	}

	if envLookupTimeout, ok := os.LookupEnv("COUPON_LOOKUP_TIMEOUT"); ok {
		if timeout, err := time.ParseDuration(envLookupTimeout); err == nil && timeout > 0 {
			cfg.CouponLookupTimeout = timeout
		}
	}

	if envIdemTTL, ok := os.LookupEnv("IDEMPOTENCY_TTL"); ok {
		if ttl, err := time.ParseDuration(envIdemTTL); err == nil && ttl > 0 {
			cfg.IdempotencyTTL = ttl
		}
	}

	if envMethodsFile, ok := os.LookupEnv("PAYMENT_METHODS_FILE"); ok {
		cfg.PaymentMethodsFile = envMethodsFile
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI is required (use -d flag or DATABASE_URI env)")
	}

	return cfg, nil
}

// PaymentMethods returns the configured payment method catalog: the JSON
// file when one is set, the built-in defaults otherwise.
func (c *Config) PaymentMethods() ([]domain.PaymentMethod, error) {
	if c.PaymentMethodsFile == "" {
		return DefaultPaymentMethods(), nil
	}

	data, err := os.ReadFile(c.PaymentMethodsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment methods file: %w", err)
	}

	var methods []domain.PaymentMethod
	if err := json.Unmarshal(data, &methods); err != nil {
		return nil, fmt.Errorf("failed to parse payment methods file: %w", err)
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("payment methods file %s defines no methods", c.PaymentMethodsFile)
	}

	return methods, nil
}

// DefaultPaymentMethods is the catalog used when no file is configured.
func DefaultPaymentMethods() []domain.PaymentMethod {
	return []domain.PaymentMethod{
		{ID: "cash", Name: "Dinheiro", RequiresChange: true},
		{ID: "credit_card", Name: "Cartão de Crédito", AllowsInstallments: true, MaxInstallments: 12, ProcessingFeePercent: 2.99},
		{ID: "debit_card", Name: "Cartão de Débito", ProcessingFeePercent: 1.99},
		{ID: "pix", Name: "Pix"},
	}
}
