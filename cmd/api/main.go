// cmd/api/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alma-store/storefront-api/internal/config"
	"github.com/alma-store/storefront-api/internal/domain/cart"
	"github.com/alma-store/storefront-api/internal/domain/payment"
	"github.com/alma-store/storefront-api/internal/infrastructure/database/postgres"
	"github.com/alma-store/storefront-api/internal/infrastructure/database/redis"
	"github.com/alma-store/storefront-api/internal/interfaces/http"
	"github.com/alma-store/storefront-api/internal/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging)
	log.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	deps := http.Dependencies{
		HealthChecks: map[string]http.HealthChecker{},
	}

	var (
		cartRepo cart.Repository = cart.NewMemoryRepository()
		guard    payment.Guard   = payment.NewMemoryGuard()
	)

	// Connect to Redis
	if cfg.UsesRedis() {
		redisClient, err := redis.NewConnection(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Info("✅ Redis connection established successfully")

		deps.Redis = redisClient.GetClient()
		deps.HealthChecks["redis"] = redisClient
		guard = redis.NewPaymentGuard(redisClient.GetClient(), cfg.Payment.LockTTL)
		cartRepo = redis.NewCartRepository(redisClient.GetClient(), cfg.Cart.Namespace, cfg.Cart.TTL)
	}

	// Connect to database
	if cfg.UsesPostgres() {
		db, err := postgres.NewConnection(cfg, log)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Health(); err != nil {
			log.Fatalf("Database health check failed: %v", err)
		}

		if err := postgres.NewMigration(db.GetDB(), log).RunAutoMigrations(); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}

		deps.HealthChecks["database"] = db
		cartRepo = postgres.NewCartRepository(db.GetDB(), cfg.Cart.Namespace)
	}

	log.WithField("storage", cfg.Cart.Storage).Info("Cart storage selected")

	registry := cart.NewRegistry(cartRepo, log, cart.WithIdleTTL(cfg.Cart.IdleTTL))
	deps.Carts = cart.NewService(registry, log)
	deps.Reconciler = payment.NewReconciler(
		payment.NewEpaycoService(cfg.Payment.ValidationURL, cfg.Payment.VerifyTimeout, log),
		guard,
		payment.ReconcilerConfig{
			AcceptedStates:  cfg.Payment.AcceptedStates,
			DefaultCurrency: cfg.Payment.DefaultCurrency,
			Timeout:         cfg.Payment.VerifyTimeout,
		},
		log,
	)

	log.Info("✅ All systems operational!")

	server := http.NewServer(cfg, log, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	waitForShutdown(log)

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	log.Info("✅ Server shutdown completed")
}

func waitForShutdown(log logrus.FieldLogger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("👋 Shutting down gracefully...")
}
