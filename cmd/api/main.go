package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/comanda-ar/comanda-gateway/api/controllers"
	"github.com/comanda-ar/comanda-gateway/api/routes"
	cartsvc "github.com/comanda-ar/comanda-gateway/internal/cart"
	checkoutsvc "github.com/comanda-ar/comanda-gateway/internal/checkout"
	paymentsvc "github.com/comanda-ar/comanda-gateway/internal/payments"
	"github.com/comanda-ar/comanda-gateway/pkg/backend"
	"github.com/comanda-ar/comanda-gateway/pkg/config"
	"github.com/comanda-ar/comanda-gateway/pkg/db"
	"github.com/comanda-ar/comanda-gateway/pkg/db/models"
	"github.com/comanda-ar/comanda-gateway/pkg/logger"
	"github.com/comanda-ar/comanda-gateway/pkg/metrics"
	"github.com/comanda-ar/comanda-gateway/pkg/publicip"
	"github.com/comanda-ar/comanda-gateway/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var (
		storage       cartsvc.Storage
		storagePinger controllers.Pinger
	)
	if cfg.Redis.Enabled() && !cfg.FeatureFlags.UseSQLite {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		storage = cartsvc.NewRedisStorage(redisClient, cfg.Session.CartTTL)
		storagePinger = redisClient
	} else {
		dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()
		if cfg.FeatureFlags.AutoMigrate {
			if err := dbClient.AutoMigrate(&models.KVState{}); err != nil {
				logg.Error(context.Background(), "failed to migrate database", err)
				os.Exit(1)
			}
		}
		storage = cartsvc.NewGormStorage(dbClient.DB())
		storagePinger = dbClient
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	gatewayMetrics := metrics.NewGatewayMetrics(registry)

	backendClient, err := backend.NewClient(context.Background(), cfg.Backend, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create backend client", err)
		os.Exit(1)
	}
	ipClient := publicip.NewClient(cfg.PublicIP, logg)

	cartService, err := cartsvc.NewService(storage, gatewayMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	checkoutService, err := checkoutsvc.NewService(cartService, backendClient, ipClient, cfg.Checkout, gatewayMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}
	paymentService, err := paymentsvc.NewService(cartService, backendClient, gatewayMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting gateway server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, storagePinger, cartService, checkoutService, paymentService, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "gateway server stopped unexpectedly", err)
		os.Exit(1)
	}
}
