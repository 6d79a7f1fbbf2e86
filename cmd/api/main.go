package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vendio/catalog-backend/api/routes"
	"github.com/vendio/catalog-backend/internal/categories"
	"github.com/vendio/catalog-backend/internal/checkout"
	"github.com/vendio/catalog-backend/internal/inventory"
	"github.com/vendio/catalog-backend/internal/modifiers"
	"github.com/vendio/catalog-backend/internal/products"
	"github.com/vendio/catalog-backend/internal/units"
	"github.com/vendio/catalog-backend/pkg/config"
	"github.com/vendio/catalog-backend/pkg/db"
	"github.com/vendio/catalog-backend/pkg/logger"
	"github.com/vendio/catalog-backend/pkg/metrics"
	"github.com/vendio/catalog-backend/pkg/migrate"
	"github.com/vendio/catalog-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "catalog-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "catalog-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	catalogMetrics := metrics.NewCatalogMetrics(registry)

	gdb := dbClient.DB()
	unitRepo := units.NewRepository(gdb)
	categoryRepo := categories.NewRepository(gdb)
	productRepo := products.NewRepository(gdb)
	inventoryRepo := inventory.NewRepository(gdb)
	modifierRepo := modifiers.NewRepository(gdb)

	inventoryService, err := inventory.NewService(inventoryRepo, dbClient, productRepo, logg, catalogMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	skuGen := products.NewSkuGenerator(gdb, cfg.Catalog.SKUPrefix, cfg.Catalog.SKUMaxAttempts, catalogMetrics)

	productService, err := products.NewService(
		productRepo,
		dbClient,
		unitRepo,
		categoryRepo,
		modifierRepo,
		inventoryService,
		skuGen,
		cfg.Catalog,
		logg,
		catalogMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	modifierService, err := modifiers.NewService(modifierRepo, dbClient, cfg.Catalog)
	if err != nil {
		logg.Error(context.Background(), "failed to create modifier service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(productRepo, modifierRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
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
	logg.Info(ctx, "starting catalog api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			productService,
			inventoryService,
			modifierService,
			checkoutService,
			unitRepo,
			categoryRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "catalog api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
