package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kusinaops/inventory-service/config"
	"github.com/kusinaops/inventory-service/internal/api"
	"github.com/kusinaops/inventory-service/pkg/broker"
	"github.com/kusinaops/inventory-service/pkg/cache"
	"github.com/kusinaops/inventory-service/pkg/logger"
	"github.com/kusinaops/inventory-service/pkg/postgres"
	"github.com/kusinaops/inventory-service/pkg/search"

	billH "github.com/kusinaops/inventory-service/internal/billing/handler"
	billRepoPkg "github.com/kusinaops/inventory-service/internal/billing/repository"
	billUCPkg "github.com/kusinaops/inventory-service/internal/billing/usecase"

	catH "github.com/kusinaops/inventory-service/internal/catalog/handler"
	catRepoPkg "github.com/kusinaops/inventory-service/internal/catalog/repository"
	catUCPkg "github.com/kusinaops/inventory-service/internal/catalog/usecase"

	invH "github.com/kusinaops/inventory-service/internal/inventory/handler"
	invListenerPkg "github.com/kusinaops/inventory-service/internal/inventory/listener"
	invPublisherPkg "github.com/kusinaops/inventory-service/internal/inventory/publisher"
	invRepoPkg "github.com/kusinaops/inventory-service/internal/inventory/repository"
	invUCPkg "github.com/kusinaops/inventory-service/internal/inventory/usecase"

	supH "github.com/kusinaops/inventory-service/internal/supplier/handler"
	supRepoPkg "github.com/kusinaops/inventory-service/internal/supplier/repository"
	supUCPkg "github.com/kusinaops/inventory-service/internal/supplier/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Repositories
	invRepo := invRepoPkg.NewPGRepository(db)
	billRepo := billRepoPkg.NewPGRepository(db)
	catRepo := catRepoPkg.NewPGRepository(db)
	supRepo := supRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrdersTopic,
		GroupID: cfg.Kafka.OrdersGroupID,
	})
	defer kafkaConsumer.Close()

	kafkaPublisher := broker.NewPublisher(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.InventoryEventsTopic,
	})
	defer kafkaPublisher.Close()
	appLogger.Info("Connected to Kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("orders_topic", cfg.Kafka.OrdersTopic),
		zap.String("inventory_events_topic", cfg.Kafka.InventoryEventsTopic),
	)

	// 5.8 Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (Search features might be limited)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 6. Initialize UseCases
	invPublisher := invPublisherPkg.NewKafkaPublisher(kafkaPublisher)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, invPublisher, appLogger)
	billUC := billUCPkg.NewBillingUseCase(billRepo, redisClient, appLogger)
	catUC := catUCPkg.NewCatalogUseCase(catRepo, redisClient, esClient, appLogger)
	supUC := supUCPkg.NewSupplierUseCase(supRepo, appLogger)

	// 6.5 Start the order listener
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	invListener := invListenerPkg.NewOrderListener(kafkaConsumer, invUC, appLogger)
	go invListener.Start(ctx)

	// 7. Initialize Handlers and Router
	router := api.NewRouter(
		invH.NewInventoryHandler(invUC, appLogger),
		billH.NewBillingHandler(billUC, decimal.NewFromFloat(cfg.Billing.DefaultTaxRate), appLogger),
		catH.NewCatalogHandler(catUC, appLogger),
		supH.NewSupplierHandler(supUC, appLogger),
	)

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	server := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
