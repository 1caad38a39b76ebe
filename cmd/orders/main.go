package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/config"
	"github.com/pawmart/pawmart-orders-service/internal/events"
	"github.com/pawmart/pawmart-orders-service/internal/gateway"
	"github.com/pawmart/pawmart-orders-service/internal/handlers"
	"github.com/pawmart/pawmart-orders-service/internal/logging"
	"github.com/pawmart/pawmart-orders-service/internal/metrics"
	"github.com/pawmart/pawmart-orders-service/internal/repository"
	"github.com/pawmart/pawmart-orders-service/internal/server"
	"github.com/pawmart/pawmart-orders-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting pawmart-orders-service", zap.Int("port", cfg.Server.Port))

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	orderRepo := repository.NewPostgresOrderRepository(db, logger)
	paymentRepo := repository.NewPostgresPaymentRepository(db, logger)
	catalog := repository.NewPostgresProductCatalog(db, logger)
	orderCache := repository.NewRedisOrderCache(cfg.Redis, logger)

	gatewayClient := gateway.NewHTTPGatewayClient(cfg.Gateway, logger)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer eventPublisher.Close()

	orderService := service.NewOrderService(orderRepo, orderCache, catalog, eventPublisher, cfg, logger)
	paymentService := service.NewPaymentService(paymentRepo, orderService, gatewayClient, cfg, logger)

	m := metrics.New()
	h := handlers.NewHandlers(orderService, paymentService, m, cfg, logger)
	srv := server.New(h, m, cfg)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	shippingConsumer := events.NewShippingConsumer(cfg.Kafka, orderService, logger)
	go func() {
		if err := shippingConsumer.Start(context.Background()); err != nil && err != context.Canceled {
			logger.Error("Shipping consumer failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shippingConsumer.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name))

	return db, nil
}
