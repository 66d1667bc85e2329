package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"framex/config"
	"framex/internal/adapter/bus/rabbitmq"
	"framex/internal/adapter/bus/redisq"
	HTTPAdapter "framex/internal/adapter/http"
	"framex/internal/adapter/storage/local"
	"framex/internal/adapter/storage/sqlite"
	"framex/internal/infrastructure/logger"
	"framex/internal/port"
	"framex/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	logger.Info.Printf("starting framex api on port %d", cfg.Port)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Error.Printf("failed to create data directory: %v", err)
		os.Exit(1)
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		logger.Error.Printf("failed to open store: %v", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	storage, err := local.NewStorage(cfg.StorageDir)
	if err != nil {
		logger.Error.Printf("failed to init storage: %v", err)
		os.Exit(1)
	}

	bus, closeBus, err := newBus(cfg)
	if err != nil {
		logger.Error.Printf("failed to connect broker: %v", err)
		os.Exit(1)
	}
	defer closeBus()

	uow := sqlite.NewUnitOfWork(store)
	enqueueSvc := service.NewEnqueueService(uow, storage, bus)
	querySvc := service.NewQueryService(uow)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	server := HTTPAdapter.NewServer(enqueueSvc, querySvc, storage, cfg.AuthSecret, cfg.MaxUploadSizeMB, reg)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server.Engine(),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, shutting down", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}
	}()

	logger.Info.Printf("server listening on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error.Printf("server failed: %v", err)
		os.Exit(1)
	}
}

func newBus(cfg *config.Config) (port.MessageBus, func(), error) {
	switch cfg.BrokerDriver {
	case "redis":
		bus := redisq.NewBus(cfg.RedisAddr, cfg.RedisPassword, cfg.ProcessQueue)
		return bus, func() { _ = bus.Close() }, nil
	default:
		bus, err := rabbitmq.NewBus(cfg.BrokerURL, cfg.ProcessQueue)
		if err != nil {
			return nil, nil, err
		}
		return bus, func() { _ = bus.Close() }, nil
	}
}
