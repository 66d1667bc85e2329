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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"framex/config"
	"framex/internal/adapter/bus/rabbitmq"
	"framex/internal/adapter/bus/redisq"
	"framex/internal/adapter/extractor/ffmpeg"
	"framex/internal/adapter/notifier/webhook"
	"framex/internal/adapter/storage/local"
	"framex/internal/adapter/storage/sqlite"
	"framex/internal/infrastructure/logger"
	"framex/internal/infrastructure/metrics"
	"framex/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	logger.Info.Printf("starting framex worker (concurrency=%d, broker=%s)", cfg.WorkerConcurrency, cfg.BrokerDriver)

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

	extractor := ffmpeg.NewExtractor(cfg.FFmpegBin, time.Duration(cfg.FFmpegTimeoutSec)*time.Second)
	notifier := webhook.NewNotifier(cfg.NotifierURL, time.Duration(cfg.NotifierTimeoutSec)*time.Second, cfg.NotifierRetry)

	uow := sqlite.NewUnitOfWork(store)
	processor := service.NewProcessService(uow, storage, extractor, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, draining", sig)
		cancel()
	}()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.MetricsPort)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn.Printf("metrics listener failed: %v", err)
		}
	}()

	switch cfg.BrokerDriver {
	case "redis":
		bus := redisq.NewBus(cfg.RedisAddr, cfg.RedisPassword, cfg.ProcessQueue)
		defer func() { _ = bus.Close() }()
		service.NewWorker(bus, processor, m, cfg.WorkerConcurrency).Run(ctx)
	default:
		bus, err := rabbitmq.NewBus(cfg.BrokerURL, cfg.ProcessQueue)
		if err != nil {
			logger.Error.Printf("failed to connect broker: %v", err)
			os.Exit(1)
		}
		defer func() { _ = bus.Close() }()
		service.NewWorker(bus, processor, m, cfg.WorkerConcurrency).Run(ctx)
	}

	logger.Info.Printf("worker stopped")
}
