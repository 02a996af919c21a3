package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"tracker/internal/config"
	"tracker/internal/delivery"
	"tracker/internal/infrastructure/logger"
	"tracker/internal/infrastructure/metrics"
	"tracker/internal/invoice"
	"tracker/internal/jobs"
	"tracker/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	repo, closeStore, err := delivery.NewRepository(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("opening delivery store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer closeStore()

	m := metrics.New(prometheus.DefaultRegisterer)

	invoiceClient := invoice.NewResilientClient(
		invoice.NewHTTPClient(cfg.Invoice.BaseURL, cfg.Invoice.Timeout, zapLogger),
		invoice.PolicyFromConfig(cfg.Invoice),
		m,
		zapLogger,
	)

	deliveryModule, err := delivery.NewModule(repo, invoiceClient, m, cfg.Delivery, zapLogger)
	if err != nil {
		zapLogger.Fatal("creating delivery module", zap.Error(err))
	}

	jobManager := jobs.NewJobManager(deliveryModule.Service, cfg.Jobs.SummaryCron, deliveryModule.Service.Location(), zapLogger)
	if err := jobManager.StartAll(); err != nil {
		zapLogger.Fatal("starting jobs", zap.Error(err))
	}
	defer jobManager.StopAll()

	router := server.NewRouter(deliveryModule.Controller, m, prometheus.DefaultGatherer, zapLogger)
	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
		return
	}

	zapLogger.Info("server stopped gracefully")
}
