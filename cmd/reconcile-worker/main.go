package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finbook/internal/amqp"
	"finbook/internal/config"
	"finbook/internal/log"
	"finbook/internal/services"
	"finbook/internal/storage"
	"finbook/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting reconcile-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker repairs the durable store, so it always runs on SQLite.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	accountant := services.NewAccountant(repo, nil)
	reconcileWorker := worker.NewReconcileWorker(accountant, repo, worker.Config{
		SweepInterval: cfg.SweepInterval,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := reconcileWorker.Start(ctx); err != nil {
		logger.Error("Failed to start reconcile worker", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Consume targeted repair requests when a broker is configured. The
	// periodic sweep covers anything the queue misses.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeReconcileRequests(gctx, reconcileWorker.HandleReconcileMessage(gctx))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		logger.Info("Consuming reconcile requests", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - running sweep-only mode")
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker loop failed", "error", err)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := reconcileWorker.Stop(stopCtx); err != nil {
		logger.Error("Worker shutdown error", "error", err)
	}

	logger.Info("Worker stopped gracefully")
}
