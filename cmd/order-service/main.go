package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hakimskills/marketplace-backend/internal/catalog"
	"github.com/hakimskills/marketplace-backend/internal/config"
	"github.com/hakimskills/marketplace-backend/internal/db"
	httpapi "github.com/hakimskills/marketplace-backend/internal/http"
	"github.com/hakimskills/marketplace-backend/internal/notify"
	"github.com/hakimskills/marketplace-backend/internal/order"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- DB ---
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatalf("db migrate: %v", err)
		}
	}

	// --- AMQP ---
	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatalf("connect to RabbitMQ: %v", err)
	}
	defer conn.Close()

	publisher, err := notify.NewPublisher(conn)
	if err != nil {
		logger.Fatalf("notification publisher: %v", err)
	}
	defer publisher.Close()

	dispatcher := notify.NewDispatcher(notify.NewRepository(pool), publisher)

	// --- core ---
	orders := order.NewPostgresRepository(pool)
	products := catalog.NewPostgresRepository(pool)
	svc := order.NewService(orders, products, dispatcher, logger)
	svc.SetTxTimeout(cfg.TxTimeout)

	// --- HTTP ---
	h := httpapi.NewOrderHandler(svc)
	r := httpapi.NewRouter(h)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	logger.Printf("shutdown complete")
}
