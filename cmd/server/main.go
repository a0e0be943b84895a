package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manwah-pos/api/internal/broker"
	"github.com/manwah-pos/api/internal/catalog"
	"github.com/manwah-pos/api/internal/config"
	"github.com/manwah-pos/api/internal/database"
	"github.com/manwah-pos/api/internal/jobs"
	"github.com/manwah-pos/api/internal/logging"
	"github.com/manwah-pos/api/internal/metrics"
	"github.com/manwah-pos/api/internal/router"
	"github.com/manwah-pos/api/internal/seed"
	"github.com/manwah-pos/api/internal/store"
	"github.com/manwah-pos/api/internal/ws"
)

func main() {
	cfg := config.Load()
	logger := logging.Init("order-service", cfg.LogFile)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	menu := catalog.Default()

	var (
		opts   = []store.Option{store.WithLogger(logging.New("store"))}
		syncer jobs.Syncer
	)
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		opts = append(opts, store.WithPersister(database.NewOrderRepository(pool)))
		logger.Info("connected to database")
	}

	orders := store.New(opts...)
	if cfg.DatabaseURL != "" {
		n, err := orders.Sync(ctx)
		if err != nil {
			return fmt.Errorf("initial sync: %w", err)
		}
		logger.Info("loaded orders", "count", n)
		syncer = orders
	} else {
		rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
		orders.Load(seed.Orders(rng, menu, cfg.SeedOrders, time.Now()))
		logger.Info("running in memory with seed orders", "count", cfg.SeedOrders)
	}

	hub := ws.NewHub()
	go hub.Run(ctx)
	orders.Subscribe(hub)
	orders.Subscribe(metrics.NewRecorder())

	if cfg.AMQPURL != "" {
		conn, err := broker.Dial(cfg.AMQPURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		pub, err := broker.NewPublisher(conn.Channel(), logging.New("broker"))
		if err != nil {
			return err
		}
		go pub.Run(ctx)
		orders.Subscribe(pub)
		logger.Info("publishing order events", "exchange", broker.Exchange)
	}

	jm := jobs.NewJobManager(syncer, cfg.SyncSchedule, logging.New("jobs"))
	if err := jm.StartAll(); err != nil {
		return err
	}
	defer jm.StopAll()

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.New(cfg, router.Deps{
			Catalog: menu,
			Store:   orders,
			Hub:     hub,
			Logger:  logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}
