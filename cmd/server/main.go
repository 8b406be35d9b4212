package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appinventory "github.com/storefront/backend/internal/application/inventory"
	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/messaging"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
	log.Info("server exited gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("database close failed", zap.Error(err))
		}
	}()
	log.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewLogHandler(log))
	bus.Subscribe(appinventory.NewStockDepletedHandler(log).
		WithNotifier(appinventory.NewLoggingStockAlertNotifier(log)))

	if cfg.Kafka.Enabled {
		relay := messaging.NewKafkaRelay(
			messaging.NewKafkaWriter(cfg.Kafka),
			event.NewDomainSerializer(),
			cfg.Kafka.WriteTimeout,
			log,
		)
		bus.Subscribe(relay)
		defer func() {
			if err := relay.Close(); err != nil {
				log.Warn("kafka relay close failed", zap.Error(err))
			}
		}()
		log.Info("relaying domain events to kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}
	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	store, err := cache.NewIdempotencyStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	repos := persistence.NewRepositories(db.DB)
	tradeScope := persistence.NewGormTradeTransactionScope(db.DB)

	ledger := appinventory.NewStockLedger(persistence.NewGormTransactionScope(db.DB), repos, log)
	ledger.SetEventPublisher(bus)

	carts := apptrade.NewCartService(tradeScope, repos, ledger, log)
	checkout := apptrade.NewCheckoutService(tradeScope, ledger, log)
	payments := apptrade.NewPaymentService(tradeScope, repos, ledger, log)
	payments.SetIdempotencyStore(store, cache.ToSharedConfig(cfg.Idempotency))
	refunds := apptrade.NewRefundService(tradeScope, ledger, log)
	orders := apptrade.NewOrderQueryService(repos.OrderRepo(), repos.RefundRepo())

	engine, err := router.NewEngine(router.EngineConfigFrom(cfg), log)
	if err != nil {
		return fmt.Errorf("build http engine: %w", err)
	}
	routes := router.Mount(engine, router.Handlers{
		Inventory: handler.NewInventoryHandler(ledger),
		Cart:      handler.NewCartHandler(carts, checkout),
		Payment:   handler.NewPaymentHandler(payments),
		Order:     handler.NewOrderHandler(orders, refunds),
		Health:    handler.NewHealthHandler(db, version),
	})
	for _, r := range routes {
		log.Debug("route registered",
			zap.String("group", r.Group),
			zap.String("method", r.Method),
			zap.String("path", r.Path),
		)
	}
	log.Info("routes registered", zap.Int("count", len(routes)))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
