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

	"github.com/Zhima-Mochi/minishop-inventory/app/internal/application/catalog"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/application/ordering"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/config"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/domain/store"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-inventory/app/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/infrastructure/observability/telemetry"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/infrastructure/outbox"
	stockworker "github.com/Zhima-Mochi/minishop-inventory/app/internal/infrastructure/stock/worker"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/pkg/logging"
	"github.com/Zhima-Mochi/minishop-inventory/app/internal/presentation/cli"
	httppresentation "github.com/Zhima-Mochi/minishop-inventory/app/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minishop-inventory/app/internal/presentation/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	baseLogger, err := logging.NewLogger(cfg.LoggingOptions())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				systemLogger.Warn("tracing_shutdown_error", zap.Error(err))
			}
		}()
		systemLogger.Info("tracing_enabled", zap.String("endpoint", cfg.OTLPEndpoint))
	}

	counters, histograms := prometrics.Standard(prometrics.New(nil, ""))
	logger := zaplogger.New(baseLogger)
	tel := infraobs.New(oteltrace.New(cfg.ServiceName), logger, counters, histograms)

	// In-memory event bus; stock reactions run asynchronously off the order path.
	bus := outbox.NewBus(logger, outbox.WithHandlerContext(workerpresentation.EventContext(logger)))
	stockworker.New(bus, tel).Start()
	bus.Start(ctx)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		bus.Stop(stopCtx)
	}()

	shop := store.New(seedProducts())
	receipts := memory.NewReceiptRepository()

	listProducts := catalog.NewListProductsUseCase(shop, tel)
	totalQuantity := catalog.NewTotalQuantityUseCase(shop, tel)
	placeOrder := ordering.NewPlaceOrderUseCase(shop, receipts, id.NewUUIDGenerator(), bus, tel)

	if cfg.MetricsAddr != "" {
		server := startMetricsServer(cfg.MetricsAddr, tel, systemLogger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				systemLogger.Error("metrics_server_shutdown_error", zap.Error(err))
			}
		}()
	}

	menu := cli.NewMenu(listProducts, totalQuantity, placeOrder, cfg.StoreName, os.Stdin, os.Stdout,
		logger.With(observability.F("store", cfg.StoreName)))

	// Stdin reads cannot be interrupted, so a signal returns without waiting for the menu.
	errCh := make(chan error, 1)
	go func() { errCh <- menu.Run(ctx) }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-ctx.Done():
		systemLogger.Info("shutdown_signal_received")
	}
	return nil
}

func seedProducts() []*product.Product {
	return []*product.Product{
		product.MustNew("MacBook Air M2", decimal.NewFromInt(1450), 100),
		product.MustNew("Bose QuietComfort Earbuds", decimal.NewFromInt(250), 500),
		product.MustNew("Google Pixel 7", decimal.NewFromInt(500), 250),
	}
}

func startMetricsServer(addr string, tel observability.Observability, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", httppresentation.ObservabilityMiddleware("/metrics", tel)(promhttp.Handler()))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics_server_start", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics_server_error", zap.Error(err))
		}
	}()
	return server
}
