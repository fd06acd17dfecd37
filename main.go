package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Zhima-Mochi/shopcore/config"
	appCatalog "github.com/Zhima-Mochi/shopcore/internal/application/catalog"
	appInventory "github.com/Zhima-Mochi/shopcore/internal/application/inventory"
	appOrder "github.com/Zhima-Mochi/shopcore/internal/application/order"
	appPayment "github.com/Zhima-Mochi/shopcore/internal/application/payment"
	appUser "github.com/Zhima-Mochi/shopcore/internal/application/user"
	domPayment "github.com/Zhima-Mochi/shopcore/internal/domain/payment"
	"github.com/Zhima-Mochi/shopcore/internal/infrastructure/gateway"
	"github.com/Zhima-Mochi/shopcore/internal/infrastructure/id"
	"github.com/Zhima-Mochi/shopcore/internal/infrastructure/memory"
	telemetry "github.com/Zhima-Mochi/shopcore/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/shopcore/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/shopcore/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/shopcore/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/shopcore/internal/infrastructure/postgres"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/shopcore/internal/presentation/http"
	"github.com/Zhima-Mochi/shopcore/internal/storage"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		panic(err)
	}

	baseLogger := logging.MustNewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	counters, histograms := telemetry.DefaultInstruments(prometrics.New("", ""))
	tel := telemetry.New(
		oteltrace.New(cfg.AppName),
		zaplogger.Wrap(baseLogger),
		counters,
		histograms,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage.Store
	switch cfg.StoreBackend {
	case "postgres":
		pg, err := postgres.NewStore(ctx, cfg.DSN())
		if err != nil {
			systemLogger.Fatal("postgres_connect_error", zap.Error(err))
		}
		defer pg.Close()
		store = pg
	default:
		store = memory.NewStore()
	}

	var paymentGateway domPayment.Gateway
	switch cfg.GatewayMode {
	case "http":
		paymentGateway = gateway.NewHTTP(cfg.GatewayURL, cfg.GatewayTimeout)
	default:
		paymentGateway = gateway.NewSimulated(cfg.GatewayLatency, cfg.GatewaySuccessRate)
	}

	idGenerator := id.NewUUIDGenerator()

	inventoryService := appInventory.NewService(store, tel)
	orderService := appOrder.NewService(store, inventoryService, idGenerator, tel)
	paymentService := appPayment.NewService(
		store, paymentGateway, idGenerator, id.NewTransactionID, cfg.GatewayTimeout, tel)
	catalogService := appCatalog.NewService(store, idGenerator, tel)
	userService := appUser.NewService(store, idGenerator, tel)

	router := httppresentation.NewRouter(httppresentation.RouterConfig{
		ServiceName: cfg.AppName,
		Orders:      orderService,
		Payments:    paymentService,
		Products:    catalogService,
		Users:       userService,
		Telemetry:   tel,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
			zap.String("store_backend", cfg.StoreBackend),
			zap.String("gateway_mode", cfg.GatewayMode),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		systemLogger.Info("http_server_stopped")
	}
}
