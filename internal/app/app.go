package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/payment"
	"github.com/xenking/kart-checkout/internal/domain/shipping"
	"github.com/xenking/kart-checkout/internal/handler"
	"github.com/xenking/kart-checkout/internal/storage/memory"
	"github.com/xenking/kart-checkout/internal/storage/postgres"
	"github.com/xenking/kart-checkout/internal/storage/redis"
	"github.com/xenking/kart-checkout/internal/storage/sqlite"
	"github.com/xenking/kart-checkout/pkg/health"
	"github.com/xenking/kart-checkout/pkg/httpmiddleware"
)

// transactionStore is a transaction log that can also be read back.
type transactionStore interface {
	checkout.TransactionLog
	checkout.TransactionReader
}

// backends are the checkout collaborators selected by configuration.
type backends struct {
	inventory checkout.Inventory
	invoices  checkout.Invoicer
	txlog     transactionStore
	ping      health.Pinger
	close     func()
}

// openBackends builds the collaborators for the configured driver. Stock is
// always tracked in memory; invoices move to PostgreSQL with the postgres
// driver.
func openBackends(ctx context.Context, lg *zap.Logger, cfg *Config) (*backends, error) {
	b := &backends{
		inventory: memory.NewInventory(),
		invoices:  memory.NewInvoicer(),
		close:     func() {},
	}

	switch cfg.TxLog.Driver {
	case DriverMemory:
		b.txlog = memory.NewTransactionLog()
	case DriverSQLite:
		l, err := sqlite.Open(cfg.TxLog.SQLitePath)
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		b.txlog, b.ping = l, l
		b.close = func() {
			if err := l.Close(); err != nil {
				lg.Error("Close sqlite", zap.Error(err))
			}
		}
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		b.invoices = postgres.NewInvoicer(pool)
		b.txlog = postgres.NewTransactionLog(pool)
		b.ping = pool
		b.close = pool.Close
	case DriverRedis:
		l, err := redis.Dial(ctx, cfg.TxLog.RedisAddr, cfg.TxLog.RedisTTL)
		if err != nil {
			return nil, errors.Wrap(err, "connect redis")
		}
		b.txlog, b.ping = l, l
		b.close = func() {
			if err := l.Close(); err != nil {
				lg.Error("Close redis", zap.Error(err))
			}
		}
	default:
		return nil, errors.Errorf("unknown transaction log driver %q", cfg.TxLog.Driver)
	}

	lg.Info("Transaction log opened", zap.String("driver", cfg.TxLog.Driver))
	return b, nil
}

// newFacade wires the checkout facade from configuration.
func newFacade(cfg *Config, b *backends, m *app.Telemetry) (*checkout.Facade, error) {
	limit, err := cfg.Payment.Limit()
	if err != nil {
		return nil, err
	}

	resolver := shipping.StrictResolver()
	if cfg.Shipping.Lenient {
		resolver = shipping.LenientResolver()
	}

	opts := []checkout.Option{}
	if m != nil {
		opts = append(opts,
			checkout.WithTracerProvider(m.TracerProvider()),
			checkout.WithMeterProvider(m.MeterProvider()),
		)
	}

	return checkout.NewFacade(b.inventory, b.invoices, b.txlog,
		payment.NewRegistry(limit), resolver, opts...)
}

// httpTelemetry returns otelhttp options for m. A nil m keeps the otelhttp
// defaults, like newFacade keeps the facade's.
func httpTelemetry(m *app.Telemetry) []otelhttp.Option {
	if m == nil {
		return nil
	}
	return []otelhttp.Option{
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	}
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("txlog", cfg.TxLog.Driver),
		zap.Bool("shipping_lenient", cfg.Shipping.Lenient),
	)

	b, err := openBackends(ctx, lg, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	facade, err := newFacade(cfg, b, m)
	if err != nil {
		return errors.Wrap(err, "create checkout facade")
	}

	healthSvc := health.New()
	if b.ping != nil {
		healthSvc.Add(health.Readiness, cfg.TxLog.Driver, 5*time.Second, health.PingCheck(b.ping))
	}
	healthSvc.Add(health.Liveness, "goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	api := httpmiddleware.Wrap(
		handler.NewHandler(facade, b.txlog).Routes(),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			RPS:   cfg.RateLimit.RPS,
			Burst: cfg.RateLimit.Burst,
		}),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", otelhttp.NewHandler(api, "kart-api", httpTelemetry(m)...))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.RequestID(),
			httpmiddleware.Recovery(),
			httpmiddleware.LogRequests(),
		),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		defer healthSvc.Stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})

	return g.Wait()
}
