package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"idproof/internal/audit"
	auditkafka "idproof/internal/audit/kafka"
	settings "idproof/internal/config"
	pgparams "idproof/internal/config/paramstore/postgres"
	redisparams "idproof/internal/config/paramstore/redis"
	"idproof/internal/platform/config"
	"idproof/internal/platform/kafka"
	"idproof/internal/platform/metrics"
	"idproof/internal/platform/postgres"
	"idproof/internal/platform/redis"
	"idproof/internal/platform/tracing"
	"idproof/internal/proofing/callback"
	"idproof/internal/proofing/images"
	"idproof/internal/proofing/orchestrator"
	"idproof/internal/proofing/ports"
	"idproof/internal/proofing/retry"
	httptransport "idproof/internal/transport/http"
	"idproof/internal/vendors/aamva"
	"idproof/internal/vendors/acuant"
	"idproof/internal/vendors/lexisnexis"
	"idproof/internal/vendors/mock"
	"idproof/internal/vendors/vendorhttp"
)

// app bundles the long-lived services created at startup.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	service  *orchestrator.Service
	checks   map[string]httptransport.HealthCheck

	// workers run for the lifetime of the process; closers run on exit in
	// reverse order.
	workers []func(ctx context.Context) error
	closers []func(ctx context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		checks:   map[string]httptransport.HealthCheck{},
	}
	defer func() {
		if err != nil {
			a.close(context.WithoutCancel(ctx))
		}
	}()

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(a.registry)

	shutdownTracing, err := tracing.Init(cfg.Tracing.ServiceName, cfg.Tracing.Exporter, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdownTracing)

	store, err := a.parameterStore(ctx)
	if err != nil {
		return nil, err
	}
	resolver := settings.NewResolver(store, settings.WithLogger(logger))

	emitter, err := a.emitter(ctx)
	if err != nil {
		return nil, err
	}

	vendorClient := vendorhttp.NewClient(cfg.Vendors.Timeout)
	policy := retryPolicy(cfg.Retry)

	deliverer := callback.New(
		callback.WithHTTPClient(vendorhttp.NewClient(cfg.Callback.Timeout)),
		callback.WithPolicy(policy),
		callback.WithLogger(logger),
		callback.WithMetrics(m),
	)

	a.service = orchestrator.New(catalog(cfg.Vendors, vendorClient), resolver, deliverer,
		orchestrator.WithImageLoader(images.New(images.WithHTTPClient(vendorClient), images.WithLogger(logger))),
		orchestrator.WithEmitter(emitter),
		orchestrator.WithMetrics(m),
		orchestrator.WithLogger(logger),
		orchestrator.WithPolicy(policy),
	)
	return a, nil
}

// parameterStore returns nil when secrets come from the environment only.
func (a *app) parameterStore(ctx context.Context) (settings.ParameterStore, error) {
	switch a.cfg.ParameterStore.Kind {
	case "redis":
		client, err := redis.New(ctx, a.cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.checks["redis"] = client.Health
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		return redisparams.New(client), nil
	case "postgres":
		db, err := postgres.Open(ctx, a.cfg.Postgres)
		if err != nil {
			return nil, err
		}
		a.checks["postgres"] = db.PingContext
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		store := pgparams.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, nil
	}
}

// emitter logs every summary and, when brokers are configured, also queues
// it for Kafka.
func (a *app) emitter(ctx context.Context) (*audit.Emitter, error) {
	opts := []audit.Option{audit.WithLogger(a.logger)}

	client, err := kafka.NewClient(ctx, a.cfg.Kafka)
	if err != nil {
		return nil, err
	}
	if client != nil {
		async := audit.NewAsyncPublisher(auditkafka.New(client, a.cfg.Kafka.Topic), a.cfg.Kafka.Buffer, a.logger)
		opts = append(opts, audit.WithPublisher(async))
		a.workers = append(a.workers, async.Run)
		a.checks["kafka"] = client.Ping
		a.closers = append(a.closers, func(context.Context) error {
			client.Close()
			return nil
		})
	}
	return audit.NewEmitter(opts...), nil
}

func catalog(cfg config.Vendors, client *http.Client) ports.Catalog {
	if cfg.Mode == "mock" {
		return mock.Catalog(cfg.MockLatency)
	}
	return ports.Catalog{
		Resolution: lexisnexis.InstantVerify.Vendor(client),
		StateID:    aamva.Vendor(client),
		Address:    lexisnexis.PhoneFinder.Vendor(client),
		Document:   acuant.Vendor(client),
	}
}

func retryPolicy(cfg config.Retry) retry.Policy {
	p := retry.Default()
	p.MaxAttempts = cfg.MaxAttempts
	if cfg.BaseDelay > 0 {
		p.Backoff = retry.Exponential(cfg.BaseDelay, cfg.MaxDelay)
	}
	return p
}

func (a *app) healthOptions() []httptransport.RouterOption {
	opts := []httptransport.RouterOption{httptransport.WithGatherer(a.registry)}
	for name, check := range a.checks {
		opts = append(opts, httptransport.WithHealthCheck(name, check))
	}
	return opts
}

// runWorkers starts the background workers and returns a function that
// stops them and waits for them to drain.
func (a *app) runWorkers(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range a.workers {
		g.Go(func() error {
			if err := w(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})
	}
	return func() {
		cancel()
		if err := g.Wait(); err != nil {
			a.logger.Error("background worker failed", "error", err)
		}
	}
}

func (a *app) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("shutdown step failed", "error", err)
		}
	}
}
