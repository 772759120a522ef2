package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	jwttoken "statusreg/internal/jwt_token"
	"statusreg/internal/platform/config"
	"statusreg/internal/platform/database"
	"statusreg/internal/platform/health"
	"statusreg/internal/platform/httpserver"
	"statusreg/internal/platform/kafka"
	"statusreg/internal/platform/kafka/producer"
	"statusreg/internal/platform/logger"
	httpmetrics "statusreg/internal/platform/metrics"
	"statusreg/internal/platform/redis"
	"statusreg/internal/statuslist/handler"
	"statusreg/internal/statuslist/metrics"
	"statusreg/internal/statuslist/service"
	"statusreg/internal/statuslist/store"
	"statusreg/internal/statuslist/tracer"
	"statusreg/internal/statuslist/workers/stats"
	httptransport "statusreg/internal/transport/http"
	"statusreg/pkg/platform/audit"
	"statusreg/pkg/platform/audit/publisher"
	kafkaaudit "statusreg/pkg/platform/audit/store/kafka"
	auditmemory "statusreg/pkg/platform/audit/store/memory"
	auditpostgres "statusreg/pkg/platform/audit/store/postgres"
)

const (
	shutdownTimeout  = 10 * time.Second
	auditBufferSize  = 1024
	auditPartitions  = 3
	auditReplication = 1
)

// statusListStore is what the service and the stats worker need from a backend.
type statusListStore interface {
	service.Store
	stats.PurposeCounter
}

type infra struct {
	db       *database.Pool
	redis    *redis.Client
	producer *producer.Producer
}

func (i *infra) close(log *slog.Logger) {
	if i.producer != nil {
		if err := i.producer.Close(); err != nil {
			log.Error("failed to close kafka producer", "error", err)
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Error("failed to close redis client", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}
}

// main wires dependencies, serves HTTP and runs the stats worker until a
// shutdown signal arrives.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthHandler := health.New(cfg.Environment)
	deps := &infra{}
	defer deps.close(log)

	slStore, err := buildStore(cfg, deps, healthHandler)
	if err != nil {
		return err
	}
	auditStore, err := buildAuditStore(ctx, cfg, deps, log, healthHandler)
	if err != nil {
		return err
	}
	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithPublisherLogger(log),
	)
	defer auditPublisher.Close()

	slMetrics := metrics.New()
	svc := service.New(slStore,
		service.WithLogger(log),
		service.WithMetrics(slMetrics),
		service.WithTracer(tracer.NewOTel()),
		service.WithAuditPublisher(auditPublisher),
		service.WithIrreversibleRevocation(cfg.StatusList.IrreversibleRevocation),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:         log,
		StatusLists:    handler.New(svc, log),
		Health:         healthHandler,
		Validator:      jwttoken.NewJWTServiceAdapter(jwtService),
		Metrics:        httpmetrics.New(),
		MetricsHandler: promhttp.Handler(),
		RequestTimeout: cfg.RequestTimeout,
	})
	srv := httpserver.New(cfg.Addr, router, httpserver.WithRequestTimeout(cfg.RequestTimeout))

	workerOpts := []stats.Option{stats.WithLogger(log), stats.WithInterval(cfg.StatusList.StatsInterval)}
	if deps.redis != nil {
		workerOpts = append(workerOpts, stats.WithPoolStats(deps.redis))
	}
	worker := stats.New(slStore, slMetrics, workerOpts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting status list registry",
			"addr", cfg.Addr,
			"environment", cfg.Environment,
			"store", cfg.StatusList.Store,
			"irreversible_revocation", cfg.StatusList.IrreversibleRevocation,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stats worker: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func buildStore(cfg config.Server, deps *infra, h *health.Handler) (statusListStore, error) {
	switch cfg.StatusList.Store {
	case config.StorePostgres:
		pool, err := database.New(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		deps.db = pool
		h.RegisterCheck("postgres", pool.Health)
		return store.NewPostgres(pool.DB()), nil
	case config.StoreRedis:
		client, err := redis.New(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		deps.redis = client
		h.RegisterCheck("redis", client.Health)
		return store.NewRedis(client.Client, store.WithMaxRetries(cfg.StatusList.MaxRetries)), nil
	default:
		return store.New(), nil
	}
}

// buildAuditStore prefers Kafka, then the status list database, then memory.
func buildAuditStore(ctx context.Context, cfg config.Server, deps *infra, log *slog.Logger, h *health.Handler) (audit.Store, error) {
	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(cfg.Kafka, log)
		if err != nil {
			return nil, err
		}
		deps.producer = p
		if err := kafka.EnsureTopic(ctx, p.Client(), cfg.Kafka.AuditTopic, auditPartitions, auditReplication); err != nil {
			return nil, err
		}
		h.RegisterCheck("kafka", p.Health)
		return kafkaaudit.New(p, cfg.Kafka.AuditTopic), nil
	}
	if deps.db != nil {
		return auditpostgres.New(deps.db.DB()), nil
	}
	log.Warn("audit events kept in memory; set KAFKA_BROKERS to publish them")
	return auditmemory.NewInMemoryStore(), nil
}
