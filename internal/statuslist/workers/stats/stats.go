package stats

import (
	"context"
	"log/slog"
	"time"

	"statusreg/internal/statuslist/metrics"
	"statusreg/internal/statuslist/models"
)

type PurposeCounter interface {
	CountByPurpose(ctx context.Context, purposes []models.Purpose) (map[models.Purpose]int, error)
}

// PoolStatsRecorder is implemented by backends that export connection pool
// gauges, such as the Redis client.
type PoolStatsRecorder interface {
	RecordPoolStats()
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithPoolStats(recorder PoolStatsRecorder) Option {
	return func(w *Worker) {
		w.pool = recorder
	}
}

// Worker periodically refreshes the lists-per-purpose gauge.
type Worker struct {
	store    PurposeCounter
	metrics  *metrics.Metrics
	pool     PoolStatsRecorder
	logger   *slog.Logger
	interval time.Duration
}

func New(store PurposeCounter, m *metrics.Metrics, opts ...Option) *Worker {
	w := &Worker{
		store:    store,
		metrics:  m,
		logger:   slog.Default(),
		interval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start refreshes once immediately, then on every tick until ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)
		case <-ctx.Done():
			w.logger.Info("status list stats worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

func (w *Worker) refresh(ctx context.Context) {
	start := time.Now()
	counts, err := w.RunOnce(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "status_list_stats_failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	w.logger.DebugContext(ctx, "status_list_stats_refreshed",
		"lists_by_purpose", counts,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// RunOnce counts lists per purpose and publishes the gauges.
func (w *Worker) RunOnce(ctx context.Context) (map[string]int, error) {
	if w.pool != nil {
		w.pool.RecordPoolStats()
	}
	counts, err := w.store.CountByPurpose(ctx, models.Purposes())
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int, len(counts))
	for purpose, n := range counts {
		byName[purpose.String()] = n
	}
	if w.metrics != nil {
		w.metrics.SetListsByPurpose(byName)
	}
	return byName, nil
}
