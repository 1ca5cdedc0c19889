package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/sp-health-heatmap/internal/domain"
	"github.com/couchcryptid/sp-health-heatmap/internal/observability"
)

// Options selects the inputs of a run.
type Options struct {
	HealthPath string
	RegionCode int
}

// Pipeline orchestrates load, join and aggregate. Each Run recomputes
// everything; memoization lives in the sources passed to New.
type Pipeline struct {
	health     domain.HealthSource
	geo        domain.GeoSource
	aggregator *Aggregator
	opts       Options
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
}

// New creates a Pipeline with the given sources and observability.
func New(health domain.HealthSource, geo domain.GeoSource, aggregator *Aggregator, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		health:     health,
		geo:        geo,
		aggregator: aggregator,
		opts:       opts,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once a run has succeeded, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a successful run yet")
	}
	return nil
}

// Run loads both tables and aggregates them. Errors are returned unchanged
// so callers can classify them with errors.Is / errors.As.
func (p *Pipeline) Run(ctx context.Context) (domain.Result, error) {
	start := time.Now()

	result, err := p.run(ctx)
	p.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		kind := domain.ErrorKind(err)
		p.metrics.PipelineRuns.WithLabelValues(kind).Inc()
		p.logger.Error("pipeline run failed",
			"error", err,
			"kind", kind,
			"health_path", p.opts.HealthPath,
			"region_code", p.opts.RegionCode,
		)
		return domain.Result{}, err
	}

	p.metrics.PipelineRuns.WithLabelValues("success").Inc()
	p.metrics.RowsJoined.Set(float64(len(result.Rows)))
	p.ready.Store(true)
	p.logger.Info("pipeline run complete",
		"rows", len(result.Rows),
		"duration", time.Since(start),
	)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context) (domain.Result, error) {
	health, err := p.health.Load(ctx, p.opts.HealthPath)
	if err != nil {
		return domain.Result{}, err
	}
	p.metrics.RowsLoaded.WithLabelValues("health").Set(float64(len(health)))

	geo, err := p.geo.Fetch(ctx, p.opts.RegionCode)
	if err != nil {
		return domain.Result{}, err
	}
	p.metrics.RowsLoaded.WithLabelValues("geo").Set(float64(len(geo)))

	if len(health) > 0 && len(geo) == 0 {
		p.logger.Warn("no municipalities for region", "region_code", p.opts.RegionCode)
	}

	return p.aggregator.Aggregate(health, geo), nil
}

// Render runs the pipeline and converts any failure into the user-facing
// message. It never returns an error.
func (p *Pipeline) Render(ctx context.Context) domain.View {
	result, err := p.Run(ctx)
	if err != nil {
		return domain.View{
			Message: domain.UserMessage(err, filepath.Base(p.opts.HealthPath)),
			Kind:    domain.ErrorKind(err),
			Failed:  true,
		}
	}
	return domain.View{Result: result}
}
