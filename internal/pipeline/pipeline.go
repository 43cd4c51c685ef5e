// Package pipeline runs one recompute pass: fetch the snapshot, normalize
// it, aggregate it and build the display view.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"order-ledger/internal/domain"
	"order-ledger/internal/logger"
	"order-ledger/internal/metrics"
	"order-ledger/internal/normalization"
	"order-ledger/internal/observability"
	"order-ledger/internal/ordering"
	"order-ledger/internal/reporting"
	"order-ledger/internal/storage"
)

// Recompute triggers
const (
	TriggerStartup = "startup"
	TriggerManual  = "manual"
	TriggerRequest = "request"
	TriggerCLI     = "cli"
)

// Request selects how one pass is presented.
type Request struct {
	Compact   bool
	SortOrder domain.SortOrder
	Trigger   string
}

// Result is the outcome of one successful pass.
type Result struct {
	Summary *domain.Summary
	View    *reporting.View
	// Orders are listed in the requested display order.
	Orders   []domain.Order
	Fetched  int
	Skipped  []*normalization.MalformedRecordError
	Duration time.Duration
}

// Pipeline wires a source, a normalizer and the aggregation options.
type Pipeline struct {
	source     storage.OrderSource
	normalizer *normalization.Normalizer
	opts       metrics.Options
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      func() time.Time
}

// New creates a pipeline reading from source.
func New(source storage.OrderSource, normalizer *normalization.Normalizer, opts metrics.Options) *Pipeline {
	return &Pipeline{
		source:     source,
		normalizer: normalizer,
		opts:       opts,
		logger:     logger.Discard(),
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// WithLogger sets the logger.
func (p *Pipeline) WithLogger(l *slog.Logger) *Pipeline {
	p.logger = logger.OrDiscard(l)
	return p
}

// WithMetrics records fetch and recompute metrics into m.
func (p *Pipeline) WithMetrics(m *observability.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// SourceName returns the name of the configured source.
func (p *Pipeline) SourceName() string {
	return p.source.Name()
}

// Recompute runs one full pass. Nothing from earlier passes is reused.
// On failure no partial result is returned.
func (p *Pipeline) Recompute(ctx context.Context, req Request) (*Result, error) {
	if req.Trigger == "" {
		req.Trigger = TriggerManual
	}

	start := time.Now()
	op := logger.StartOperation(ctx, p.logger, "recompute",
		"trigger", req.Trigger,
		"source", p.source.Name(),
	)

	source := p.source
	if p.metrics != nil {
		source = &instrumentedSource{OrderSource: p.source, metrics: p.metrics}
	}

	comp, err := metrics.NewAggregator(source, p.normalizer, p.opts).ComputeSummary(op.Context())
	elapsed := time.Since(start)
	if err != nil {
		op.EndWithError(err)
		if p.metrics != nil {
			p.metrics.RecordRecompute(req.Trigger, observability.StatusFailure, elapsed.Seconds())
		}
		return nil, err
	}

	sorted := ordering.Sorted(comp.Orders, req.SortOrder)
	view := reporting.NewFormatter(req.Compact).WithClock(p.clock).Format(comp.Summary, sorted)
	view.SkippedRecords = len(comp.Skipped)

	if p.metrics != nil {
		p.metrics.RecordSkipped(len(comp.Skipped))
		p.metrics.RecordRecompute(req.Trigger, observability.StatusSuccess, elapsed.Seconds())
		p.metrics.RecordSuccess(len(comp.Orders), float64(p.clock().Unix()))
	}

	op.End(
		"fetched", comp.Fetched,
		"orders", len(comp.Orders),
		"skipped", len(comp.Skipped),
	)
	p.logger.InfoContext(ctx, "Summary recomputed",
		"trigger", req.Trigger,
		"orders", len(comp.Orders),
		"open_orders_value", comp.Summary.OpenOrdersValue.String(),
		"skipped", len(comp.Skipped),
		"duration_ms", elapsed.Milliseconds(),
	)

	return &Result{
		Summary:  comp.Summary,
		View:     view,
		Orders:   sorted,
		Fetched:  comp.Fetched,
		Skipped:  comp.Skipped,
		Duration: elapsed,
	}, nil
}

// instrumentedSource times each fetch.
type instrumentedSource struct {
	storage.OrderSource
	metrics *observability.Metrics
}

func (s *instrumentedSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	start := time.Now()
	raws, err := s.OrderSource.Fetch(ctx)
	s.metrics.RecordFetch(s.Name(), len(raws), time.Since(start).Seconds(), err)
	return raws, err
}
