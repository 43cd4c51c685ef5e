package metrics

import (
	"context"
	"fmt"

	"order-ledger/internal/domain"
	"order-ledger/internal/normalization"
	"order-ledger/internal/storage"
)

// Computation is the result of one store-backed aggregation pass.
type Computation struct {
	Summary *domain.Summary
	// Orders are the normalized orders the summary was computed from,
	// in source order.
	Orders []domain.Order
	// Fetched is the number of raw records returned by the source.
	Fetched int
	// Skipped lists records dropped under the skip error policy.
	Skipped []*normalization.MalformedRecordError
}

// Aggregator computes summaries from an order source.
type Aggregator struct {
	source     storage.OrderSource
	normalizer *normalization.Normalizer
	opts       Options
}

// NewAggregator creates a new aggregator reading from source.
func NewAggregator(source storage.OrderSource, normalizer *normalization.Normalizer, opts Options) *Aggregator {
	return &Aggregator{
		source:     source,
		normalizer: normalizer,
		opts:       opts,
	}
}

// Options returns the aggregation options.
func (a *Aggregator) Options() Options {
	return a.opts
}

// ComputeSummary fetches the full snapshot, normalizes it and aggregates
// it in one independent pass. Nothing is cached between calls.
// Fetch failures wrap storage.ErrFetchFailure; malformed records under the
// abort policy wrap normalization.ErrMalformedRecord.
func (a *Aggregator) ComputeSummary(ctx context.Context) (*Computation, error) {
	raws, err := a.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	result, err := a.normalizer.NormalizeBatch(ctx, raws)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", a.source.Name(), err)
	}

	return &Computation{
		Summary: Aggregate(result.Orders, a.opts),
		Orders:  result.Orders,
		Fetched: len(raws),
		Skipped: result.Skipped,
	}, nil
}
