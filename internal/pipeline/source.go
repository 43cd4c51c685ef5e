package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"order-ledger/internal/config"
	"order-ledger/internal/ingestion"
	"order-ledger/internal/logger"
	"order-ledger/internal/metrics"
	"order-ledger/internal/normalization"
	"order-ledger/internal/storage"
	chstore "order-ledger/internal/storage/clickhouse"
	"order-ledger/internal/storage/migrations"
	"order-ledger/internal/storage/postgres"
)

// OpenSource builds the order source named by cfg. The returned close
// function releases database connections and is never nil.
func OpenSource(ctx context.Context, cfg *config.Config) (storage.OrderSource, func(), error) {
	noop := func() {}

	switch cfg.Source.Kind {
	case config.SourceHTTP:
		return ingestion.NewHTTPSource(cfg.Source.URL, ingestion.WithTimeout(cfg.Source.Timeout)), noop, nil

	case config.SourceFile:
		return ingestion.NewFileSource(cfg.Source.Path), noop, nil

	case config.SourceFixtures:
		src, err := FixtureSource()
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil

	case config.SourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Source.PostgresDSN, postgres.WithConnectTimeout(cfg.Source.Timeout))
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Source.Migrate {
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, noop, fmt.Errorf("postgres migrations: %w", err)
			}
		}
		return postgres.NewOrderSource(pool), pool.Close, nil

	case config.SourceClickhouse:
		var (
			conn *chstore.Conn
			err  error
		)
		timeout := chstore.WithDialTimeout(cfg.Source.Timeout)
		if cfg.Source.Migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, cfg.Source.ClickhouseDSN, timeout)
		} else {
			conn, err = chstore.NewConn(ctx, cfg.Source.ClickhouseDSN, timeout)
		}
		if err != nil {
			return nil, noop, fmt.Errorf("connect clickhouse: %w", err)
		}
		return chstore.NewOrderSource(conn), func() { _ = conn.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("%w: unknown source kind %q", storage.ErrInvalidInput, cfg.Source.Kind)
	}
}

// FromConfig opens the configured source and builds a pipeline over it.
func FromConfig(ctx context.Context, cfg *config.Config, l *slog.Logger) (*Pipeline, func(), error) {
	source, closeFn, err := OpenSource(ctx, cfg)
	if err != nil {
		return nil, closeFn, err
	}

	normalizer := normalization.NewNormalizer(normalization.Options{
		Policy:   cfg.ErrorPolicy(),
		Location: cfg.Location(),
		Logger:   l,
	})
	opts := metrics.Options{
		ProfitField:     cfg.ProfitField(),
		ClosedSalesOnly: cfg.Aggregation.ClosedSalesOnly,
	}

	p := New(source, normalizer, opts).WithLogger(logger.OrDiscard(l))
	return p, closeFn, nil
}
