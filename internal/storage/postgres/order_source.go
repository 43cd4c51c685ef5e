package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"order-ledger/internal/domain"
	"order-ledger/internal/observability"
	"order-ledger/internal/storage"
)

// selectOrders reads every column as text. Timestamps are rendered in UTC
// with an explicit Z so they keep their instant regardless of the
// normalizer's configured location.
const selectOrders = `
	SELECT
		id::text,
		to_char(buy_date AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS.US"Z"'),
		to_char(sale_date AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS.US"Z"'),
		filled_value::text,
		purchase_price::text,
		actual_sale_price::text,
		targeted_profit_perc::text,
		profit_flag,
		gross_profit::text,
		profit_minus_fees::text,
		days_between_create_and_sale::text
	FROM orders
	ORDER BY id ASC
`

// OrderSource implements storage.OrderSource using PostgreSQL.
// It only reads; the orders table is owned by the data provider.
type OrderSource struct {
	pool *Pool
}

// NewOrderSource creates a new OrderSource.
func NewOrderSource(pool *Pool) *OrderSource {
	return &OrderSource{pool: pool}
}

// Compile-time interface check.
var _ storage.OrderSource = (*OrderSource)(nil)

// Name implements storage.OrderSource.
func (s *OrderSource) Name() string {
	return "postgres"
}

// Fetch returns every order row, ordered by id.
func (s *OrderSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	start := time.Now()
	raws, err := s.fetch(ctx)
	observability.RecordDBQuery("postgres", "select_orders", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, storage.NewFetchError(s.Name(), 0, err)
	}
	return raws, nil
}

func (s *OrderSource) fetch(ctx context.Context) ([]domain.RawRecord, error) {
	rows, err := s.pool.Query(ctx, selectOrders)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	raws, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RawRecord, error) {
		var r storage.TextRecord
		if err := row.Scan(r.ScanTargets()...); err != nil {
			return domain.RawRecord{}, err
		}
		return r.Raw(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	return raws, nil
}
