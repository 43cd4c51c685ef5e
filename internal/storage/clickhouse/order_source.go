package clickhouse

import (
	"context"
	"fmt"
	"time"

	"order-ledger/internal/domain"
	"order-ledger/internal/observability"
	"order-ledger/internal/storage"
)

// selectOrders renders every column as nullable text. FINAL collapses
// rows replaced since the last merge.
const selectOrders = `
	SELECT
		toNullable(toString(id)),
		toNullable(formatDateTime(buy_date, '%Y-%m-%dT%H:%i:%SZ', 'UTC')),
		formatDateTime(sale_date, '%Y-%m-%dT%H:%i:%SZ', 'UTC'),
		toNullable(toString(filled_value)),
		toNullable(toString(purchase_price)),
		toString(actual_sale_price),
		toNullable(toString(targeted_profit_perc)),
		profit_flag,
		toString(gross_profit),
		toString(profit_minus_fees),
		toString(days_between_create_and_sale)
	FROM orders FINAL
	ORDER BY id ASC
`

// OrderSource implements storage.OrderSource using ClickHouse.
type OrderSource struct {
	conn *Conn
}

// NewOrderSource creates a new OrderSource.
func NewOrderSource(conn *Conn) *OrderSource {
	return &OrderSource{conn: conn}
}

// Compile-time interface check.
var _ storage.OrderSource = (*OrderSource)(nil)

// Name implements storage.OrderSource.
func (s *OrderSource) Name() string {
	return "clickhouse"
}

// Fetch returns every order row, ordered by id.
func (s *OrderSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	start := time.Now()
	raws, err := s.fetch(ctx)
	observability.RecordDBQuery("clickhouse", "select_orders", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, storage.NewFetchError(s.Name(), 0, err)
	}
	return raws, nil
}

func (s *OrderSource) fetch(ctx context.Context) ([]domain.RawRecord, error) {
	rows, err := s.conn.Query(ctx, selectOrders)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var raws []domain.RawRecord
	for rows.Next() {
		var r storage.TextRecord
		if err := rows.Scan(r.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		raws = append(raws, r.Raw())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return raws, nil
}
