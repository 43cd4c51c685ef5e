package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-ledger/internal/domain"
	"order-ledger/internal/metrics"
	"order-ledger/internal/normalization"
	"order-ledger/internal/storage"
	"order-ledger/internal/storage/postgres"
)

func seedOrders(t *testing.T, pool *postgres.Pool) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO orders (id, buy_date, sale_date, filled_value, purchase_price, actual_sale_price,
			targeted_profit_perc, profit_flag, gross_profit, profit_minus_fees, days_between_create_and_sale)
		VALUES
			(2, '2024-01-10T09:30:00Z', '2024-01-20T16:00:00Z', 200, 20, 25, 5, 'Y', 50, 45, 10),
			(1, '2024-01-05T08:00:00Z', NULL, 100, 10, NULL, 5, NULL, NULL, NULL, NULL)
	`)
	require.NoError(t, err)
}

func TestOrderSource_Fetch(t *testing.T) {
	pool := startPostgres(t)
	seedOrders(t, pool)

	src := postgres.NewOrderSource(pool)
	raws, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 2)

	// Ordered by id.
	assert.Equal(t, `"1"`, string(raws[0].ID))
	assert.Nil(t, raws[0].SaleDate)
	assert.Nil(t, raws[0].GrossProfit)
	assert.Equal(t, `"2"`, string(raws[1].ID))
	assert.Equal(t, `"2024-01-10T09:30:00.000000Z"`, string(raws[1].BuyDate))
	assert.Equal(t, `"200.00000000"`, string(raws[1].FilledValue))
}

func TestOrderSource_EndToEnd(t *testing.T) {
	pool := startPostgres(t)
	seedOrders(t, pool)

	agg := metrics.NewAggregator(postgres.NewOrderSource(pool),
		normalization.NewNormalizer(normalization.Options{}),
		metrics.Options{ProfitField: domain.ProfitFieldNet})

	c, err := agg.ComputeSummary(context.Background())
	require.NoError(t, err)

	s := c.Summary
	assert.Equal(t, 2, s.TotalTransactions)
	assert.Equal(t, "300", s.TotalFilledValue.String())
	assert.Equal(t, "100", s.OpenOrdersValue.String())
	assert.Equal(t, "45", s.TotalProfit.String())
	require.NotNil(t, s.LastPurchase)
	assert.Equal(t, "2024-01-10", s.LastPurchase.Format("2006-01-02"))
}

func TestOrderSource_EmptyTable(t *testing.T) {
	pool := startPostgres(t)

	raws, err := postgres.NewOrderSource(pool).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestOrderSource_QueryFailure(t *testing.T) {
	pool := startPostgres(t)

	_, err := pool.Exec(context.Background(), `DROP TABLE orders`)
	require.NoError(t, err)

	_, err = postgres.NewOrderSource(pool).Fetch(context.Background())
	assert.True(t, errors.Is(err, storage.ErrFetchFailure))
}
