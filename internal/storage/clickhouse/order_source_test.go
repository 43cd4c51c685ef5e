package clickhouse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-ledger/internal/storage"
	"order-ledger/internal/storage/clickhouse"
)

func TestOrderSource_Fetch(t *testing.T) {
	conn := startClickhouse(t)
	ctx := context.Background()

	err := conn.Exec(ctx, `
		INSERT INTO orders (id, buy_date, sale_date, filled_value, purchase_price, actual_sale_price,
			targeted_profit_perc, profit_flag, gross_profit, profit_minus_fees, days_between_create_and_sale)
		VALUES
			(2, '2024-01-10 09:30:00', '2024-01-20 16:00:00', 200, 20, 25, 5, 'Y', 50, 45, 10),
			(1, '2024-01-05 08:00:00', NULL, 100, 10, NULL, 5, NULL, NULL, NULL, NULL)
	`)
	require.NoError(t, err)

	raws, err := clickhouse.NewOrderSource(conn).Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	assert.Equal(t, `"1"`, string(raws[0].ID))
	assert.Nil(t, raws[0].SaleDate)
	assert.Nil(t, raws[0].ProfitFlag)
	assert.Equal(t, `"2024-01-05T08:00:00Z"`, string(raws[0].BuyDate))
	assert.Equal(t, `"2024-01-20T16:00:00Z"`, string(raws[1].SaleDate))
	assert.Equal(t, `"Y"`, string(raws[1].ProfitFlag))
	assert.Equal(t, `"10"`, string(raws[1].DaysBetweenCreateAndSale))
}

func TestOrderSource_MissingTable(t *testing.T) {
	conn := startClickhouse(t)

	require.NoError(t, conn.Exec(context.Background(), `DROP TABLE orders`))

	_, err := clickhouse.NewOrderSource(conn).Fetch(context.Background())
	assert.True(t, errors.Is(err, storage.ErrFetchFailure))
}
