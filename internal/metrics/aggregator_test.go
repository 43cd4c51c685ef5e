package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-ledger/internal/domain"
	"order-ledger/internal/normalization"
	"order-ledger/internal/storage"
	"order-ledger/internal/storage/memory"
)

const snapshotJSON = `[
	{"Id":"1","BuyDate":"2024-01-05T10:00:00Z","SaleDate":null,"FilledValue":"100","PurchasePrice":"10","TargetedProfitPerc":"5","ProfitFlag":"N","GrossProfit":null},
	{"Id":2,"BuyDate":"2024-01-10T10:00:00Z","SaleDate":"2024-01-20T10:00:00Z","FilledValue":200,"PurchasePrice":20,"ActualSalePrice":25,"TargetedProfitPerc":5,"ProfitFlag":"Y","GrossProfit":50,"DaysBetweenCreateAndSale":10}
]`

func newSource(t *testing.T, js string) *memory.OrderSource {
	t.Helper()
	src, err := memory.NewOrderSourceJSON([]byte(js))
	require.NoError(t, err)
	return src
}

func TestComputeSummary_FromSource(t *testing.T) {
	src := newSource(t, snapshotJSON)
	agg := NewAggregator(src, normalization.NewNormalizer(normalization.Options{}), Options{ProfitField: domain.ProfitFieldGross})

	c, err := agg.ComputeSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, c.Fetched)
	assert.Len(t, c.Orders, 2)
	assert.Empty(t, c.Skipped)
	assert.True(t, c.Summary.TotalFilledValue.Equal(dec("300")))
	assert.True(t, c.Summary.OpenOrdersValue.Equal(dec("100")))
	assert.True(t, c.Summary.TotalProfit.Equal(dec("50")))
	require.NotNil(t, c.Summary.LastPurchase)
	assert.Equal(t, "2024-01-10", c.Summary.LastPurchase.Format("2006-01-02"))
}

func TestComputeSummary_FetchFailure(t *testing.T) {
	src := newSource(t, snapshotJSON)
	src.FailWith(errors.New("unavailable"))
	agg := NewAggregator(src, normalization.NewNormalizer(normalization.Options{}), Options{})

	c, err := agg.ComputeSummary(context.Background())

	assert.Nil(t, c)
	assert.True(t, errors.Is(err, storage.ErrFetchFailure))
}

func TestComputeSummary_MalformedAborts(t *testing.T) {
	src := newSource(t, `[{"Id":1,"BuyDate":"garbage","FilledValue":1,"PurchasePrice":1,"TargetedProfitPerc":1}]`)
	agg := NewAggregator(src, normalization.NewNormalizer(normalization.Options{Policy: domain.ErrorPolicyAbort}), Options{})

	c, err := agg.ComputeSummary(context.Background())

	assert.Nil(t, c)
	assert.True(t, errors.Is(err, normalization.ErrMalformedRecord))
	assert.Contains(t, err.Error(), "source memory")
}

func TestComputeSummary_MalformedSkipped(t *testing.T) {
	src := newSource(t, snapshotJSON)
	src.Append(domain.RawRecord{ID: []byte(`"bad"`)})
	agg := NewAggregator(src, normalization.NewNormalizer(normalization.Options{Policy: domain.ErrorPolicySkip}), Options{})

	c, err := agg.ComputeSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, c.Fetched)
	assert.Len(t, c.Orders, 2)
	require.Len(t, c.Skipped, 1)
	assert.Equal(t, 2, c.Skipped[0].Index)
	assert.Equal(t, 2, c.Summary.TotalTransactions)
}

func TestComputeSummary_FreshPassEachCall(t *testing.T) {
	src := newSource(t, snapshotJSON)
	agg := NewAggregator(src, normalization.NewNormalizer(normalization.Options{}), Options{})

	first, err := agg.ComputeSummary(context.Background())
	require.NoError(t, err)

	src.Set(nil)
	second, err := agg.ComputeSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, first.Summary.TotalTransactions)
	assert.Equal(t, 0, second.Summary.TotalTransactions)
	assert.Nil(t, second.Summary.LastPurchase)
	assert.Equal(t, 2, src.Fetches())
}
