package metrics

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-ledger/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// makeOrder builds an order; empty saleDate means open, empty profit means null.
func makeOrder(id int, buyDate, saleDate, filled, profit string) domain.Order {
	o := domain.Order{
		ID:          id,
		BuyDate:     day(buyDate),
		FilledValue: dec(filled),
	}
	if saleDate != "" {
		sd := day(saleDate)
		o.SaleDate = &sd
	}
	if profit != "" {
		o.GrossProfit = decPtr(profit)
	}
	return o
}

func sampleOrders() []domain.Order {
	return []domain.Order{
		makeOrder(1, "2024-01-05", "", "100", ""),
		makeOrder(2, "2024-01-10", "2024-01-20", "200", "50"),
		makeOrder(3, "2024-02-29", "2024-03-02", "150.25", "-12.5"),
		makeOrder(4, "2024-03-15", "", "80.10", "3.3"),
		makeOrder(5, "2023-12-31", "2024-01-02", "99.99", "0.01"),
		makeOrder(6, "2024-12-30", "2025-01-03", "10", "1"),
		makeOrder(7, "2024-01-10", "2024-01-11", "5", "2"),
	}
}

func sumMonths(values [domain.MonthsPerYear]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

func TestAggregate_Example(t *testing.T) {
	orders := []domain.Order{
		makeOrder(1, "2024-01-05", "", "100", ""),
		makeOrder(2, "2024-01-10", "2024-01-20", "200", "50"),
	}

	s := Aggregate(orders, Options{ProfitField: domain.ProfitFieldGross})

	assert.True(t, s.TotalFilledValue.Equal(dec("300")))
	assert.True(t, s.OpenOrdersValue.Equal(dec("100")))
	assert.True(t, s.TotalProfit.Equal(dec("50")))
	assert.True(t, s.MonthFilledValue[0].Equal(dec("300")))
	assert.Equal(t, 2, s.MonthTransactions[0])
	assert.Equal(t, 2, s.TotalTransactions)
	require.NotNil(t, s.LastPurchase)
	assert.Equal(t, "2024-01-10", s.LastPurchase.Format("2006-01-02"))
	assert.Equal(t, 2, s.LastPurchaseOrderID)
}

func TestAggregate_MonthFilledSumsToTotal(t *testing.T) {
	s := Aggregate(sampleOrders(), Options{})

	assert.True(t, sumMonths(s.MonthFilledValue).Equal(s.TotalFilledValue),
		"month sum %s != total %s", sumMonths(s.MonthFilledValue), s.TotalFilledValue)
}

func TestAggregate_WeeklyTransactionsSumToTotal(t *testing.T) {
	s := Aggregate(sampleOrders(), Options{})

	sum := 0
	for _, n := range s.WeeklyTransactions {
		sum += n
	}
	assert.Equal(t, s.TotalTransactions, sum)
}

func TestAggregate_WeeklyProfitsSumToTotal(t *testing.T) {
	s := Aggregate(sampleOrders(), Options{})

	sum := decimal.Zero
	for _, p := range s.WeeklyProfits {
		sum = sum.Add(p)
	}
	assert.True(t, sum.Equal(s.TotalProfit), "weekly sum %s != total %s", sum, s.TotalProfit)
	assert.True(t, sumMonths(s.MonthProfit).Equal(s.TotalProfit))
}

func TestAggregate_OpenOrdersValue(t *testing.T) {
	orders := sampleOrders()
	s := Aggregate(orders, Options{})

	want := decimal.Zero
	for _, o := range orders {
		if o.IsOpen() {
			want = want.Add(o.FilledValue)
		}
	}
	assert.True(t, s.OpenOrdersValue.Equal(want))
	assert.True(t, s.OpenOrdersValue.Equal(dec("180.10")))
	assert.True(t, s.TotalFilledValueClosedSales.Add(s.OpenOrdersValue).Equal(s.TotalFilledValue))
}

func TestAggregate_Idempotent(t *testing.T) {
	orders := sampleOrders()

	first := Aggregate(orders, Options{})
	second := Aggregate(orders, Options{})

	if !reflect.DeepEqual(first, second) {
		t.Errorf("aggregation not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	orders := sampleOrders()
	before := sampleOrders()

	Aggregate(orders, Options{ClosedSalesOnly: true})

	assert.Equal(t, before, orders)
}

func TestAggregate_Empty(t *testing.T) {
	for _, orders := range [][]domain.Order{nil, {}} {
		s := Aggregate(orders, Options{})

		assert.True(t, s.TotalProfit.IsZero())
		assert.True(t, s.TotalFilledValue.IsZero())
		assert.True(t, s.OpenOrdersValue.IsZero())
		assert.Equal(t, 0, s.TotalTransactions)
		assert.Empty(t, s.WeeklyProfits)
		assert.Empty(t, s.WeeklyTransactions)
		assert.Equal(t, 0, s.NumberOfWeeks)
		assert.True(t, s.AverageProfitPerWeek.IsZero())
		assert.True(t, s.AverageTransactionsPerWeek.IsZero())
		assert.True(t, s.ProfitPercentage.IsZero())
		assert.Nil(t, s.LastPurchase)
		for m := 0; m < domain.MonthsPerYear; m++ {
			assert.Equal(t, 0, s.MonthTransactions[m])
			assert.True(t, s.MonthFilledValue[m].IsZero())
			assert.True(t, s.MonthProfit[m].IsZero())
		}
	}
}

func TestAggregate_NullProfitStillCounts(t *testing.T) {
	orders := []domain.Order{
		makeOrder(1, "2024-05-01", "2024-05-03", "40", ""),
		makeOrder(2, "2024-05-02", "2024-05-03", "60", "6"),
	}

	s := Aggregate(orders, Options{})

	assert.True(t, s.TotalProfit.Equal(dec("6")))
	assert.True(t, s.MonthProfit[4].Equal(dec("6")))
	assert.Equal(t, 2, s.MonthTransactions[4])
	assert.True(t, s.MonthFilledValue[4].Equal(dec("100")))
	assert.Equal(t, 2, s.TotalTransactions)

	week := domain.WeekKey{Year: 2024, Week: 18}
	assert.Equal(t, 2, s.WeeklyTransactions[week])
	assert.True(t, s.WeeklyProfits[week].Equal(dec("6")))
}

func TestAggregate_NullProfitOnlyWeekHasNoProfitEntry(t *testing.T) {
	s := Aggregate([]domain.Order{makeOrder(1, "2024-05-01", "", "40", "")}, Options{})

	week := domain.WeekKey{Year: 2024, Week: 18}
	assert.Equal(t, 1, s.WeeklyTransactions[week])
	_, ok := s.WeeklyProfits[week]
	assert.False(t, ok)
	assert.Equal(t, 0, s.NumberOfWeeks)
	assert.True(t, s.AverageTransactionsPerWeek.IsZero())
}

func TestAggregate_OrderIndependent(t *testing.T) {
	orders := sampleOrders()
	want := Aggregate(orders, Options{})

	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 5; run++ {
		shuffled := append([]domain.Order(nil), orders...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := Aggregate(shuffled, Options{})
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("run %d: summary depends on input order", run)
		}
	}
}

func TestAggregate_LastPurchaseIsMaxBuyDate(t *testing.T) {
	s := Aggregate(sampleOrders(), Options{})

	require.NotNil(t, s.LastPurchase)
	assert.True(t, s.LastPurchase.Equal(day("2024-12-30")))
	assert.Equal(t, 6, s.LastPurchaseOrderID)
}

func TestAggregate_ProfitFieldSelection(t *testing.T) {
	o := makeOrder(1, "2024-06-01", "2024-06-02", "100", "10")
	o.ProfitMinusFees = decPtr("8")

	gross := Aggregate([]domain.Order{o}, Options{ProfitField: domain.ProfitFieldGross})
	net := Aggregate([]domain.Order{o}, Options{ProfitField: domain.ProfitFieldNet})

	assert.True(t, gross.TotalProfit.Equal(dec("10")))
	assert.True(t, net.TotalProfit.Equal(dec("8")))
	assert.Equal(t, domain.ProfitFieldNet, net.ProfitField)
}

func TestAggregate_DefaultProfitFieldIsGross(t *testing.T) {
	s := Aggregate(nil, Options{})
	assert.Equal(t, domain.ProfitFieldGross, s.ProfitField)
}

func TestAggregate_DerivedRates(t *testing.T) {
	orders := []domain.Order{
		makeOrder(1, "2024-01-01", "2024-01-02", "100", "10"),
		makeOrder(2, "2024-01-02", "2024-01-03", "100", "5"),
		makeOrder(3, "2024-01-09", "2024-01-10", "200", "15"),
		makeOrder(4, "2024-01-16", "", "100", ""),
	}

	s := Aggregate(orders, Options{})

	// The third week holds only a null-profit order and is not counted.
	assert.Len(t, s.WeeklyTransactions, 3)
	assert.Equal(t, 2, s.NumberOfWeeks)
	assert.True(t, s.AverageProfitPerWeek.Equal(dec("15")))
	assert.True(t, s.AverageTransactionsPerWeek.Equal(dec("2")))
	assert.True(t, s.ProfitPercentage.Equal(dec("6")))
}

func TestAggregate_WeeksCountedFromProfitBuckets(t *testing.T) {
	orders := []domain.Order{
		makeOrder(1, "2024-01-05", "", "100", ""),
		makeOrder(2, "2024-01-10", "2024-01-20", "200", "50"),
	}

	s := Aggregate(orders, Options{})

	assert.Len(t, s.WeeklyTransactions, 2)
	assert.Equal(t, 1, s.NumberOfWeeks)
	assert.True(t, s.AverageProfitPerWeek.Equal(dec("50")))
	assert.True(t, s.AverageTransactionsPerWeek.Equal(dec("2")))

	closed := Aggregate(orders, Options{ClosedSalesOnly: true})
	assert.Equal(t, 1, closed.NumberOfWeeks)
	assert.True(t, closed.AverageProfitPerWeek.Equal(dec("50")))
	assert.True(t, closed.AverageTransactionsPerWeek.Equal(dec("2")))
}

func TestAggregate_RepeatingRatesRounded(t *testing.T) {
	orders := []domain.Order{
		makeOrder(1, "2024-01-01", "2024-01-02", "300", "1"),
		makeOrder(2, "2024-01-09", "2024-01-10", "0", "0"),
		makeOrder(3, "2024-01-16", "2024-01-17", "0", "0"),
	}

	s := Aggregate(orders, Options{})

	assert.Equal(t, "0.3333333333", s.AverageProfitPerWeek.String())
	assert.Equal(t, "0.3333333333", s.ProfitPercentage.String())
}

func TestAggregate_ZeroFilledValueGuard(t *testing.T) {
	s := Aggregate([]domain.Order{makeOrder(1, "2024-01-01", "2024-01-02", "0", "5")}, Options{})

	assert.True(t, s.ProfitPercentage.IsZero())
	assert.True(t, s.AverageProfitPerWeek.Equal(dec("5")))
}

func TestAggregate_ClosedSalesOnly(t *testing.T) {
	orders := []domain.Order{
		makeOrder(1, "2024-01-05", "", "100", ""),
		makeOrder(2, "2024-01-10", "2024-01-20", "200", "50"),
		makeOrder(3, "2024-02-01", "", "300", "30"),
	}

	s := Aggregate(orders, Options{ClosedSalesOnly: true})

	assert.True(t, s.ClosedSalesOnly)
	assert.Equal(t, 3, s.TotalTransactions)
	assert.True(t, s.TotalFilledValue.Equal(dec("600")))
	assert.True(t, s.OpenOrdersValue.Equal(dec("400")))
	assert.True(t, s.TotalFilledValueClosedSales.Equal(dec("200")))
	assert.True(t, s.TotalProfit.Equal(dec("80")))

	assert.Equal(t, 1, s.MonthTransactions[0])
	assert.True(t, s.MonthFilledValue[0].Equal(dec("200")))
	assert.Equal(t, 0, s.MonthTransactions[1])
	assert.True(t, s.MonthProfit[1].IsZero())
	assert.Equal(t, 1, s.NumberOfWeeks)

	// 80 / 200 * 100
	assert.True(t, s.ProfitPercentage.Equal(dec("40")))
	assert.True(t, sumMonths(s.MonthFilledValue).Equal(s.TotalFilledValueClosedSales))
}

func TestAggregate_ClosedSalesOnlyNoClosedOrders(t *testing.T) {
	s := Aggregate([]domain.Order{makeOrder(1, "2024-01-05", "", "100", "5")}, Options{ClosedSalesOnly: true})

	assert.Equal(t, 0, s.NumberOfWeeks)
	assert.True(t, s.ProfitPercentage.IsZero())
	assert.True(t, s.AverageProfitPerWeek.IsZero())
	assert.True(t, s.AverageTransactionsPerWeek.IsZero())
}

func TestAggregate_DefaultVariantBucketsIncludeOpenOrders(t *testing.T) {
	s := Aggregate([]domain.Order{makeOrder(1, "2024-07-04", "", "100", "")}, Options{})

	assert.Equal(t, 1, s.MonthTransactions[6])
	assert.True(t, s.MonthFilledValue[6].Equal(dec("100")))
	assert.Equal(t, 1, s.WeeklyTransactions[domain.WeekKey{Year: 2024, Week: 27}])
}

func TestAggregate_YearBoundaryWeeksDistinct(t *testing.T) {
	orders := []domain.Order{
		makeOrder(1, "2023-12-31", "", "1", "1"),
		makeOrder(2, "2024-01-01", "", "1", "1"),
	}

	s := Aggregate(orders, Options{})

	assert.Equal(t, 1, s.WeeklyTransactions[domain.WeekKey{Year: 2023, Week: 53}])
	assert.Equal(t, 1, s.WeeklyTransactions[domain.WeekKey{Year: 2024, Week: 1}])
	assert.Equal(t, 2, s.NumberOfWeeks)
	assert.Equal(t, 1, s.MonthTransactions[11])
	assert.Equal(t, 1, s.MonthTransactions[0])
}

func TestAggregate_Deterministic(t *testing.T) {
	var first *domain.Summary
	for run := 0; run < 5; run++ {
		s := Aggregate(sampleOrders(), Options{ProfitField: domain.ProfitFieldGross})
		if first == nil {
			first = s
			continue
		}
		if !reflect.DeepEqual(first, s) {
			t.Fatalf("run %d: non-deterministic summary", run)
		}
	}
}
