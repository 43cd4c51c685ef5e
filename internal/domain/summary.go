package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// WeekKey identifies a week bucket: the UTC year and a 1-based week number
// counted in 7-day blocks from January 1.
type WeekKey struct {
	Year int
	Week int
}

// String renders the key as "2024-W2".
func (k WeekKey) String() string {
	return fmt.Sprintf("%d-W%d", k.Year, k.Week)
}

// Less orders week keys chronologically.
func (k WeekKey) Less(other WeekKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Week < other.Week
}

// MonthsPerYear is the number of calendar-indexed monthly buckets.
const MonthsPerYear = 12

// Summary holds every aggregate computed in one pass over a batch of orders.
type Summary struct {
	// Configuration the summary was computed with
	ProfitField     ProfitField
	ClosedSalesOnly bool

	// Global totals
	TotalProfit                 decimal.Decimal
	TotalTransactions           int
	TotalFilledValue            decimal.Decimal
	OpenOrdersValue             decimal.Decimal
	TotalFilledValueClosedSales decimal.Decimal

	// Weekly buckets (keyed by buy date)
	WeeklyProfits      map[WeekKey]decimal.Decimal
	WeeklyTransactions map[WeekKey]int

	// Monthly buckets, index 0 = January (keyed by buy date)
	MonthTransactions [MonthsPerYear]int
	MonthFilledValue  [MonthsPerYear]decimal.Decimal
	MonthProfit       [MonthsPerYear]decimal.Decimal

	// Derived rates
	NumberOfWeeks              int
	AverageProfitPerWeek       decimal.Decimal
	AverageTransactionsPerWeek decimal.Decimal
	ProfitPercentage           decimal.Decimal

	// Most recent purchase; nil when the batch is empty
	LastPurchase        *time.Time
	LastPurchaseOrderID int
}

// SortedWeeks returns the observed week keys in chronological order.
func (s *Summary) SortedWeeks() []WeekKey {
	keys := make([]WeekKey, 0, len(s.WeeklyTransactions))
	for k := range s.WeeklyTransactions {
		keys = append(keys, k)
	}
	for k := range s.WeeklyProfits {
		if _, ok := s.WeeklyTransactions[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
	return keys
}
