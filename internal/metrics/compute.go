package metrics

import (
	"github.com/shopspring/decimal"

	"order-ledger/internal/bucketing"
	"order-ledger/internal/domain"
	"order-ledger/internal/ordering"
)

// ratePlaces is the number of decimal places kept by derived rates.
const ratePlaces = 10

var hundred = decimal.NewFromInt(100)

// Options parameterizes one aggregation pass.
type Options struct {
	// ProfitField selects the canonical profit column.
	ProfitField domain.ProfitField
	// ClosedSalesOnly restricts weekly and monthly buckets to orders with a
	// sale date and uses closed-sales filled value as the denominator of
	// the profit percentage. Global totals still cover every order.
	ClosedSalesOnly bool
}

// accumulator carries the running totals of a single pass. It is created
// per call and discarded once the Summary is built.
type accumulator struct {
	opts Options

	totalProfit       decimal.Decimal
	totalTransactions int
	totalFilled       decimal.Decimal
	openOrdersValue   decimal.Decimal
	closedFilled      decimal.Decimal

	weeklyProfits      map[domain.WeekKey]decimal.Decimal
	weeklyTransactions map[domain.WeekKey]int

	monthTransactions [domain.MonthsPerYear]int
	monthFilled       [domain.MonthsPerYear]decimal.Decimal
	monthProfit       [domain.MonthsPerYear]decimal.Decimal
}

func newAccumulator(opts Options) *accumulator {
	acc := &accumulator{
		opts:               opts,
		weeklyProfits:      make(map[domain.WeekKey]decimal.Decimal),
		weeklyTransactions: make(map[domain.WeekKey]int),
	}
	for m := range acc.monthFilled {
		acc.monthFilled[m] = decimal.Zero
		acc.monthProfit[m] = decimal.Zero
	}
	return acc
}

// add folds one order into the running totals.
func (acc *accumulator) add(o domain.Order) {
	acc.totalTransactions++
	acc.totalFilled = acc.totalFilled.Add(o.FilledValue)

	if o.IsOpen() {
		acc.openOrdersValue = acc.openOrdersValue.Add(o.FilledValue)
	} else {
		acc.closedFilled = acc.closedFilled.Add(o.FilledValue)
	}

	profit := o.Profit(acc.opts.ProfitField)
	if profit != nil {
		acc.totalProfit = acc.totalProfit.Add(*profit)
	}

	if acc.opts.ClosedSalesOnly && o.IsOpen() {
		return
	}

	month := bucketing.MonthKey(o.BuyDate)
	week := bucketing.WeekKeyOf(o.BuyDate)

	acc.monthTransactions[month]++
	acc.monthFilled[month] = acc.monthFilled[month].Add(o.FilledValue)
	acc.weeklyTransactions[week]++

	if profit != nil {
		acc.monthProfit[month] = acc.monthProfit[month].Add(*profit)
		acc.weeklyProfits[week] = acc.weeklyProfits[week].Add(*profit)
	}
}

// summary derives the rates and freezes the totals into a Summary.
func (acc *accumulator) summary() *domain.Summary {
	s := &domain.Summary{
		ProfitField:                 acc.opts.ProfitField,
		ClosedSalesOnly:             acc.opts.ClosedSalesOnly,
		TotalProfit:                 acc.totalProfit,
		TotalTransactions:           acc.totalTransactions,
		TotalFilledValue:            acc.totalFilled,
		OpenOrdersValue:             acc.openOrdersValue,
		TotalFilledValueClosedSales: acc.closedFilled,
		WeeklyProfits:               acc.weeklyProfits,
		WeeklyTransactions:          acc.weeklyTransactions,
		MonthTransactions:           acc.monthTransactions,
		MonthFilledValue:            acc.monthFilled,
		MonthProfit:                 acc.monthProfit,
		NumberOfWeeks:               len(acc.weeklyProfits),
	}

	weeks := decimal.NewFromInt(int64(s.NumberOfWeeks))
	s.AverageProfitPerWeek = safeDiv(s.TotalProfit, weeks)
	s.AverageTransactionsPerWeek = safeDiv(decimal.NewFromInt(int64(s.TotalTransactions)), weeks)

	denominator := s.TotalFilledValue
	if acc.opts.ClosedSalesOnly {
		denominator = s.TotalFilledValueClosedSales
	}
	s.ProfitPercentage = safeDiv(s.TotalProfit.Mul(hundred), denominator)

	return s
}

// Aggregate computes the Summary of a batch of orders in a single pass.
// The result does not depend on the order of the input, and an empty batch
// yields zero totals, empty maps and no last purchase.
func Aggregate(orders []domain.Order, opts Options) *domain.Summary {
	if opts.ProfitField == "" {
		opts.ProfitField = domain.ProfitFieldGross
	}

	acc := newAccumulator(opts)
	for _, o := range orders {
		acc.add(o)
	}
	s := acc.summary()

	if latest, ok := ordering.MostRecent(orders); ok {
		buy := latest.BuyDate
		s.LastPurchase = &buy
		s.LastPurchaseOrderID = latest.ID
	}

	return s
}

// safeDiv returns num/den rounded to ratePlaces, or zero when den is zero.
func safeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.DivRound(den, ratePlaces)
}
