package reporting

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"order-ledger/internal/domain"
)

// DefaultCompactWidth is the widest viewport, in pixels, that still gets
// the compact precision.
const DefaultCompactWidth = 600

const dateLayout = "2006-01-02"

var monthNames = [domain.MonthsPerYear]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Precision is the number of decimal places used for each kind of figure.
type Precision struct {
	MoneyPlaces int32
	RatePlaces  int32
}

// PrecisionFor returns the display precision for a compact or full display.
func PrecisionFor(compact bool) Precision {
	if compact {
		return Precision{MoneyPlaces: 1, RatePlaces: 2}
	}
	return Precision{MoneyPlaces: 4, RatePlaces: 2}
}

// IsCompact reports whether a viewport width selects the compact display.
// A non-positive threshold falls back to DefaultCompactWidth.
func IsCompact(width, threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultCompactWidth
	}
	return width <= threshold
}

// totalsPlaces is the fixed precision of the summary-totals block.
const totalsPlaces = 2

// Formatter turns summaries into views.
type Formatter struct {
	precision Precision
	compact   bool
	now       func() time.Time
}

// NewFormatter creates a formatter for a compact or full display.
func NewFormatter(compact bool) *Formatter {
	return &Formatter{
		precision: PrecisionFor(compact),
		compact:   compact,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithPrecision overrides the display precision.
func (f *Formatter) WithPrecision(p Precision) *Formatter {
	f.precision = p
	return f
}

// WithClock sets a custom clock function for deterministic output.
func (f *Formatter) WithClock(now func() time.Time) *Formatter {
	f.now = now
	return f
}

// Precision returns the precision in use.
func (f *Formatter) Precision() Precision {
	return f.precision
}

// Format builds the view of s. orders are listed in the given order; pass
// them through ordering.Sorted first to pick a display order. Neither s nor
// orders are modified.
func (f *Formatter) Format(s *domain.Summary, orders []domain.Order) *View {
	v := &View{
		GeneratedAt:  f.now(),
		ProfitLabel:  s.ProfitField.Label(),
		Compact:      f.compact,
		Totals:       f.totals(s),
		Profit:       f.profit(s),
		Months:       f.months(s),
		Weeks:        f.weeks(s),
		Orders:       make([]OrderRow, 0, len(orders)),
		LastPurchase: NotApplicable,
	}

	for _, o := range orders {
		v.Orders = append(v.Orders, f.order(s.ProfitField, o))
	}

	if s.LastPurchase != nil {
		v.LastPurchase = s.LastPurchase.Format(dateLayout)
	}

	return v
}

func (f *Formatter) totals(s *domain.Summary) TotalsBlock {
	return TotalsBlock{
		TotalProfit:                 s.TotalProfit.StringFixed(totalsPlaces),
		AverageProfitPerWeek:        s.AverageProfitPerWeek.StringFixed(totalsPlaces),
		AverageTransactionsPerWeek:  s.AverageTransactionsPerWeek.StringFixed(totalsPlaces),
		TotalFilledValue:            s.TotalFilledValue.StringFixed(totalsPlaces),
		OpenOrdersValue:             s.OpenOrdersValue.StringFixed(totalsPlaces),
		TotalFilledValueClosedSales: s.TotalFilledValueClosedSales.StringFixed(totalsPlaces),
		TotalTransactions:           strconv.Itoa(s.TotalTransactions),
		NumberOfWeeks:               strconv.Itoa(s.NumberOfWeeks),
	}
}

func (f *Formatter) profit(s *domain.Summary) ProfitBlock {
	return ProfitBlock{
		TotalFilledValue: f.money(s.TotalFilledValue),
		TotalProfit:      f.money(s.TotalProfit),
		ProfitPercentage: f.rate(s.ProfitPercentage),
	}
}

func (f *Formatter) months(s *domain.Summary) []MonthRow {
	rows := make([]MonthRow, domain.MonthsPerYear)
	for m := range rows {
		rows[m] = MonthRow{
			Month:        monthNames[m],
			Transactions: strconv.Itoa(s.MonthTransactions[m]),
			FilledValue:  f.money(s.MonthFilledValue[m]),
			Profit:       f.money(s.MonthProfit[m]),
		}
	}
	return rows
}

func (f *Formatter) weeks(s *domain.Summary) []WeekRow {
	keys := s.SortedWeeks()
	rows := make([]WeekRow, 0, len(keys))
	for _, k := range keys {
		row := WeekRow{
			Week:         k.String(),
			Transactions: strconv.Itoa(s.WeeklyTransactions[k]),
			Profit:       NotApplicable,
		}
		if p, ok := s.WeeklyProfits[k]; ok {
			row.Profit = f.money(p)
		}
		rows = append(rows, row)
	}
	return rows
}

func (f *Formatter) order(field domain.ProfitField, o domain.Order) OrderRow {
	row := OrderRow{
		ID:              strconv.Itoa(o.ID),
		BuyDate:         o.BuyDate.Format(dateLayout),
		SaleDate:        OpenMarker,
		FilledValue:     f.money(o.FilledValue),
		DaysBetween:     NotApplicable,
		PurchasePrice:   f.money(o.PurchasePrice),
		ActualSalePrice: f.optionalMoney(o.ActualSalePrice),
		TargetedProfit:  f.rate(o.TargetedProfitPerc),
		ProfitFlag:      o.ProfitFlag,
		Profit:          f.optionalMoney(o.Profit(field)),
	}
	if o.SaleDate != nil {
		row.SaleDate = o.SaleDate.Format(dateLayout)
	}
	if o.DaysBetweenBuyAndSale != nil {
		row.DaysBetween = strconv.Itoa(*o.DaysBetweenBuyAndSale)
	}
	return row
}

func (f *Formatter) money(d decimal.Decimal) string {
	return d.StringFixed(f.precision.MoneyPlaces)
}

func (f *Formatter) optionalMoney(d *decimal.Decimal) string {
	if d == nil {
		return NotApplicable
	}
	return f.money(*d)
}

func (f *Formatter) rate(d decimal.Decimal) string {
	return d.StringFixed(f.precision.RatePlaces)
}
