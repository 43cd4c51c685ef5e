package reporting

import "time"

// NotApplicable marks a value that is null in the source data.
const NotApplicable = "N/A"

// OpenMarker replaces the sale date of an order that has not been sold.
const OpenMarker = "Open"

// View is the formatted form of a Summary and its order listing.
// Every figure is already a string; renderers only lay it out.
type View struct {
	GeneratedAt time.Time `json:"generated_at"`
	ProfitLabel string    `json:"profit_label"`
	Compact     bool      `json:"compact"`

	Totals TotalsBlock `json:"totals"`
	Profit ProfitBlock `json:"profit"`

	// Months always has 12 rows, January first.
	Months []MonthRow `json:"months"`
	// Weeks are sorted chronologically by week key.
	Weeks  []WeekRow  `json:"weeks"`
	Orders []OrderRow `json:"orders"`

	LastPurchase   string `json:"last_purchase"`
	SkippedRecords int    `json:"skipped_records"`
}

// TotalsBlock is the summary-totals section, always at two decimals.
type TotalsBlock struct {
	TotalProfit                 string `json:"total_profit"`
	AverageProfitPerWeek        string `json:"average_profit_per_week"`
	AverageTransactionsPerWeek  string `json:"average_transactions_per_week"`
	TotalFilledValue            string `json:"total_filled_value"`
	OpenOrdersValue             string `json:"open_orders_value"`
	TotalFilledValueClosedSales string `json:"total_filled_value_closed_sales"`
	TotalTransactions           string `json:"total_transactions"`
	NumberOfWeeks               string `json:"number_of_weeks"`
}

// ProfitBlock is the profit section, at display precision.
type ProfitBlock struct {
	TotalFilledValue string `json:"total_filled_value"`
	TotalProfit      string `json:"total_profit"`
	ProfitPercentage string `json:"profit_percentage"`
}

// MonthRow is one row of the monthly table.
type MonthRow struct {
	Month        string `json:"month"`
	Transactions string `json:"transactions"`
	FilledValue  string `json:"filled_value"`
	Profit       string `json:"profit"`
}

// WeekRow is one row of the weekly table.
type WeekRow struct {
	Week         string `json:"week"`
	Transactions string `json:"transactions"`
	Profit       string `json:"profit"` // N/A when no order in the week had a profit
}

// OrderRow is one entry of the order detail listing.
type OrderRow struct {
	ID              string `json:"id"`
	BuyDate         string `json:"buy_date"`
	SaleDate        string `json:"sale_date"`
	FilledValue     string `json:"filled_value"`
	DaysBetween     string `json:"days_between"`
	PurchasePrice   string `json:"purchase_price"`
	ActualSalePrice string `json:"actual_sale_price"`
	TargetedProfit  string `json:"targeted_profit"`
	ProfitFlag      string `json:"profit_flag"`
	Profit          string `json:"profit"`
}
