package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the view as a Markdown string.
func RenderMarkdown(v *View) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Order Summary\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", v.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Last Purchase: %s\n\n", v.LastPurchase))
	if v.SkippedRecords > 0 {
		sb.WriteString(fmt.Sprintf("Skipped malformed records: %d\n\n", v.SkippedRecords))
	}

	// Summary Totals
	sb.WriteString("## Summary Totals\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total %s | $%s |\n", v.ProfitLabel, v.Totals.TotalProfit))
	sb.WriteString(fmt.Sprintf("| Average Profit Per Week | $%s |\n", v.Totals.AverageProfitPerWeek))
	sb.WriteString(fmt.Sprintf("| Average Transactions Per Week | %s |\n", v.Totals.AverageTransactionsPerWeek))
	sb.WriteString(fmt.Sprintf("| Total Filled Value | $%s |\n", v.Totals.TotalFilledValue))
	sb.WriteString(fmt.Sprintf("| Open Orders Value | $%s |\n", v.Totals.OpenOrdersValue))
	sb.WriteString(fmt.Sprintf("| Closed Sales Filled Value | $%s |\n", v.Totals.TotalFilledValueClosedSales))
	sb.WriteString(fmt.Sprintf("| Total Transactions | %s |\n", v.Totals.TotalTransactions))
	sb.WriteString(fmt.Sprintf("| Number of Weeks | %s |\n", v.Totals.NumberOfWeeks))
	sb.WriteString("\n")

	// Profit Summary
	sb.WriteString("## Profit Summary\n\n")
	sb.WriteString(fmt.Sprintf("- Total Filled Value: $%s\n", v.Profit.TotalFilledValue))
	sb.WriteString(fmt.Sprintf("- Total %s: $%s\n", v.ProfitLabel, v.Profit.TotalProfit))
	sb.WriteString(fmt.Sprintf("- %s Percentage: %s%%\n", v.ProfitLabel, v.Profit.ProfitPercentage))
	sb.WriteString("\n")

	// Monthly Summary
	sb.WriteString("## Monthly Summary\n\n")
	sb.WriteString(fmt.Sprintf("| Month | Transactions | Filled Value | %s |\n", v.ProfitLabel))
	sb.WriteString("|-------|--------------|--------------|--------|\n")
	for _, m := range v.Months {
		sb.WriteString(fmt.Sprintf("| %s | %s | $%s | $%s |\n",
			m.Month, m.Transactions, m.FilledValue, m.Profit))
	}
	sb.WriteString("\n")

	// Weekly Summary
	sb.WriteString("## Weekly Summary\n\n")
	if len(v.Weeks) > 0 {
		sb.WriteString(fmt.Sprintf("| Week | Transactions | %s |\n", v.ProfitLabel))
		sb.WriteString("|------|--------------|--------|\n")
		for _, w := range v.Weeks {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", w.Week, w.Transactions, dollars(w.Profit)))
		}
	} else {
		sb.WriteString("No orders.\n")
	}
	sb.WriteString("\n")

	// Orders
	sb.WriteString("## Orders\n\n")
	if len(v.Orders) > 0 {
		sb.WriteString(fmt.Sprintf("| Order ID | Buy Date | Sale Date | Filled Value | Days Between | Purchase Price | Actual Sale Price | Targeted Profit (%%) | Profit Flag | %s |\n", v.ProfitLabel))
		sb.WriteString("|----------|----------|-----------|--------------|--------------|----------------|-------------------|---------------------|-------------|--------|\n")
		for _, o := range v.Orders {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | $%s | %s | $%s | %s | %s%% | %s | %s |\n",
				o.ID, o.BuyDate, o.SaleDate, o.FilledValue, o.DaysBetween,
				o.PurchasePrice, dollars(o.ActualSalePrice), o.TargetedProfit,
				o.ProfitFlag, dollars(o.Profit)))
		}
	} else {
		sb.WriteString("No orders.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// dollars prefixes a formatted amount with a dollar sign, leaving the
// not-applicable marker untouched.
func dollars(s string) string {
	if s == NotApplicable {
		return s
	}
	return "$" + s
}
