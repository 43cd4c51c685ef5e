package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
)

// RenderCSV renders the monthly table followed by the order listing as CSV.
// The two tables are separated by an empty line.
func RenderCSV(v *View) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{{"month", "transactions", "filled_value", "profit"}}
	for _, m := range v.Months {
		records = append(records, []string{m.Month, m.Transactions, m.FilledValue, m.Profit})
	}
	if err := w.WriteAll(records); err != nil {
		return "", fmt.Errorf("write month table: %w", err)
	}

	buf.WriteString("\n")

	records = [][]string{{
		"order_id", "buy_date", "sale_date", "filled_value", "days_between",
		"purchase_price", "actual_sale_price", "targeted_profit_perc", "profit_flag", "profit",
	}}
	for _, o := range v.Orders {
		records = append(records, []string{
			o.ID, o.BuyDate, o.SaleDate, o.FilledValue, o.DaysBetween,
			o.PurchasePrice, o.ActualSalePrice, o.TargetedProfit, o.ProfitFlag, o.Profit,
		})
	}
	if err := w.WriteAll(records); err != nil {
		return "", fmt.Errorf("write order table: %w", err)
	}

	return buf.String(), nil
}

// RenderJSON renders the view as indented JSON.
func RenderJSON(v *View) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal view: %w", err)
	}
	return data, nil
}
