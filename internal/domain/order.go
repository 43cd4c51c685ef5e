package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one order as delivered by the data provider.
// Every field is kept as raw JSON so a value may arrive as a string,
// a number or null; the normalizer decides what each one means.
type RawRecord struct {
	ID                       json.RawMessage `json:"Id"`
	BuyDate                  json.RawMessage `json:"BuyDate"`
	SaleDate                 json.RawMessage `json:"SaleDate"`
	FilledValue              json.RawMessage `json:"FilledValue"`
	PurchasePrice            json.RawMessage `json:"PurchasePrice"`
	ActualSalePrice          json.RawMessage `json:"ActualSalePrice"`
	TargetedProfitPerc       json.RawMessage `json:"TargetedProfitPerc"`
	ProfitFlag               json.RawMessage `json:"ProfitFlag"`
	GrossProfit              json.RawMessage `json:"GrossProfit"`
	ProfitMinusFees          json.RawMessage `json:"ProfitMinusFees"`
	DaysBetweenCreateAndSale json.RawMessage `json:"DaysBetweenCreateAndSale"`
}

// Order is the canonical, typed form of a RawRecord.
// Orders are built fresh on every computation pass and never mutated.
type Order struct {
	ID       int
	BuyDate  time.Time
	SaleDate *time.Time // nil for open orders

	FilledValue        decimal.Decimal
	PurchasePrice      decimal.Decimal
	ActualSalePrice    *decimal.Decimal // nullable
	TargetedProfitPerc decimal.Decimal
	ProfitFlag         string

	// Historical profit columns. Only the one selected by ProfitField is
	// ever read by the aggregation engine.
	GrossProfit     *decimal.Decimal // nullable
	ProfitMinusFees *decimal.Decimal // nullable

	DaysBetweenBuyAndSale *int // nullable
}

// IsOpen reports whether the order has no recorded sale.
func (o Order) IsOpen() bool {
	return o.SaleDate == nil
}

// Profit returns the profit column selected by field, or nil when that
// column is null for this order.
func (o Order) Profit(field ProfitField) *decimal.Decimal {
	switch field {
	case ProfitFieldNet:
		return o.ProfitMinusFees
	default:
		return o.GrossProfit
	}
}
