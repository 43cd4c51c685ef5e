package storage

import (
	"encoding/json"

	"order-ledger/internal/domain"
)

// TextRecord is an order row read from a database with every column
// rendered as text. Nil means SQL NULL.
type TextRecord struct {
	ID                       *string
	BuyDate                  *string
	SaleDate                 *string
	FilledValue              *string
	PurchasePrice            *string
	ActualSalePrice          *string
	TargetedProfitPerc       *string
	ProfitFlag               *string
	GrossProfit              *string
	ProfitMinusFees          *string
	DaysBetweenCreateAndSale *string
}

// ScanTargets returns pointers to every field in column order, for use
// with rows.Scan.
func (r *TextRecord) ScanTargets() []any {
	return []any{
		&r.ID, &r.BuyDate, &r.SaleDate, &r.FilledValue, &r.PurchasePrice,
		&r.ActualSalePrice, &r.TargetedProfitPerc, &r.ProfitFlag,
		&r.GrossProfit, &r.ProfitMinusFees, &r.DaysBetweenCreateAndSale,
	}
}

// Raw converts the row to the provider wire form. Every non-NULL value
// becomes a JSON string so the normalizer applies the same rules as for
// HTTP snapshots.
func (r *TextRecord) Raw() domain.RawRecord {
	return domain.RawRecord{
		ID:                       textValue(r.ID),
		BuyDate:                  textValue(r.BuyDate),
		SaleDate:                 textValue(r.SaleDate),
		FilledValue:              textValue(r.FilledValue),
		PurchasePrice:            textValue(r.PurchasePrice),
		ActualSalePrice:          textValue(r.ActualSalePrice),
		TargetedProfitPerc:       textValue(r.TargetedProfitPerc),
		ProfitFlag:               textValue(r.ProfitFlag),
		GrossProfit:              textValue(r.GrossProfit),
		ProfitMinusFees:          textValue(r.ProfitMinusFees),
		DaysBetweenCreateAndSale: textValue(r.DaysBetweenCreateAndSale),
	}
}

func textValue(s *string) json.RawMessage {
	if s == nil {
		return nil
	}
	// Marshaling a string cannot fail.
	data, _ := json.Marshal(*s)
	return data
}
