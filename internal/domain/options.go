package domain

import "fmt"

// ProfitField selects which historical profit column is canonical.
type ProfitField string

// Profit field constants
const (
	ProfitFieldGross ProfitField = "gross"             // GrossProfit
	ProfitFieldNet   ProfitField = "profit_minus_fees" // ProfitMinusFees
)

// Label returns the human-readable column name.
func (f ProfitField) Label() string {
	if f == ProfitFieldNet {
		return "Profit Minus Fees"
	}
	return "Gross Profit"
}

// ParseProfitField parses a configured profit field name.
func ParseProfitField(s string) (ProfitField, error) {
	switch s {
	case "", "gross", "GrossProfit":
		return ProfitFieldGross, nil
	case "net", "profit_minus_fees", "ProfitMinusFees":
		return ProfitFieldNet, nil
	default:
		return "", fmt.Errorf("unknown profit field %q: must be 'gross' or 'profit_minus_fees'", s)
	}
}

// ErrorPolicy decides what happens to a record that fails normalization.
type ErrorPolicy string

// Error policy constants
const (
	ErrorPolicyAbort ErrorPolicy = "abort" // fail the whole pass
	ErrorPolicySkip  ErrorPolicy = "skip"  // drop the record and continue
)

// ParseErrorPolicy parses a configured error policy name.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case "", "abort":
		return ErrorPolicyAbort, nil
	case "skip":
		return ErrorPolicySkip, nil
	default:
		return "", fmt.Errorf("unknown error policy %q: must be 'abort' or 'skip'", s)
	}
}

// SortOrder selects the display order of the order detail listing.
type SortOrder string

// Sort order constants
const (
	SortByIDAsc       SortOrder = "id_asc"
	SortByBuyDateDesc SortOrder = "buy_date_desc"
)

// ParseSortOrder parses a configured sort order name.
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "", "id_asc", "id":
		return SortByIDAsc, nil
	case "buy_date_desc", "recent":
		return SortByBuyDateDesc, nil
	default:
		return "", fmt.Errorf("unknown sort order %q: must be 'id_asc' or 'buy_date_desc'", s)
	}
}
