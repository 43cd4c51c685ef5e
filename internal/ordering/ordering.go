// Package ordering provides the display orderings and the most-recent
// selection over a batch of orders. Every function leaves its input
// untouched and returns a new slice.
package ordering

import (
	"sort"

	"order-ledger/internal/domain"
)

// ByIDAsc returns the orders sorted by id ascending. Equal ids keep their
// relative input order.
func ByIDAsc(orders []domain.Order) []domain.Order {
	sorted := clone(orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// ByBuyDateDesc returns the orders sorted by buy date, most recent first.
// Equal buy dates keep their relative input order.
func ByBuyDateDesc(orders []domain.Order) []domain.Order {
	sorted := clone(orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BuyDate.After(sorted[j].BuyDate)
	})
	return sorted
}

// Sorted returns the orders in the requested display order.
func Sorted(orders []domain.Order, order domain.SortOrder) []domain.Order {
	if order == domain.SortByBuyDateDesc {
		return ByBuyDateDesc(orders)
	}
	return ByIDAsc(orders)
}

// MostRecent returns the order with the latest buy date. Ties go to the
// first one encountered. ok is false for an empty batch.
func MostRecent(orders []domain.Order) (latest domain.Order, ok bool) {
	for i, o := range orders {
		if i == 0 || o.BuyDate.After(latest.BuyDate) {
			latest = o
			ok = true
		}
	}
	return latest, ok
}

func clone(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	return out
}
