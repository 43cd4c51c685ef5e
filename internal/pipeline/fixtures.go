package pipeline

import (
	_ "embed"

	"order-ledger/internal/storage/memory"
)

// fixtureOrders is a small provider snapshot mixing string and numeric
// encodings, closed and open orders.
//
//go:embed fixtures/orders.json
var fixtureOrders []byte

// FixtureSource returns an in-memory source serving the bundled sample
// orders. Used for demos and when no provider is configured.
func FixtureSource() (*memory.OrderSource, error) {
	return memory.NewOrderSourceJSON(fixtureOrders)
}
