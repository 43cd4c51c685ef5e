package storage

import (
	"context"

	"order-ledger/internal/domain"
)

// OrderSource provides the full order snapshot. Each call fetches the whole
// snapshot again; implementations never retry on their own.
type OrderSource interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Fetch returns every raw record in the snapshot, in source order.
	// Returns an error wrapping ErrFetchFailure if the snapshot cannot be read.
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
}
