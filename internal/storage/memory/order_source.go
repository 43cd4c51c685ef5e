package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"order-ledger/internal/domain"
	"order-ledger/internal/storage"
)

// OrderSource is an in-memory implementation of storage.OrderSource.
// The snapshot can be replaced at any time; Fetch always returns a copy.
type OrderSource struct {
	mu      sync.RWMutex
	records []domain.RawRecord
	err     error
	fetches int
}

// NewOrderSource creates a source serving records.
func NewOrderSource(records ...domain.RawRecord) *OrderSource {
	s := &OrderSource{}
	s.Set(records)
	return s
}

// NewOrderSourceJSON creates a source from a provider JSON array.
func NewOrderSourceJSON(data []byte) (*OrderSource, error) {
	var records []domain.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, storage.NewFetchError("memory", 0, err)
	}
	return NewOrderSource(records...), nil
}

// Name implements storage.OrderSource.
func (s *OrderSource) Name() string {
	return "memory"
}

// Set replaces the snapshot.
func (s *OrderSource) Set(records []domain.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]domain.RawRecord, len(records))
	for i, r := range records {
		s.records[i] = cloneRecord(r)
	}
}

// Append adds records to the end of the snapshot.
func (s *OrderSource) Append(records ...domain.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.records = append(s.records, cloneRecord(r))
	}
}

// FailWith makes subsequent fetches fail with err wrapped as a FetchError.
// A nil err restores normal operation.
func (s *OrderSource) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Fetches returns the number of Fetch calls served so far.
func (s *OrderSource) Fetches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetches
}

// Fetch implements storage.OrderSource.
func (s *OrderSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.NewFetchError(s.Name(), 0, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches++
	if s.err != nil {
		return nil, storage.NewFetchError(s.Name(), 0, s.err)
	}

	result := make([]domain.RawRecord, len(s.records))
	for i, r := range s.records {
		result[i] = cloneRecord(r)
	}
	return result, nil
}

func cloneRecord(r domain.RawRecord) domain.RawRecord {
	return domain.RawRecord{
		ID:                       bytes.Clone(r.ID),
		BuyDate:                  bytes.Clone(r.BuyDate),
		SaleDate:                 bytes.Clone(r.SaleDate),
		FilledValue:              bytes.Clone(r.FilledValue),
		PurchasePrice:            bytes.Clone(r.PurchasePrice),
		ActualSalePrice:          bytes.Clone(r.ActualSalePrice),
		TargetedProfitPerc:       bytes.Clone(r.TargetedProfitPerc),
		ProfitFlag:               bytes.Clone(r.ProfitFlag),
		GrossProfit:              bytes.Clone(r.GrossProfit),
		ProfitMinusFees:          bytes.Clone(r.ProfitMinusFees),
		DaysBetweenCreateAndSale: bytes.Clone(r.DaysBetweenCreateAndSale),
	}
}

var _ storage.OrderSource = (*OrderSource)(nil)
