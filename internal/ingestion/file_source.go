package ingestion

import (
	"context"
	"fmt"
	"os"

	"order-ledger/internal/domain"
	"order-ledger/internal/normalization"
	"order-ledger/internal/storage"
)

// FileSource reads the order snapshot from a local JSON file.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path on every fetch.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name implements storage.OrderSource.
func (s *FileSource) Name() string {
	return "file"
}

// Fetch implements storage.OrderSource.
func (s *FileSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.NewFetchError(s.Name(), 0, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, storage.NewFetchError(s.Name(), 0, fmt.Errorf("read %s: %w", s.path, err))
	}

	raws, err := normalization.DecodeRecords(data)
	if err != nil {
		return nil, storage.NewFetchError(s.Name(), 0, fmt.Errorf("%s: %w", s.path, err))
	}
	return raws, nil
}

var _ storage.OrderSource = (*FileSource)(nil)
