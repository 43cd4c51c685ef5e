package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"order-ledger/internal/domain"
	"order-ledger/internal/normalization"
	"order-ledger/internal/storage"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxBodySize = 64 << 20
)

// HTTPSource fetches the order snapshot with a single GET request.
// Failed requests are reported, never retried.
type HTTPSource struct {
	url         string
	client      *http.Client
	maxBodySize int64
	headers     http.Header
}

// SourceOption configures HTTPSource.
type SourceOption func(*HTTPSource)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) SourceOption {
	return func(s *HTTPSource) {
		s.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) SourceOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// WithMaxBodySize limits how many bytes of the response are read.
func WithMaxBodySize(n int64) SourceOption {
	return func(s *HTTPSource) {
		s.maxBodySize = n
	}
}

// WithHeader adds a request header, e.g. for authentication.
func WithHeader(key, value string) SourceOption {
	return func(s *HTTPSource) {
		s.headers.Add(key, value)
	}
}

// NewHTTPSource creates a source reading the JSON array served at url.
func NewHTTPSource(url string, opts ...SourceOption) *HTTPSource {
	s := &HTTPSource{
		url:         url,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxBodySize: DefaultMaxBodySize,
		headers:     make(http.Header),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements storage.OrderSource.
func (s *HTTPSource) Name() string {
	return "http"
}

// URL returns the snapshot URL.
func (s *HTTPSource) URL() string {
	return s.url
}

// Fetch implements storage.OrderSource.
// A non-2xx status, a transport error or a body that is not a JSON array
// of objects is reported as a storage.FetchError.
func (s *HTTPSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, storage.NewFetchError(s.Name(), 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range s.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, storage.NewFetchError(s.Name(), 0, fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, storage.NewFetchError(s.Name(), resp.StatusCode, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize+1))
	if err != nil {
		return nil, storage.NewFetchError(s.Name(), resp.StatusCode, fmt.Errorf("read response: %w", err))
	}
	if int64(len(body)) > s.maxBodySize {
		return nil, storage.NewFetchError(s.Name(), resp.StatusCode,
			fmt.Errorf("response exceeds %d bytes", s.maxBodySize))
	}

	raws, err := normalization.DecodeRecords(body)
	if err != nil {
		return nil, storage.NewFetchError(s.Name(), resp.StatusCode, err)
	}
	return raws, nil
}

var _ storage.OrderSource = (*HTTPSource)(nil)
