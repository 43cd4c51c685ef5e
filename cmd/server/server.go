package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"order-ledger/internal/config"
	"order-ledger/internal/domain"
	"order-ledger/internal/normalization"
	"order-ledger/internal/observability"
	"order-ledger/internal/pipeline"
	"order-ledger/internal/reporting"
	"order-ledger/internal/storage"
)

// Server serves summaries over HTTP and websocket. Every request runs its
// own recompute pass; only run statistics are shared.
type Server struct {
	pipeline *pipeline.Pipeline
	cfg      *config.Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
	started  time.Time

	mu          sync.Mutex
	lastRun     time.Time
	lastSuccess time.Time
	lastError   string
	lastOrders  int
	lastSkipped int
	runs        int
	failures    int
	clients     int
}

// NewServer creates a server over p.
func NewServer(p *pipeline.Pipeline, cfg *config.Config, logger *slog.Logger) *Server {
	return &Server{
		pipeline: p,
		cfg:      cfg,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		started: time.Now().UTC(),
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.HandleFunc("GET /orders", s.handleOrders)
	mux.HandleFunc("POST /recompute", s.handleRecompute)
	mux.HandleFunc("GET /ws", s.handleWS)

	return mux
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the /status body.
type StatusResponse struct {
	Status      string    `json:"status"`
	Source      string    `json:"source"`
	Uptime      string    `json:"uptime"`
	Runs        int       `json:"runs"`
	Failures    int       `json:"failures"`
	LastRun     time.Time `json:"last_run,omitempty"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	LastOrders  int       `json:"last_orders"`
	LastSkipped int       `json:"last_skipped"`
	WSClients   int       `json:"websocket_clients"`
}

// RecomputeResponse is the POST /recompute body.
type RecomputeResponse struct {
	Status      string    `json:"status"`
	GeneratedAt time.Time `json:"generated_at"`
	Orders      int       `json:"orders"`
	Skipped     int       `json:"skipped"`
	DurationMS  int64     `json:"duration_ms"`
}

// OrdersResponse is the GET /orders body.
type OrdersResponse struct {
	Orders         []reporting.OrderRow `json:"orders"`
	SkippedRecords int                  `json:"skipped_records"`
}

// displayParams are the presentation choices of one request.
type displayParams struct {
	compact bool
	sort    domain.SortOrder
	format  reporting.Format
}

// parseDisplay reads compact, width, sort and format query parameters,
// falling back to the configured defaults.
func (s *Server) parseDisplay(r *http.Request) (displayParams, error) {
	q := r.URL.Query()
	p := displayParams{
		compact: s.cfg.Display.Compact,
		sort:    s.cfg.SortOrder(),
		format:  s.cfg.Format(),
	}

	if v := q.Get("width"); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil || width <= 0 {
			return p, errors.New("width must be a positive integer")
		}
		p.compact = reporting.IsCompact(width, s.cfg.Display.CompactWidth)
	}
	if v := q.Get("compact"); v != "" {
		compact, err := strconv.ParseBool(v)
		if err != nil {
			return p, errors.New("compact must be a boolean")
		}
		p.compact = compact
	}
	if v := q.Get("sort"); v != "" {
		sort, err := domain.ParseSortOrder(v)
		if err != nil {
			return p, err
		}
		p.sort = sort
	}
	if v := q.Get("format"); v != "" {
		format, err := reporting.ParseFormat(v)
		if err != nil {
			return p, err
		}
		p.format = format
	}
	return p, nil
}

func (s *Server) recompute(r *http.Request, d displayParams, trigger string) (*pipeline.Result, error) {
	res, err := s.pipeline.Recompute(r.Context(), pipeline.Request{
		Compact:   d.compact,
		SortOrder: d.sort,
		Trigger:   trigger,
	})
	s.recordRun(res, err)
	return res, err
}

func (s *Server) recordRun(res *pipeline.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs++
	s.lastRun = time.Now().UTC()
	if err != nil {
		s.failures++
		s.lastError = err.Error()
		return
	}
	s.lastSuccess = s.lastRun
	s.lastError = ""
	s.lastOrders = len(res.Orders)
	s.lastSkipped = len(res.Skipped)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	d, err := s.parseDisplay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.recompute(r, d, pipeline.TriggerRequest)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	body, err := reporting.Render(res.View, d.format)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Render failed", "format", string(d.format), "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", d.format.ContentType())
	w.Write(body)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	d, err := s.parseDisplay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.recompute(r, d, pipeline.TriggerRequest)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, OrdersResponse{
		Orders:         res.View.Orders,
		SkippedRecords: res.View.SkippedRecords,
	})
}

func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	d, err := s.parseDisplay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.recompute(r, d, pipeline.TriggerManual)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, RecomputeResponse{
		Status:      "ok",
		GeneratedAt: res.View.GeneratedAt,
		Orders:      len(res.Orders),
		Skipped:     len(res.Skipped),
		DurationMS:  res.Duration.Milliseconds(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:      "running",
		Source:      s.pipeline.SourceName(),
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		Runs:        s.runs,
		Failures:    s.failures,
		LastRun:     s.lastRun,
		LastSuccess: s.lastSuccess,
		LastError:   s.lastError,
		LastOrders:  s.lastOrders,
		LastSkipped: s.lastSkipped,
		WSClients:   s.clients,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps a recompute failure to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrFetchFailure):
		return http.StatusBadGateway
	case errors.Is(err, normalization.ErrMalformedRecord):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
