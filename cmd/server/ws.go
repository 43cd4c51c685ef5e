package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"order-ledger/internal/domain"
	"order-ledger/internal/observability"
	"order-ledger/internal/pipeline"
	"order-ledger/internal/reporting"
)

// Websocket message types
const (
	msgViewport = "viewport"
	msgRefresh  = "refresh"
	msgSummary  = "summary"
	msgError    = "error"
)

// wsRequest is a client message. A viewport message carries the new width;
// sort optionally changes the order listing for later replies.
type wsRequest struct {
	Type  string `json:"type"`
	Width int    `json:"width,omitempty"`
	Sort  string `json:"sort,omitempty"`
}

// wsResponse is a server message: either a fresh view or an error.
type wsResponse struct {
	Type  string          `json:"type"`
	View  *reporting.View `json:"view,omitempty"`
	Error string          `json:"error,omitempty"`
}

// handleWS pushes a freshly recomputed view on connect and after every
// viewport or refresh message.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	d, err := s.parseDisplay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.trackClient(1)
	defer s.trackClient(-1)

	if err := s.pushSummary(r, conn, d); err != nil {
		return
	}

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.DebugContext(r.Context(), "Websocket read ended", "error", err)
			}
			return
		}

		if req.Sort != "" {
			sort, err := domain.ParseSortOrder(req.Sort)
			if err != nil {
				if writeErr := conn.WriteJSON(wsResponse{Type: msgError, Error: err.Error()}); writeErr != nil {
					return
				}
				continue
			}
			d.sort = sort
		}

		switch req.Type {
		case msgViewport:
			if req.Width <= 0 {
				if err := conn.WriteJSON(wsResponse{Type: msgError, Error: "width must be a positive integer"}); err != nil {
					return
				}
				continue
			}
			d.compact = reporting.IsCompact(req.Width, s.cfg.Display.CompactWidth)
		case msgRefresh:
		default:
			if err := conn.WriteJSON(wsResponse{Type: msgError, Error: fmt.Sprintf("unknown message type %q", req.Type)}); err != nil {
				return
			}
			continue
		}

		if err := s.pushSummary(r, conn, d); err != nil {
			return
		}
	}
}

// pushSummary recomputes and writes the result. Only write errors are
// returned; recompute failures are sent to the client.
func (s *Server) pushSummary(r *http.Request, conn *websocket.Conn, d displayParams) error {
	res, err := s.recompute(r, d, pipeline.TriggerRequest)
	if err != nil {
		return conn.WriteJSON(wsResponse{Type: msgError, Error: err.Error()})
	}
	if err := conn.WriteJSON(wsResponse{Type: msgSummary, View: res.View}); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func (s *Server) trackClient(delta int) {
	s.mu.Lock()
	s.clients += delta
	n := s.clients
	s.mu.Unlock()
	observability.UpdateWebsocketClients(n)
}
