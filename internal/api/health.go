package api

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Sessions  int            `json:"sessions"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	TradingAPI string `json:"trading_api"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, upstream := "ok", "reachable"

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.upstream.Ping(ctx); err != nil {
		status, upstream = "degraded", "unreachable"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Sessions:  s.sessions.Len(),
		Services:  healthServices{TradingAPI: upstream},
	})
}
