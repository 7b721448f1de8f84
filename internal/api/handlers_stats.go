package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleCheckStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "check stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"language":       s.lang.Code,
		"stored_results": s.results.Len(),
		"stats":          s.stats.Snapshot(),
	})
}
