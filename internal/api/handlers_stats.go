package api

import (
	"net/http"
)

// handleStats reports queue state and the active engine settings.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth":  s.orchestrator.QueueDepth(),
		"jobs_tracked": s.orchestrator.JobCount(),
		"workers":      s.cfg.WorkerCount,
		"engine":       s.cfg.Engine,
	})
}
