package http

import (
	"log/slog"
	"net/http"
)

// handleDashboard serves the computed snapshot for the calling owner. The
// snapshot is recomputed on every cache miss; writes invalidate the entry.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if snap, found := s.snapshotCache.Get(owner); found {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "owner_id", owner)
		writeJSON(w, http.StatusOK, toDashboardResponse(snap))
		return
	}

	snap, err := s.dashboard.ComputeDashboard(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard computation failed", "owner_id", owner, "error", err)
		writeServiceError(w, err)
		return
	}

	s.snapshotCache.Set(owner, snap)
	writeJSON(w, http.StatusOK, toDashboardResponse(snap))
}
