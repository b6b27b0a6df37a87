package http

import (
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	notifications, err := s.store.ListNotifications(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "List notifications failed", "owner_id", owner, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNotificationList(notifications))
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if err := s.store.MarkNotificationRead(r.Context(), owner, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	prefs, err := s.store.GetPreferences(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Get preferences failed", "owner_id", owner, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, preferencesPayload{
		NotifyEnabled: prefs.NotifyEnabled,
		Channels:      prefs.Channels,
	})
}

// handlePutPreferences replaces the stored preferences wholesale; a missing
// channels field clears the list rather than keeping the old one.
func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req preferencesPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	channels := req.Channels
	if channels == nil {
		channels = []string{}
	}

	prefs := core.Preferences{
		OwnerID:       owner,
		NotifyEnabled: req.NotifyEnabled,
		Channels:      channels,
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.store.PutPreferences(r.Context(), prefs); err != nil {
		slog.ErrorContext(r.Context(), "Put preferences failed", "owner_id", owner, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, preferencesPayload{
		NotifyEnabled: prefs.NotifyEnabled,
		Channels:      prefs.Channels,
	})
}
