package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

func (s *Server) handleListRecurringSources(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	sources, err := s.store.ListRecurringSources(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "List recurring sources failed", "owner_id", owner, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecurringSourceList(sources))
}

func (s *Server) handleCreateRecurringSource(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req recurringSourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sourceKey := sanitizeInput(req.SourceKey)
	if sourceKey == "" {
		writeError(w, http.StatusBadRequest, "source_key is required")
		return
	}

	frequency := strings.TrimSpace(req.Frequency)
	if frequency == "" {
		frequency = "mensuelle"
	}

	source := core.RecurringSource{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		SourceKey: sourceKey,
		Label:     sanitizeInput(req.Label),
		Amount:    core.Money{Cents: req.AmountCents},
		Frequency: frequency,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateRecurringSource(r.Context(), source); err != nil {
		slog.ErrorContext(r.Context(), "Create recurring source failed", "owner_id", owner, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecurringSourceList([]core.RecurringSource{source})[0])
}

// handleImportRecurring materializes the owner's recurring income sources
// into transactions. Safe to call repeatedly; already-imported sources are
// skipped.
func (s *Server) handleImportRecurring(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	imported, err := s.importer.ImportRecurringIncome(r.Context(), owner, time.Now().UTC())
	if err != nil {
		slog.ErrorContext(r.Context(), "Recurring import failed", "owner_id", owner, "error", err)
		writeServiceError(w, err)
		return
	}

	if imported > 0 {
		s.invalidateSnapshot(owner)
	}
	slog.InfoContext(r.Context(), "Recurring import completed",
		"owner_id", owner,
		"imported_count", imported)
	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}
