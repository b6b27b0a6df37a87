package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListObjectives(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	objectives, err := s.store.ListObjectives(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "List objectives failed", "owner_id", owner, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toObjectiveList(objectives))
}

func (s *Server) handleCreateObjective(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req objectiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := req.toDomain(owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.objectives.CreateObjective(r.Context(), o)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateSnapshot(owner)
	slog.InfoContext(r.Context(), "Objective created",
		"id", created.ID,
		"owner_id", owner,
		"target_cents", created.Target.Cents)
	writeJSON(w, http.StatusCreated, toObjectiveResponse(created))
}

func (s *Server) handleGetObjective(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	o, err := s.store.GetObjective(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toObjectiveResponse(o))
}

func (s *Server) handleUpdateObjective(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req objectiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := s.store.GetObjective(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	o, err := req.toDomain(owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	o.ID = existing.ID
	// The saved balance only moves through the funds endpoint.
	o.Current = existing.Current
	if req.StartDate == "" {
		o.StartDate = existing.StartDate
	}
	if req.Deadline == "" {
		o.Deadline = existing.Deadline
	}

	updated, err := s.objectives.UpdateObjective(r.Context(), o)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateSnapshot(owner)
	writeJSON(w, http.StatusOK, toObjectiveResponse(updated))
}

func (s *Server) handleDeleteObjective(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if err := s.objectives.DeleteObjective(r.Context(), owner, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateSnapshot(owner)
	w.WriteHeader(http.StatusNoContent)
}

type addFundsRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount,omitempty"`
}

func (s *Server) handleAddFunds(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req addFundsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents := req.AmountCents
	if cents == 0 && req.Amount != "" {
		parsed, err := core.ParseDecimalToCents(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, core.ErrInvalidAmount.Error())
			return
		}
		cents = parsed
	}

	o, err := s.objectives.AddFunds(r.Context(), owner, r.PathValue("id"), core.Money{Cents: cents})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateSnapshot(owner)
	slog.InfoContext(r.Context(), "Funds added to objective",
		"id", o.ID,
		"owner_id", owner,
		"amount_cents", cents,
		"current_cents", o.Current.Cents,
		"status", o.Status)
	writeJSON(w, http.StatusOK, toObjectiveResponse(o))
}
