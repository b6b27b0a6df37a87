package http

import (
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	filter, err := transactionFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := s.store.FilterTransactions(r.Context(), owner, filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "owner_id", owner, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionList(transactions))
}

func transactionFilterFromQuery(r *http.Request) (storage.TransactionFilter, error) {
	var filter storage.TransactionFilter

	if v := strings.TrimSpace(r.URL.Query().Get("kind")); v != "" {
		kind := core.TransactionKind(v)
		if !kind.Valid() {
			return filter, core.ErrInvalidKind
		}
		filter.Kind = kind
	}
	filter.Category = strings.TrimSpace(r.URL.Query().Get("category"))

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		from, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.From = from
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		to, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.To = to
	}

	return filter, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := req.toDomain(owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if tx.Origin == "" {
		tx.Origin = core.OriginManual
	}
	if tx.Recurrence == "" {
		tx.Recurrence = core.RecurrenceNone
	}
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.transactions.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateSnapshot(owner)
	log.NewStructuredLogger(log.FromContext(r.Context())).LogTransactionCreated(
		r.Context(), created.ID, owner, string(created.Kind), created.Amount.Cents, created.Category)
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	tx, err := s.store.GetTransaction(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := req.toDomain(owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx.ID = r.PathValue("id")
	if tx.Recurrence == "" {
		tx.Recurrence = core.RecurrenceNone
	}
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.transactions.UpdateTransaction(r.Context(), tx)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateSnapshot(owner)
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if err := s.transactions.DeleteTransaction(r.Context(), owner, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateSnapshot(owner)
	w.WriteHeader(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	IDs  []string `json:"ids"`
	Kind string   `json:"kind"`
}

func (s *Server) handleBulkDeleteTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := s.transactions.DeleteTransactions(r.Context(), owner, req.IDs, core.TransactionKind(req.Kind))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if deleted > 0 {
		s.invalidateSnapshot(owner)
	}
	slog.InfoContext(r.Context(), "Bulk delete completed",
		"owner_id", owner,
		"requested", len(req.IDs),
		"deleted", deleted)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
