package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
)

// contextKey type for request-scoped values.
type contextKey string

const requestIDKey contextKey = "request_id"

// ownerHeader identifies the acting user. The API trusts the gateway in
// front of it to have authenticated the value.
const ownerHeader = "X-Owner-ID"

// ownerID extracts the owner from the request header. An empty value is the
// caller's error, not ours.
func ownerID(r *http.Request) (string, bool) {
	owner := strings.TrimSpace(r.Header.Get(ownerHeader))
	return owner, owner != ""
}

// requireOwner writes a 401 and returns false when the owner header is absent.
func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing "+ownerHeader+" header")
		return "", false
	}
	return owner, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON parses the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// validationErrors are domain failures the caller can fix.
var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidKind,
	core.ErrEmptyCategory,
	core.ErrInvalidPayment,
	core.ErrInvalidRecurrence,
	core.ErrEmptyTitle,
	core.ErrTargetTooSmall,
	core.ErrInvalidCategory,
	core.ErrInvalidFrequency,
	core.ErrInvalidPriority,
	core.ErrInvalidDeadline,
	core.ErrInvalidStatus,
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrTooManyObjectives):
		writeError(w, http.StatusConflict, err.Error())
	default:
		for _, verr := range validationErrors {
			if errors.Is(err, verr) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseDate parses a date string in YYYY-MM-DD format as UTC.
func parseDate(dateStr string) (time.Time, error) {
	return time.Parse(time.DateOnly, strings.TrimSpace(dateStr))
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
