package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mpump/internal/core"
	"mpump/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondRawJSON encodes v without touching Content-Type, for handlers that
// already set attachment headers.
func respondRawJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Entry-time validation failures; these are operator mistakes, not server
// faults.
var validationErrs = []error{
	core.ErrMissingInput,
	core.ErrInvalidReading,
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrInvalidRate,
	core.ErrEmptyCustomer,
	core.ErrEmptyFuelType,
	core.ErrEmptyNozzle,
	core.ErrInvalidPayment,
	core.ErrInvalidKind,
	core.ErrInvalidStatus,
	core.ErrInvalidNozzleCount,
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "record not found"})
	case isValidationErr(err):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func isValidationErr(err error) bool {
	for _, sentinel := range validationErrs {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("request body: %w", core.ErrMissingInput)
	}
	return nil
}

// queryDate reads a date query parameter, defaulting to today when absent.
func queryDate(r *http.Request, name string) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return core.Today(), nil
	}
	d := core.Date(v)
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}

// queryRange reads start/end parameters; both default to today.
func queryRange(r *http.Request) (start, end core.Date, err error) {
	if start, err = queryDate(r, "start"); err != nil {
		return "", "", err
	}
	if end, err = queryDate(r, "end"); err != nil {
		return "", "", err
	}
	return start, end, nil
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
