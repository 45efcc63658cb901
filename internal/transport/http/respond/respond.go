package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/category"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/menuitem"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/go-chi/chi/v5"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Error sending response", "error", err)
	}
}

// BadRequest answers 400 with msg.
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	JSON(w, r, http.StatusBadRequest, errorResponse{Error: msg})
}

// Error maps a service error to an HTTP status. Unknown errors are logged and hidden.
func Error(w http.ResponseWriter, r *http.Request, err error, action string) {
	status := StatusOf(err)

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Error "+action, "error", err)
		JSON(w, r, status, errorResponse{Error: "internal server error"})

		return
	}

	slog.WarnContext(r.Context(), "Rejected "+action, "error", err, "status", status)

	var vErr order.ValidationError
	if errors.As(err, &vErr) {
		JSON(w, r, status, errorResponse{Error: vErr.Message, Field: vErr.Field})

		return
	}

	JSON(w, r, status, errorResponse{Error: err.Error()})
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	var vErr order.ValidationError

	switch {
	case errors.As(err, &vErr), errors.Is(err, order.ErrUnknownStatus):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrMenuItemNotFound),
		errors.Is(err, menuitem.ErrNotFound),
		errors.Is(err, category.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInvalidMerge),
		errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, order.ErrOrderClosed),
		errors.Is(err, menuitem.ErrInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IDParam parses a positive integer URL parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, order.ValidationError{Field: name, Message: "must be a positive integer"}
	}

	return id, nil
}
