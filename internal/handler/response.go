package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so the JSON shape
// and the error → status mapping live in one place.
//
// ERROR FORMAT:
//   {"error": "User profile not found", "code": "not_found"}
//
// "error" carries the human-readable message; existing clients read that key.
// "code" is the machine-readable kind.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/ability-api/internal/apperror"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageResponse is the body of write endpoints that return no data.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps an error kind to its HTTP status and code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrEmptyInput):
		return http.StatusBadRequest, "empty_input"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrPredictionUnavailable):
		return http.StatusInternalServerError, "prediction_unavailable"
	case errors.Is(err, apperror.ErrStore):
		return http.StatusInternalServerError, "store_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError translates a service error into a status code and ErrorResponse.
//
// Store failures and unknown errors get a generic message: the cause may hold
// SQL or file paths and is only written to the log.
func writeError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	status, code := errorStatus(err)

	message := "An internal error occurred"
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && !errors.Is(err, apperror.ErrStore) {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
