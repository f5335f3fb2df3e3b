package handler

import (
	"encoding/json"
	"net/http"

	"github.com/KhaledSharif/rocket/internal/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with a specific status code.
// Encoding errors are logged; the status line has already been sent.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to encode JSON response", "error", err)
	}
}

// writeError maps err to a status code and writes it as JSON.
// Validation failures are the client's; everything else is logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	switch {
	case errors.IsStorage(err):
		log.ErrorContext(r.Context(), "storage failure",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	case status >= http.StatusInternalServerError:
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	default:
		log.DebugContext(r.Context(), "request rejected",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
