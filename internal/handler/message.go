package handler

import (
	"net/http"

	"github.com/KhaledSharif/rocket/internal/request"
)

// =============================================================================
// Message Handlers
// =============================================================================

// handleGetMessage answers GET /message/key/<k>[/time_gt/<n>][/time_lt/<n>]
// with a JSON array of matching messages.
func (h *Handler) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	opts, err := pathOptions(r, messagePrefix)
	if err != nil {
		writeError(w, r, err)
		return
	}

	req, err := request.NewGetRequest(opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	msgs, err := h.query.Retrieve(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}

// handlePostMessage answers POST /message/key/<k>/value/<v> by storing one
// message stamped with the server time. The response has no body.
func (h *Handler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	opts, err := pathOptions(r, messagePrefix)
	if err != nil {
		writeError(w, r, err)
		return
	}

	req, err := request.NewPostRequest(opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.ingest.Ingest(r.Context(), req); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
