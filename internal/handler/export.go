package handler

import (
	"fmt"
	"net/http"

	"github.com/KhaledSharif/rocket/internal/export"
	"github.com/KhaledSharif/rocket/internal/request"
)

// handleExport answers GET /export/... with the same options as GET /message,
// returning the matches as a Parquet file.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	opts, err := pathOptions(r, exportPrefix)
	if err != nil {
		writeError(w, r, err)
		return
	}

	req, err := request.NewGetRequest(opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Retrieval is all-or-nothing, so nothing is written until it succeeds.
	msgs, err := h.query.Retrieve(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", req.Key+".parquet"))
	w.WriteHeader(http.StatusOK)

	if err := export.WriteAll(w, msgs, h.export); err != nil {
		log.ErrorContext(r.Context(), "export write failed", "key", req.Key, "error", err)
		return
	}
	log.DebugContext(r.Context(), "export written", "key", req.Key, "rows", len(msgs))
}
