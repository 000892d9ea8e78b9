package handlers

import (
	"net/http"
	"strconv"

	"github.com/itam-io/itam-server/internal/repo"
)

// ChangeLogHandler serves the change-audit trail.
type ChangeLogHandler struct {
	Repo *repo.ChangeLogRepo
}

// ListChangeLog returns recent change-log entries with their field changes.
// Query: limit (default 50, max 200), offset (default 0).
func (h *ChangeLogHandler) ListChangeLog(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 200 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	entries, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, entries)
}
