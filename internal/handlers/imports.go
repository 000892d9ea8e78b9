package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/itam-io/itam-server/internal/importer"
	"github.com/itam-io/itam-server/internal/middleware"
)

// ImportHandler adapts HTTP to the bulk import engine.
type ImportHandler struct {
	Engine *importer.Engine
}

type importRequest struct {
	Rows       []importer.RawRow `json:"rows"`
	ImportMode importer.Mode     `json:"importMode"`
}

//
// ==========================
// Batch Import
// ==========================
//

// ImportAssets runs one batch import. The call returns 200 with a summary
// whenever at least partial progress was possible; only a structurally
// invalid request (bad JSON, no rows, unknown mode) fails outright.
func (h *ImportHandler) ImportAssets(w http.ResponseWriter, r *http.Request) {
	var input importRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	user := middleware.UserFromContext(r.Context())

	summary, err := h.Engine.Run(r.Context(), input.Rows, input.ImportMode, user)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrEmptyBatch):
			JSONError(w, "batch contains no rows", http.StatusBadRequest)
		case strings.Contains(err.Error(), "invalid import mode"):
			JSONError(w, err.Error(), http.StatusBadRequest)
		default:
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, summary)
}

//
// ==========================
// Import Preview
// ==========================
//

// PreviewImport reports which catalog values a batch references that do not
// exist yet, without writing anything.
func (h *ImportHandler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	var input importRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := h.Engine.Preview(r.Context(), input.Rows)
	if err != nil {
		if errors.Is(err, importer.ErrEmptyBatch) {
			JSONError(w, "batch contains no rows", http.StatusBadRequest)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, result)
}
